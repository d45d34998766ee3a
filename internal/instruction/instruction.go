// Package instruction defines the CHIP-8 instruction set and its decoder.
// Decode is the single place where opcode bit patterns are interpreted;
// both the CPU and the disassembler consume its output instead of
// re-deriving meaning from raw bits.
package instruction

import (
	"errors"
	"fmt"
)

// ErrUnknownOpcode is returned for an opcode that matches no documented
// instruction pattern. The wrapped message carries the raw opcode value.
var ErrUnknownOpcode = errors.New("unknown opcode")

// Op identifies a decoded CHIP-8 operation.
type Op uint8

// All operations of the baseline CHIP-8 instruction set.
const (
	Cls               Op = iota // 00E0 - clear the display
	Ret                         // 00EE - return from subroutine
	Sys                         // 0nnn - machine code routine, ignored
	Jump                        // 1nnn - jump to address
	Call                        // 2nnn - call subroutine
	SkipEqImm                   // 3xkk - skip if Vx == kk
	SkipNeImm                   // 4xkk - skip if Vx != kk
	SkipEqReg                   // 5xy0 - skip if Vx == Vy
	LoadImm                     // 6xkk - Vx = kk
	AddImm                      // 7xkk - Vx += kk, no flag
	LoadReg                     // 8xy0 - Vx = Vy
	OrReg                       // 8xy1 - Vx |= Vy
	AndReg                      // 8xy2 - Vx &= Vy
	XorReg                      // 8xy3 - Vx ^= Vy
	AddReg                      // 8xy4 - Vx += Vy, VF = carry
	SubReg                      // 8xy5 - Vx -= Vy, VF = not borrow
	ShrReg                      // 8xy6 - Vx >>= 1, VF = shifted out bit
	SubnReg                     // 8xy7 - Vx = Vy - Vx, VF = not borrow
	ShlReg                      // 8xyE - Vx <<= 1, VF = shifted out bit
	SkipNeReg                   // 9xy0 - skip if Vx != Vy
	SetIndex                    // Annn - I = nnn
	JumpV0                      // Bnnn - jump to nnn + V0
	Random                      // Cxkk - Vx = random byte AND kk
	Draw                        // Dxyn - draw n-byte sprite, VF = collision
	SkipKeyPressed              // Ex9E - skip if key Vx held
	SkipKeyNotPressed           // ExA1 - skip if key Vx not held
	LoadDelayTimer              // Fx07 - Vx = delay timer
	WaitKey                     // Fx0A - block until key press, Vx = key
	SetDelayTimer               // Fx15 - delay timer = Vx
	SetSoundTimer               // Fx18 - sound timer = Vx
	AddIndex                    // Fx1E - I += Vx
	LoadFont                    // Fx29 - I = font sprite address of Vx
	StoreBCD                    // Fx33 - memory[I..I+2] = BCD of Vx
	StoreRegisters              // Fx55 - memory[I..I+x] = V0..Vx
	LoadRegisters               // Fx65 - V0..Vx = memory[I..I+x]
)

var opNames = [...]string{
	Cls:               "CLS",
	Ret:               "RET",
	Sys:               "SYS",
	Jump:              "JP",
	Call:              "CALL",
	SkipEqImm:         "SE Vx, byte",
	SkipNeImm:         "SNE Vx, byte",
	SkipEqReg:         "SE Vx, Vy",
	LoadImm:           "LD Vx, byte",
	AddImm:            "ADD Vx, byte",
	LoadReg:           "LD Vx, Vy",
	OrReg:             "OR",
	AndReg:            "AND",
	XorReg:            "XOR",
	AddReg:            "ADD Vx, Vy",
	SubReg:            "SUB",
	ShrReg:            "SHR",
	SubnReg:           "SUBN",
	ShlReg:            "SHL",
	SkipNeReg:         "SNE Vx, Vy",
	SetIndex:          "LD I, addr",
	JumpV0:            "JP V0, addr",
	Random:            "RND",
	Draw:              "DRW",
	SkipKeyPressed:    "SKP",
	SkipKeyNotPressed: "SKNP",
	LoadDelayTimer:    "LD Vx, DT",
	WaitKey:           "LD Vx, K",
	SetDelayTimer:     "LD DT, Vx",
	SetSoundTimer:     "LD ST, Vx",
	AddIndex:          "ADD I, Vx",
	LoadFont:          "LD F, Vx",
	StoreBCD:          "LD B, Vx",
	StoreRegisters:    "LD [I], Vx",
	LoadRegisters:     "LD Vx, [I]",
}

// String returns a descriptive name of the operation, distinguishing
// operand forms that share a mnemonic.
func (o Op) String() string {
	if int(o) >= len(opNames) {
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
	return opNames[o]
}

// Instruction is a decoded opcode with its typed operands.
// Only the fields relevant to the operation are set.
type Instruction struct {
	Op   Op
	X    uint8  // first register index (Vx)
	Y    uint8  // second register index (Vy)
	Byte uint8  // immediate byte or random mask
	N    uint8  // sprite height nibble
	Addr uint16 // 12-bit address
}

// IsSkip reports whether the instruction is a conditional skip.
// Skips advance PC by a further 2 bytes on top of the unconditional
// advance that happens during fetch.
func (ins Instruction) IsSkip() bool {
	switch ins.Op {
	case SkipEqImm, SkipNeImm, SkipEqReg, SkipNeReg, SkipKeyPressed, SkipKeyNotPressed:
		return true
	default:
		return false
	}
}

// Mnemonic returns the assembly form of the instruction.
func (ins Instruction) Mnemonic() string {
	switch ins.Op {
	case Cls:
		return "CLS"
	case Ret:
		return "RET"
	case Sys:
		return fmt.Sprintf("SYS $%03X", ins.Addr)
	case Jump:
		return fmt.Sprintf("JP $%03X", ins.Addr)
	case Call:
		return fmt.Sprintf("CALL $%03X", ins.Addr)
	case JumpV0:
		return fmt.Sprintf("JP V0, $%03X", ins.Addr)
	case SkipEqImm:
		return fmt.Sprintf("SE V%X, $%02X", ins.X, ins.Byte)
	case SkipNeImm:
		return fmt.Sprintf("SNE V%X, $%02X", ins.X, ins.Byte)
	case SkipEqReg:
		return fmt.Sprintf("SE V%X, V%X", ins.X, ins.Y)
	case SkipNeReg:
		return fmt.Sprintf("SNE V%X, V%X", ins.X, ins.Y)
	case LoadImm:
		return fmt.Sprintf("LD V%X, $%02X", ins.X, ins.Byte)
	case LoadReg:
		return fmt.Sprintf("LD V%X, V%X", ins.X, ins.Y)
	case SetIndex:
		return fmt.Sprintf("LD I, $%03X", ins.Addr)
	case AddImm:
		return fmt.Sprintf("ADD V%X, $%02X", ins.X, ins.Byte)
	case AddReg:
		return fmt.Sprintf("ADD V%X, V%X", ins.X, ins.Y)
	case SubReg:
		return fmt.Sprintf("SUB V%X, V%X", ins.X, ins.Y)
	case SubnReg:
		return fmt.Sprintf("SUBN V%X, V%X", ins.X, ins.Y)
	case OrReg:
		return fmt.Sprintf("OR V%X, V%X", ins.X, ins.Y)
	case AndReg:
		return fmt.Sprintf("AND V%X, V%X", ins.X, ins.Y)
	case XorReg:
		return fmt.Sprintf("XOR V%X, V%X", ins.X, ins.Y)
	case ShrReg:
		return fmt.Sprintf("SHR V%X", ins.X)
	case ShlReg:
		return fmt.Sprintf("SHL V%X", ins.X)
	case Draw:
		return fmt.Sprintf("DRW V%X, V%X, $%X", ins.X, ins.Y, ins.N)
	case SkipKeyPressed:
		return fmt.Sprintf("SKP V%X", ins.X)
	case SkipKeyNotPressed:
		return fmt.Sprintf("SKNP V%X", ins.X)
	case Random:
		return fmt.Sprintf("RND V%X, $%02X", ins.X, ins.Byte)
	case LoadDelayTimer:
		return fmt.Sprintf("LD V%X, DT", ins.X)
	case SetDelayTimer:
		return fmt.Sprintf("LD DT, V%X", ins.X)
	case SetSoundTimer:
		return fmt.Sprintf("LD ST, V%X", ins.X)
	case WaitKey:
		return fmt.Sprintf("LD V%X, K", ins.X)
	case AddIndex:
		return fmt.Sprintf("ADD I, V%X", ins.X)
	case LoadFont:
		return fmt.Sprintf("LD F, V%X", ins.X)
	case StoreBCD:
		return fmt.Sprintf("LD B, V%X", ins.X)
	case StoreRegisters:
		return fmt.Sprintf("LD [I], V%X", ins.X)
	case LoadRegisters:
		return fmt.Sprintf("LD V%X, [I]", ins.X)
	}
	return fmt.Sprintf("DW $%04X", ins.Addr)
}

// Decode maps a 16-bit opcode to its instruction.
//
// The top nibble selects the instruction family; families 0, 5, 8, 9, E
// and F sub-dispatch on the remaining nibbles or low byte. Opcodes
// matching no documented pattern fail with ErrUnknownOpcode.
func Decode(opcode uint16) (Instruction, error) {
	var (
		addr = opcode & 0x0fff
		x    = uint8(opcode>>8) & 0x0f
		y    = uint8(opcode>>4) & 0x0f
		kk   = uint8(opcode)
		n    = uint8(opcode) & 0x0f
	)

	switch opcode & 0xf000 {
	case 0x0000:
		switch opcode {
		case 0x00e0:
			return Instruction{Op: Cls}, nil
		case 0x00ee:
			return Instruction{Op: Ret}, nil
		default:
			return Instruction{Op: Sys, Addr: addr}, nil
		}

	case 0x1000:
		return Instruction{Op: Jump, Addr: addr}, nil

	case 0x2000:
		return Instruction{Op: Call, Addr: addr}, nil

	case 0x3000:
		return Instruction{Op: SkipEqImm, X: x, Byte: kk}, nil

	case 0x4000:
		return Instruction{Op: SkipNeImm, X: x, Byte: kk}, nil

	case 0x5000:
		if n != 0 {
			return Instruction{}, unknown(opcode)
		}
		return Instruction{Op: SkipEqReg, X: x, Y: y}, nil

	case 0x6000:
		return Instruction{Op: LoadImm, X: x, Byte: kk}, nil

	case 0x7000:
		return Instruction{Op: AddImm, X: x, Byte: kk}, nil

	case 0x8000:
		switch n {
		case 0x0:
			return Instruction{Op: LoadReg, X: x, Y: y}, nil
		case 0x1:
			return Instruction{Op: OrReg, X: x, Y: y}, nil
		case 0x2:
			return Instruction{Op: AndReg, X: x, Y: y}, nil
		case 0x3:
			return Instruction{Op: XorReg, X: x, Y: y}, nil
		case 0x4:
			return Instruction{Op: AddReg, X: x, Y: y}, nil
		case 0x5:
			return Instruction{Op: SubReg, X: x, Y: y}, nil
		case 0x6:
			return Instruction{Op: ShrReg, X: x}, nil
		case 0x7:
			return Instruction{Op: SubnReg, X: x, Y: y}, nil
		case 0xe:
			return Instruction{Op: ShlReg, X: x}, nil
		default:
			return Instruction{}, unknown(opcode)
		}

	case 0x9000:
		if n != 0 {
			return Instruction{}, unknown(opcode)
		}
		return Instruction{Op: SkipNeReg, X: x, Y: y}, nil

	case 0xa000:
		return Instruction{Op: SetIndex, Addr: addr}, nil

	case 0xb000:
		return Instruction{Op: JumpV0, Addr: addr}, nil

	case 0xc000:
		return Instruction{Op: Random, X: x, Byte: kk}, nil

	case 0xd000:
		return Instruction{Op: Draw, X: x, Y: y, N: n}, nil

	case 0xe000:
		switch kk {
		case 0x9e:
			return Instruction{Op: SkipKeyPressed, X: x}, nil
		case 0xa1:
			return Instruction{Op: SkipKeyNotPressed, X: x}, nil
		default:
			return Instruction{}, unknown(opcode)
		}

	case 0xf000:
		switch kk {
		case 0x07:
			return Instruction{Op: LoadDelayTimer, X: x}, nil
		case 0x0a:
			return Instruction{Op: WaitKey, X: x}, nil
		case 0x15:
			return Instruction{Op: SetDelayTimer, X: x}, nil
		case 0x18:
			return Instruction{Op: SetSoundTimer, X: x}, nil
		case 0x1e:
			return Instruction{Op: AddIndex, X: x}, nil
		case 0x29:
			return Instruction{Op: LoadFont, X: x}, nil
		case 0x33:
			return Instruction{Op: StoreBCD, X: x}, nil
		case 0x55:
			return Instruction{Op: StoreRegisters, X: x}, nil
		case 0x65:
			return Instruction{Op: LoadRegisters, X: x}, nil
		default:
			return Instruction{}, unknown(opcode)
		}
	}

	return Instruction{}, unknown(opcode)
}

func unknown(opcode uint16) error {
	return fmt.Errorf("%w: $%04X", ErrUnknownOpcode, opcode)
}
