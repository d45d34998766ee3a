// Package cpu implements the CHIP-8 processor core.
//
// The CPU owns registers, the call stack and the timers. Memory,
// display and input are reached through small bus interfaces passed
// into Step, keeping the core free of construction dependencies and
// easy to drive with test doubles.
package cpu

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/retroemu/chip8/internal/instruction"
)

const (
	programStart = 0x200
	fontStart    = 0x050
	fontHeight   = 5
	stackSize    = 16
)

var (
	// ErrStackOverflow is returned when a call exceeds the 16 stack slots.
	ErrStackOverflow = errors.New("call stack overflow")

	// ErrStackUnderflow is returned for a return without a matching call.
	ErrStackUnderflow = errors.New("call stack underflow")
)

// Memory is the CPU's view of the address space.
type Memory interface {
	ReadByte(addr uint16) (byte, error)
	WriteByte(addr uint16, value byte) error
	ReadWord(addr uint16) (uint16, error)
}

// Display is the CPU's view of the framebuffer.
type Display interface {
	Clear()
	DrawSprite(x, y byte, sprite []byte) (bool, error)
}

// Input is the CPU's view of the keypad.
type Input interface {
	TryKeyPress() (byte, bool)
	IsKeyDown(key byte) bool
}

type state uint8

const (
	running state = iota
	waitingForKey
)

// CPU is the CHIP-8 processor state.
type CPU struct {
	v     [16]byte
	i     uint16
	pc    uint16
	sp    uint8
	stack [stackSize]uint16

	delayTimer byte
	soundTimer byte

	state   state
	waitReg uint8

	rand func() byte
}

// New creates a CPU in its power-on state, with the program counter at
// the standard program start address.
func New() *CPU {
	return &CPU{
		pc:   programStart,
		rand: func() byte { return byte(rand.IntN(256)) },
	}
}

// SetRandFunc replaces the random byte source, used to make the random
// instruction deterministic in tests.
func (c *CPU) SetRandFunc(f func() byte) {
	c.rand = f
}

// Reset returns the CPU to its power-on state. The random source is
// kept.
func (c *CPU) Reset() {
	r := c.rand
	*c = CPU{pc: programStart, rand: r}
}

// Step executes a single emulation cycle.
//
// While waiting for a key it polls the press queue and performs no
// fetch. Otherwise it fetches the opcode at PC, advances PC by 2,
// decodes and executes. Jumps and calls overwrite PC; skips advance it
// by a further 2. Timers are not touched; they decay only through
// TickTimers.
func (c *CPU) Step(mem Memory, disp Display, in Input) error {
	if c.state == waitingForKey {
		key, ok := in.TryKeyPress()
		if !ok {
			return nil
		}
		c.v[c.waitReg] = key & 0x0f
		c.state = running
		return nil
	}

	addr := c.pc
	opcode, err := mem.ReadWord(addr)
	if err != nil {
		return fmt.Errorf("fetching at $%04X: %w", addr, err)
	}
	c.pc += 2

	ins, err := instruction.Decode(opcode)
	if err != nil {
		return fmt.Errorf("at $%04X: %w", addr, err)
	}

	if err := c.execute(ins, mem, disp, in); err != nil {
		return fmt.Errorf("executing $%04X at $%04X: %w", opcode, addr, err)
	}
	return nil
}

// TickTimers decrements the delay and sound timers toward zero. The
// caller invokes it at 60 Hz, independent of the instruction rate.
func (c *CPU) TickTimers() {
	if c.delayTimer > 0 {
		c.delayTimer--
	}
	if c.soundTimer > 0 {
		c.soundTimer--
	}
}

func (c *CPU) execute(ins instruction.Instruction, mem Memory, disp Display, in Input) error {
	switch ins.Op {
	case instruction.Cls:
		disp.Clear()

	case instruction.Ret:
		if c.sp == 0 {
			return ErrStackUnderflow
		}
		c.sp--
		c.pc = c.stack[c.sp]

	case instruction.Sys:
		// machine code routine on the original hardware, ignored

	case instruction.Jump:
		c.pc = ins.Addr

	case instruction.Call:
		if c.sp >= stackSize {
			return fmt.Errorf("%w: calling $%03X", ErrStackOverflow, ins.Addr)
		}
		c.stack[c.sp] = c.pc
		c.sp++
		c.pc = ins.Addr

	case instruction.SkipEqImm:
		if c.v[ins.X] == ins.Byte {
			c.pc += 2
		}

	case instruction.SkipNeImm:
		if c.v[ins.X] != ins.Byte {
			c.pc += 2
		}

	case instruction.SkipEqReg:
		if c.v[ins.X] == c.v[ins.Y] {
			c.pc += 2
		}

	case instruction.SkipNeReg:
		if c.v[ins.X] != c.v[ins.Y] {
			c.pc += 2
		}

	case instruction.LoadImm:
		c.v[ins.X] = ins.Byte

	case instruction.AddImm:
		c.v[ins.X] += ins.Byte

	case instruction.LoadReg:
		c.v[ins.X] = c.v[ins.Y]

	case instruction.OrReg:
		c.v[ins.X] |= c.v[ins.Y]

	case instruction.AndReg:
		c.v[ins.X] &= c.v[ins.Y]

	case instruction.XorReg:
		c.v[ins.X] ^= c.v[ins.Y]

	case instruction.AddReg:
		sum := uint16(c.v[ins.X]) + uint16(c.v[ins.Y])
		c.v[ins.X] = byte(sum)
		c.v[0xf] = byte(sum >> 8)

	case instruction.SubReg:
		noBorrow := c.v[ins.X] >= c.v[ins.Y]
		c.v[ins.X] -= c.v[ins.Y]
		c.v[0xf] = boolFlag(noBorrow)

	case instruction.SubnReg:
		noBorrow := c.v[ins.Y] >= c.v[ins.X]
		c.v[ins.X] = c.v[ins.Y] - c.v[ins.X]
		c.v[0xf] = boolFlag(noBorrow)

	case instruction.ShrReg:
		bit := c.v[ins.X] & 0x01
		c.v[ins.X] >>= 1
		c.v[0xf] = bit

	case instruction.ShlReg:
		bit := c.v[ins.X] >> 7
		c.v[ins.X] <<= 1
		c.v[0xf] = bit

	case instruction.SetIndex:
		c.i = ins.Addr

	case instruction.JumpV0:
		c.pc = ins.Addr + uint16(c.v[0])

	case instruction.Random:
		c.v[ins.X] = c.rand() & ins.Byte

	case instruction.Draw:
		sprite := make([]byte, ins.N)
		for row := range sprite {
			b, err := mem.ReadByte(c.i + uint16(row))
			if err != nil {
				return fmt.Errorf("reading sprite row %d: %w", row, err)
			}
			sprite[row] = b
		}
		collision, err := disp.DrawSprite(c.v[ins.X], c.v[ins.Y], sprite)
		if err != nil {
			return err
		}
		c.v[0xf] = boolFlag(collision)

	case instruction.SkipKeyPressed:
		if in.IsKeyDown(c.v[ins.X] & 0x0f) {
			c.pc += 2
		}

	case instruction.SkipKeyNotPressed:
		if !in.IsKeyDown(c.v[ins.X] & 0x0f) {
			c.pc += 2
		}

	case instruction.LoadDelayTimer:
		c.v[ins.X] = c.delayTimer

	case instruction.WaitKey:
		c.state = waitingForKey
		c.waitReg = ins.X

	case instruction.SetDelayTimer:
		c.delayTimer = c.v[ins.X]

	case instruction.SetSoundTimer:
		c.soundTimer = c.v[ins.X]

	case instruction.AddIndex:
		c.i += uint16(c.v[ins.X])

	case instruction.LoadFont:
		c.i = fontStart + uint16(c.v[ins.X]&0x0f)*fontHeight

	case instruction.StoreBCD:
		value := c.v[ins.X]
		digits := [3]byte{value / 100, (value / 10) % 10, value % 10}
		for offset, digit := range digits {
			if err := mem.WriteByte(c.i+uint16(offset), digit); err != nil {
				return fmt.Errorf("storing BCD digit %d: %w", offset, err)
			}
		}

	case instruction.StoreRegisters:
		for reg := uint8(0); reg <= ins.X; reg++ {
			if err := mem.WriteByte(c.i+uint16(reg), c.v[reg]); err != nil {
				return fmt.Errorf("storing V%X: %w", reg, err)
			}
		}

	case instruction.LoadRegisters:
		for reg := uint8(0); reg <= ins.X; reg++ {
			b, err := mem.ReadByte(c.i + uint16(reg))
			if err != nil {
				return fmt.Errorf("loading V%X: %w", reg, err)
			}
			c.v[reg] = b
		}

	default:
		return fmt.Errorf("unhandled operation %s", ins.Op)
	}
	return nil
}

func boolFlag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// PC returns the program counter.
func (c *CPU) PC() uint16 {
	return c.pc
}

// Index returns the I register.
func (c *CPU) Index() uint16 {
	return c.i
}

// Register returns a V register value.
func (c *CPU) Register(reg uint8) byte {
	return c.v[reg&0x0f]
}

// Registers returns a copy of all V registers.
func (c *CPU) Registers() [16]byte {
	return c.v
}

// DelayTimer returns the delay timer value.
func (c *CPU) DelayTimer() byte {
	return c.delayTimer
}

// SoundTimer returns the sound timer value.
func (c *CPU) SoundTimer() byte {
	return c.soundTimer
}

// ShouldBeep reports whether the sound timer is active.
func (c *CPU) ShouldBeep() bool {
	return c.soundTimer > 0
}

// Waiting reports whether the CPU is blocked on a key press.
func (c *CPU) Waiting() bool {
	return c.state == waitingForKey
}
