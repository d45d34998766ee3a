// Package memory implements the CHIP-8 4KB address space.
//
// Memory map:
//
//	0x000-0x1FF: interpreter area, write-protected by default
//	0x050-0x09F: built-in hexadecimal font (16 glyphs, 5 bytes each)
//	0x200-0xFFF: program ROM and work RAM
package memory

import (
	"errors"
	"fmt"
)

const (
	// Size is the total memory size in bytes.
	Size = 4096

	// FontStart is the address of the built-in font set.
	FontStart = 0x050

	// ProgramStart is the address where ROMs are loaded and execution begins.
	ProgramStart = 0x200

	// FontHeight is the height of a font glyph in bytes.
	FontHeight = 5

	// MaxROMSize is the largest ROM that fits into the program area.
	MaxROMSize = Size - ProgramStart

	// interpreterEnd is the last address of the write-protected area.
	interpreterEnd = 0x1ff
)

var (
	// ErrOutOfBounds is returned for any access beyond the 4KB address space.
	ErrOutOfBounds = errors.New("address out of bounds")

	// ErrWriteProtected is returned for writes into the interpreter area
	// while write protection is enabled.
	ErrWriteProtected = errors.New("write to protected interpreter area")

	// ErrROMTooLarge is returned when ROM data exceeds the program area.
	ErrROMTooLarge = errors.New("ROM exceeds available program space")

	// ErrInvalidFontDigit is returned for font lookups outside 0x0-0xF.
	ErrInvalidFontDigit = errors.New("font digit out of range")
)

// fontSet contains the 4x5 pixel glyphs for the hexadecimal digits 0-F.
var fontSet = [16 * FontHeight]byte{
	0xf0, 0x90, 0x90, 0x90, 0xf0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xf0, 0x10, 0xf0, 0x80, 0xf0, // 2
	0xf0, 0x10, 0xf0, 0x10, 0xf0, // 3
	0x90, 0x90, 0xf0, 0x10, 0x10, // 4
	0xf0, 0x80, 0xf0, 0x10, 0xf0, // 5
	0xf0, 0x80, 0xf0, 0x90, 0xf0, // 6
	0xf0, 0x10, 0x20, 0x40, 0x40, // 7
	0xf0, 0x90, 0xf0, 0x90, 0xf0, // 8
	0xf0, 0x90, 0xf0, 0x10, 0xf0, // 9
	0xf0, 0x90, 0xf0, 0x90, 0x90, // A
	0xe0, 0x90, 0xe0, 0x90, 0xe0, // B
	0xf0, 0x80, 0x80, 0x80, 0xf0, // C
	0xe0, 0x90, 0x90, 0x90, 0xe0, // D
	0xf0, 0x80, 0xf0, 0x80, 0xf0, // E
	0xf0, 0x80, 0xf0, 0x80, 0x80, // F
}

// Memory is the CHIP-8 4KB RAM with configurable write protection for
// the interpreter area. The font set is written once at construction,
// bypassing the protection check.
type Memory struct {
	ram          [Size]byte
	writeProtect bool
}

// New creates a memory instance with the font set loaded.
func New(writeProtect bool) *Memory {
	m := &Memory{writeProtect: writeProtect}
	copy(m.ram[FontStart:], fontSet[:])
	return m
}

// ReadByte reads a single byte.
func (m *Memory) ReadByte(addr uint16) (byte, error) {
	if int(addr) >= Size {
		return 0, fmt.Errorf("%w: reading $%04X", ErrOutOfBounds, addr)
	}
	return m.ram[addr], nil
}

// WriteByte writes a single byte, honoring the write protection policy.
func (m *Memory) WriteByte(addr uint16, value byte) error {
	if int(addr) >= Size {
		return fmt.Errorf("%w: writing $%04X", ErrOutOfBounds, addr)
	}
	if m.writeProtect && addr <= interpreterEnd {
		return fmt.Errorf("%w: $%04X", ErrWriteProtected, addr)
	}
	m.ram[addr] = value
	return nil
}

// ReadWord reads a big-endian 16-bit word, used for opcode fetch.
func (m *Memory) ReadWord(addr uint16) (uint16, error) {
	if int(addr)+1 >= Size {
		return 0, fmt.Errorf("%w: reading word at $%04X", ErrOutOfBounds, addr)
	}
	return uint16(m.ram[addr])<<8 | uint16(m.ram[addr+1]), nil
}

// WriteWord writes a big-endian 16-bit word through WriteByte, so the
// write protection policy applies to both bytes.
func (m *Memory) WriteWord(addr uint16, value uint16) error {
	if int(addr)+1 >= Size {
		return fmt.Errorf("%w: writing word at $%04X", ErrOutOfBounds, addr)
	}
	if err := m.WriteByte(addr, byte(value>>8)); err != nil {
		return err
	}
	return m.WriteByte(addr+1, byte(value))
}

// LoadROM copies ROM data into the program area starting at ProgramStart.
// Registers, display and input are independent components and are not
// touched; the caller is responsible for (re)initializing them.
func (m *Memory) LoadROM(data []byte) error {
	if len(data) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrROMTooLarge, len(data), MaxROMSize)
	}
	copy(m.ram[ProgramStart:], data)
	return nil
}

// FontAddr returns the address of the font sprite for a hexadecimal digit.
func (m *Memory) FontAddr(digit byte) (uint16, error) {
	if digit > 0xf {
		return 0, fmt.Errorf("%w: %d", ErrInvalidFontDigit, digit)
	}
	return FontStart + uint16(digit)*FontHeight, nil
}

// WriteProtected reports whether the interpreter area is write-protected.
func (m *Memory) WriteProtected() bool {
	return m.writeProtect
}

// Reset clears all memory and reloads the font set.
func (m *Memory) Reset() {
	m.ram = [Size]byte{}
	copy(m.ram[FontStart:], fontSet[:])
}
