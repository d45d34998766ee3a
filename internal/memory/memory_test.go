package memory

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestNewLoadsFontSet(t *testing.T) {
	m := New(true)

	b, err := m.ReadByte(FontStart)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xf0), b)

	// last byte of the F glyph
	b, err = m.ReadByte(FontStart + 16*FontHeight - 1)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x80), b)
}

func TestReadWriteByte(t *testing.T) {
	m := New(true)

	assert.NoError(t, m.WriteByte(0x200, 0xab))
	b, err := m.ReadByte(0x200)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xab), b)
}

func TestReadWriteWord(t *testing.T) {
	m := New(true)

	assert.NoError(t, m.WriteWord(0x300, 0x1234))

	// big-endian byte order
	hi, err := m.ReadByte(0x300)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x12), hi)
	lo, err := m.ReadByte(0x301)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x34), lo)

	word, err := m.ReadWord(0x300)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x1234), word)
}

func TestWriteProtection(t *testing.T) {
	m := New(true)
	assert.True(t, m.WriteProtected())

	err := m.WriteByte(0x100, 0xff)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrWriteProtected))

	// reads of the protected area are always allowed
	_, err = m.ReadByte(0x100)
	assert.NoError(t, err)

	unprotected := New(false)
	assert.False(t, unprotected.WriteProtected())
	assert.NoError(t, unprotected.WriteByte(0x100, 0xff))
	b, err := unprotected.ReadByte(0x100)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xff), b)
}

func TestOutOfBounds(t *testing.T) {
	m := New(true)

	_, err := m.ReadByte(Size)
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	err = m.WriteByte(Size, 0)
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	_, err = m.ReadWord(Size - 1)
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	err = m.WriteWord(Size-1, 0)
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}

func TestLoadROM(t *testing.T) {
	m := New(true)

	rom := []byte{0x12, 0x00, 0xaa}
	assert.NoError(t, m.LoadROM(rom))

	b, err := m.ReadByte(ProgramStart)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x12), b)
	b, err = m.ReadByte(ProgramStart + 2)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xaa), b)
}

func TestLoadROMSizeLimit(t *testing.T) {
	m := New(true)

	assert.NoError(t, m.LoadROM(make([]byte, MaxROMSize)))

	err := m.LoadROM(make([]byte, MaxROMSize+1))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrROMTooLarge))
}

func TestFontAddr(t *testing.T) {
	m := New(true)

	addr, err := m.FontAddr(0)
	assert.NoError(t, err)
	assert.Equal(t, uint16(FontStart), addr)

	addr, err = m.FontAddr(0xf)
	assert.NoError(t, err)
	assert.Equal(t, uint16(FontStart+0xf*FontHeight), addr)

	_, err = m.FontAddr(0x10)
	assert.True(t, errors.Is(err, ErrInvalidFontDigit))
}

func TestReset(t *testing.T) {
	m := New(false)
	assert.NoError(t, m.WriteByte(0x400, 0x55))

	m.Reset()

	b, err := m.ReadByte(0x400)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), b)

	// font survives the reset
	b, err = m.ReadByte(FontStart)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xf0), b)
}
