// Package display implements the monochrome 64x32 CHIP-8 framebuffer.
package display

import (
	"errors"
	"fmt"
)

const (
	// Width is the framebuffer width in pixels.
	Width = 64

	// Height is the framebuffer height in pixels.
	Height = 32

	// maxSpriteHeight is the largest sprite a draw call accepts,
	// matching the 4-bit height field of the draw instruction.
	maxSpriteHeight = 15
)

var (
	// ErrEmptySprite is returned when a draw call passes no sprite data.
	ErrEmptySprite = errors.New("empty sprite")

	// ErrSpriteTooTall is returned for sprites above 15 rows.
	ErrSpriteTooTall = errors.New("sprite exceeds maximum height")
)

// Display holds the framebuffer state. Pixels are XOR-blitted and wrap
// around both screen edges.
type Display struct {
	fb [Height][Width]bool
}

// New creates a cleared display.
func New() *Display {
	return &Display{}
}

// Clear turns all pixels off.
func (d *Display) Clear() {
	d.fb = [Height][Width]bool{}
}

// DrawSprite XOR-blits a sprite at the given position and reports
// whether any pixel was erased by the draw (the collision flag).
//
// Each sprite byte is one row of 8 pixels, most significant bit
// leftmost. Pixels beyond the screen edge wrap around on both axes.
func (d *Display) DrawSprite(x, y byte, sprite []byte) (bool, error) {
	if len(sprite) == 0 {
		return false, ErrEmptySprite
	}
	if len(sprite) > maxSpriteHeight {
		return false, fmt.Errorf("%w: %d rows", ErrSpriteTooTall, len(sprite))
	}

	collision := false
	for row, bits := range sprite {
		py := (int(y) + row) % Height
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := (int(x) + col) % Width
			if d.fb[py][px] {
				collision = true
			}
			d.fb[py][px] = !d.fb[py][px]
		}
	}
	return collision, nil
}

// Pixel returns the state of a single pixel, false for out of range
// coordinates.
func (d *Display) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return d.fb[y][x]
}

// SetPixel sets a single pixel, ignoring out of range coordinates.
func (d *Display) SetPixel(x, y int, on bool) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	d.fb[y][x] = on
}

// PixelsOn counts the lit pixels.
func (d *Display) PixelsOn() int {
	count := 0
	for y := range d.fb {
		for x := range d.fb[y] {
			if d.fb[y][x] {
				count++
			}
		}
	}
	return count
}
