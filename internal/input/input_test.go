package input

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestUpdateAndTryKeyPress(t *testing.T) {
	k := New(NewScripted(
		[]Event{{Key: 0x5, Pressed: true}, {Key: 0xa, Pressed: true}},
	))

	assert.NoError(t, k.Update())

	// presses dequeue in FIFO order
	key, ok := k.TryKeyPress()
	assert.True(t, ok)
	assert.Equal(t, byte(0x5), key)

	key, ok = k.TryKeyPress()
	assert.True(t, ok)
	assert.Equal(t, byte(0xa), key)

	_, ok = k.TryKeyPress()
	assert.False(t, ok)
}

func TestHeldState(t *testing.T) {
	k := New(NewScripted(
		[]Event{{Key: 0x5, Pressed: true}},
		[]Event{{Key: 0x5, Pressed: false}},
	))

	assert.NoError(t, k.Update())
	assert.True(t, k.IsKeyDown(0x5))
	assert.False(t, k.IsKeyDown(0x6))

	assert.NoError(t, k.Update())
	assert.False(t, k.IsKeyDown(0x5))

	// the release does not remove the queued press
	key, ok := k.TryKeyPress()
	assert.True(t, ok)
	assert.Equal(t, byte(0x5), key)
}

func TestKeyMasking(t *testing.T) {
	k := New(NewScripted(
		[]Event{{Key: 0x15, Pressed: true}},
	))

	assert.NoError(t, k.Update())
	assert.True(t, k.IsKeyDown(0x5))
	assert.True(t, k.IsKeyDown(0x15))

	key, ok := k.TryKeyPress()
	assert.True(t, ok)
	assert.Equal(t, byte(0x5), key)
}

func TestPressCount(t *testing.T) {
	k := New(NewScripted(
		[]Event{{Key: 0x1, Pressed: true}, {Key: 0x1, Pressed: false}},
		[]Event{{Key: 0x1, Pressed: true}},
	))

	assert.NoError(t, k.Update())
	assert.NoError(t, k.Update())

	assert.Equal(t, uint64(2), k.PressCount(0x1))
	assert.Equal(t, uint64(0), k.PressCount(0x2))
}

func TestReset(t *testing.T) {
	k := New(NewScripted(
		[]Event{{Key: 0x3, Pressed: true}},
	))
	assert.NoError(t, k.Update())

	k.Reset()

	assert.False(t, k.IsKeyDown(0x3))
	assert.Equal(t, uint64(0), k.PressCount(0x3))
	_, ok := k.TryKeyPress()
	assert.False(t, ok)
}

func TestNilBackend(t *testing.T) {
	k := New(nil)
	assert.NoError(t, k.Update())
	_, ok := k.TryKeyPress()
	assert.False(t, ok)
}
