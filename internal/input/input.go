// Package input implements the 16-key CHIP-8 keypad.
//
// The keypad tracks two views of key state: a FIFO queue of presses for
// the key-wait instruction, and a held table for the skip-if-key
// instructions. Events are pulled from a Backend once per emulation
// cycle; the keypad itself uses no concurrency.
package input

// Event is a single key state change reported by a backend.
type Event struct {
	Key     byte
	Pressed bool
}

// Backend delivers key events from a concrete input source, such as a
// terminal or a scripted sequence in tests.
type Backend interface {
	// Poll returns the events that occurred since the last call.
	// It never blocks.
	Poll() ([]Event, error)
}

// Keypad is the CHIP-8 hexadecimal keypad state.
type Keypad struct {
	backend Backend

	held    [16]bool
	queue   []byte
	presses [16]uint64
}

// New creates a keypad fed by the given backend. A nil backend is
// allowed; Update then becomes a no-op, useful for headless runs.
func New(backend Backend) *Keypad {
	return &Keypad{backend: backend}
}

// Update polls the backend and applies all pending events. Key values
// are masked to their low nibble.
func (k *Keypad) Update() error {
	if k.backend == nil {
		return nil
	}

	events, err := k.backend.Poll()
	if err != nil {
		return err
	}
	for _, ev := range events {
		key := ev.Key & 0x0f
		if ev.Pressed {
			k.held[key] = true
			k.queue = append(k.queue, key)
			k.presses[key]++
		} else {
			k.held[key] = false
		}
	}
	return nil
}

// TryKeyPress dequeues the oldest unconsumed key press. The second
// return value is false when no press is pending.
func (k *Keypad) TryKeyPress() (byte, bool) {
	if len(k.queue) == 0 {
		return 0, false
	}
	key := k.queue[0]
	k.queue = k.queue[1:]
	return key, true
}

// IsKeyDown reports whether a key is currently held.
func (k *Keypad) IsKeyDown(key byte) bool {
	return k.held[key&0x0f]
}

// PressCount returns how often a key has been pressed since the last
// reset.
func (k *Keypad) PressCount(key byte) uint64 {
	return k.presses[key&0x0f]
}

// Reset clears the queue, the held table and the press counters.
func (k *Keypad) Reset() {
	k.held = [16]bool{}
	k.queue = nil
	k.presses = [16]uint64{}
}
