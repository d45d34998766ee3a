// Package terminal presents the emulator in a terminal using tcell.
//
// It plays two roles: it renders the framebuffer at the frame rate and
// acts as the keypad input backend. Terminals report key presses but
// no releases, so a release is synthesized after a short hold window.
package terminal

import (
	"fmt"
	"time"
	"unicode"

	"github.com/gdamore/tcell"
	"github.com/retroemu/chip8/internal/display"
	"github.com/retroemu/chip8/internal/emulator"
	"github.com/retroemu/chip8/internal/input"
)

// keymap maps the left QWERTY 4x4 block to the hexadecimal keypad:
//
//	1 2 3 4        1 2 3 C
//	q w e r   ->   4 5 6 D
//	a s d f        7 8 9 E
//	z x c v        A 0 B F
var keymap = map[rune]byte{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

// Config controls the terminal presentation.
type Config struct {
	PixelOn      rune
	PixelOff     rune
	PixelWidth   int // terminal cells per framebuffer pixel
	HoldDuration time.Duration
}

// DefaultConfig returns the default terminal settings.
func DefaultConfig() Config {
	return Config{
		PixelOn:      '█',
		PixelOff:     ' ',
		PixelWidth:   2,
		HoldDuration: 150 * time.Millisecond,
	}
}

// UI is the tcell screen wrapper implementing both emulator.Renderer
// and input.Backend.
type UI struct {
	cfg    Config
	screen tcell.Screen

	events chan *tcell.EventKey
	quit   chan struct{}

	lastPress map[byte]time.Time
}

var (
	_ emulator.Renderer = (*UI)(nil)
	_ input.Backend     = (*UI)(nil)
)

// New initializes the terminal screen and starts the event reader.
func New(cfg Config) (*UI, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing screen: %w", err)
	}
	screen.HideCursor()

	u := &UI{
		cfg:       cfg,
		screen:    screen,
		events:    make(chan *tcell.EventKey, 64),
		quit:      make(chan struct{}),
		lastPress: map[byte]time.Time{},
	}
	go u.readEvents()
	return u, nil
}

// Close restores the terminal.
func (u *UI) Close() {
	u.screen.Fini()
}

// readEvents pumps tcell events into the channel consumed by Poll.
// PollEvent blocks, so it runs in its own goroutine; it exits when
// Fini unblocks it with a nil event.
func (u *UI) readEvents() {
	for {
		switch ev := u.screen.PollEvent().(type) {
		case *tcell.EventKey:
			select {
			case u.events <- ev:
			default: // drop events when the emulation stalls
			}
		case *tcell.EventResize:
			u.screen.Sync()
		case nil:
			return
		}
	}
}

// Poll implements input.Backend. It drains the pending key events,
// mapping runes to keypad presses, and synthesizes releases for keys
// whose hold window has passed.
func (u *UI) Poll() ([]input.Event, error) {
	var events []input.Event

	for {
		select {
		case ev := <-u.events:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				u.requestQuit()
			case tcell.KeyRune:
				if key, ok := keymap[unicode.ToLower(ev.Rune())]; ok {
					events = append(events, input.Event{Key: key, Pressed: true})
					u.lastPress[key] = time.Now()
				}
			}
		default:
			now := time.Now()
			for key, pressed := range u.lastPress {
				if now.Sub(pressed) >= u.cfg.HoldDuration {
					events = append(events, input.Event{Key: key, Pressed: false})
					delete(u.lastPress, key)
				}
			}
			return events, nil
		}
	}
}

func (u *UI) requestQuit() {
	select {
	case <-u.quit:
	default:
		close(u.quit)
	}
}

// Render implements emulator.Renderer. It draws the framebuffer and a
// status line, and reports emulator.ErrQuit once the user requested to
// exit.
func (u *UI) Render(d *display.Display, stats emulator.Stats) error {
	select {
	case <-u.quit:
		return emulator.ErrQuit
	default:
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	for y := 0; y < display.Height; y++ {
		for x := 0; x < display.Width; x++ {
			ch := u.cfg.PixelOff
			if d.Pixel(x, y) {
				ch = u.cfg.PixelOn
			}
			for cell := 0; cell < u.cfg.PixelWidth; cell++ {
				u.screen.SetContent(x*u.cfg.PixelWidth+cell, y, ch, nil, style)
			}
		}
	}

	u.drawStatus(stats)
	u.screen.Show()
	return nil
}

func (u *UI) drawStatus(stats emulator.Stats) {
	status := fmt.Sprintf("PC $%04X  I $%04X  cycles %d", stats.PC, stats.Index, stats.Cycles)
	if stats.Waiting {
		status += "  WAIT"
	}
	if stats.Beeping {
		status += "  BEEP"
	}
	status += "  (Esc to quit)"

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	width := display.Width * u.cfg.PixelWidth
	row := display.Height
	col := 0
	for _, ch := range status {
		if col >= width {
			break
		}
		u.screen.SetContent(col, row, ch, nil, style)
		col++
	}
	for ; col < width; col++ {
		u.screen.SetContent(col, row, ' ', nil, style)
	}
}
