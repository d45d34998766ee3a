// Package emulator wires CPU, memory, display and keypad into a
// running machine and drives the timing loop.
package emulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroemu/chip8/internal/cpu"
	"github.com/retroemu/chip8/internal/display"
	"github.com/retroemu/chip8/internal/input"
	"github.com/retroemu/chip8/internal/instruction"
	"github.com/retroemu/chip8/internal/memory"
	"github.com/retroenv/retrogolib/log"
)

// compile-time checks that the concrete components satisfy the CPU bus
var (
	_ cpu.Memory  = (*memory.Memory)(nil)
	_ cpu.Display = (*display.Display)(nil)
	_ cpu.Input   = (*input.Keypad)(nil)
)

// ErrQuit is returned by a renderer to request a clean shutdown.
var ErrQuit = errors.New("quit requested")

const (
	timerRate = 60 // Hz, fixed by the platform
	frameRate = 30 // renderer updates per second

	defaultCycleRate = 500
)

// Config controls emulator behavior.
type Config struct {
	CycleRate    int   // instructions per second, defaults to 500
	MaxCycles    int64 // stop after this many cycles, 0 for unlimited
	WriteProtect bool  // protect the interpreter memory area
	Trace        bool  // log every executed instruction
}

// Stats is a snapshot of machine state for renderers and shutdown
// reporting.
type Stats struct {
	Cycles   int64
	PC       uint16
	Index    uint16
	PixelsOn int
	Waiting  bool
	Beeping  bool
}

// Renderer presents the framebuffer to the user. Render is called at
// the frame rate, not per cycle.
type Renderer interface {
	Render(d *display.Display, stats Stats) error
}

// Emulator is a complete CHIP-8 machine.
type Emulator struct {
	cfg    Config
	logger *log.Logger

	cpu  *cpu.CPU
	mem  *memory.Memory
	disp *display.Display
	keys *input.Keypad

	cycles int64
}

// New creates an emulator with the given input backend. The backend
// may be nil for headless runs.
func New(cfg Config, logger *log.Logger, backend input.Backend) *Emulator {
	if cfg.CycleRate <= 0 {
		cfg.CycleRate = defaultCycleRate
	}
	return &Emulator{
		cfg:    cfg,
		logger: logger,
		cpu:    cpu.New(),
		mem:    memory.New(cfg.WriteProtect),
		disp:   display.New(),
		keys:   input.New(backend),
	}
}

// LoadROM copies ROM data into the program area.
func (e *Emulator) LoadROM(data []byte) error {
	if err := e.mem.LoadROM(data); err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}
	e.logger.Debug("ROM loaded", log.Int("bytes", len(data)))
	return nil
}

// Step runs a single emulation cycle: poll input, then execute one
// CPU cycle.
func (e *Emulator) Step() error {
	if err := e.keys.Update(); err != nil {
		return fmt.Errorf("updating keypad: %w", err)
	}

	if e.cfg.Trace && !e.cpu.Waiting() {
		e.trace()
	}

	if err := e.cpu.Step(e.mem, e.disp, e.keys); err != nil {
		return err
	}
	e.cycles++
	return nil
}

// Run executes the machine until the context is cancelled, the cycle
// limit is reached, the renderer requests a quit or the CPU faults.
//
// Timers decay at 60 Hz regardless of the configured instruction rate;
// the renderer is driven at the frame rate.
func (e *Emulator) Run(ctx context.Context, renderer Renderer) error {
	cycleTicker := time.NewTicker(time.Second / time.Duration(e.cfg.CycleRate))
	defer cycleTicker.Stop()
	timerTicker := time.NewTicker(time.Second / timerRate)
	defer timerTicker.Stop()

	var renderTick <-chan time.Time
	if renderer != nil {
		frameTicker := time.NewTicker(time.Second / frameRate)
		defer frameTicker.Stop()
		renderTick = frameTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			e.logStats()
			return ctx.Err()

		case <-timerTicker.C:
			e.cpu.TickTimers()

		case <-cycleTicker.C:
			if err := e.Step(); err != nil {
				e.logStats()
				return err
			}
			if e.cfg.MaxCycles > 0 && e.cycles >= e.cfg.MaxCycles {
				e.logger.Debug("Cycle limit reached", log.Int("cycles", int(e.cycles)))
				e.logStats()
				return nil
			}

		case <-renderTick:
			if err := renderer.Render(e.disp, e.Stats()); err != nil {
				if errors.Is(err, ErrQuit) {
					e.logStats()
					return nil
				}
				e.logStats()
				return fmt.Errorf("rendering: %w", err)
			}
		}
	}
}

// Reset returns the machine to its power-on state. The loaded ROM is
// cleared with the rest of memory; load a ROM again before running.
func (e *Emulator) Reset() {
	e.cpu.Reset()
	e.mem.Reset()
	e.disp.Clear()
	e.keys.Reset()
	e.cycles = 0
}

// Stats returns a snapshot of the machine state.
func (e *Emulator) Stats() Stats {
	return Stats{
		Cycles:   e.cycles,
		PC:       e.cpu.PC(),
		Index:    e.cpu.Index(),
		PixelsOn: e.disp.PixelsOn(),
		Waiting:  e.cpu.Waiting(),
		Beeping:  e.cpu.ShouldBeep(),
	}
}

// trace logs the instruction about to execute. Decode failures are
// left for Step to report.
func (e *Emulator) trace() {
	pc := e.cpu.PC()
	opcode, err := e.mem.ReadWord(pc)
	if err != nil {
		return
	}
	ins, err := instruction.Decode(opcode)
	if err != nil {
		return
	}
	e.logger.Debug("Executing",
		log.String("pc", fmt.Sprintf("$%04X", pc)),
		log.String("opcode", fmt.Sprintf("$%04X", opcode)),
		log.String("mnemonic", ins.Mnemonic()),
	)
}

// logStats reports final machine state on shutdown.
func (e *Emulator) logStats() {
	stats := e.Stats()
	e.logger.Info("Emulation stopped",
		log.Int("cycles", int(stats.Cycles)),
		log.String("pc", fmt.Sprintf("$%04X", stats.PC)),
		log.String("i", fmt.Sprintf("$%04X", stats.Index)),
		log.Int("pixels_on", stats.PixelsOn),
	)

	regs := e.cpu.Registers()
	for reg, value := range regs {
		if value != 0 {
			e.logger.Debug("Register",
				log.String("name", fmt.Sprintf("V%X", reg)),
				log.String("value", fmt.Sprintf("$%02X", value)),
			)
		}
	}
	for key := byte(0); key < 16; key++ {
		if count := e.keys.PressCount(key); count > 0 {
			e.logger.Debug("Key activity",
				log.String("key", fmt.Sprintf("%X", key)),
				log.Uint64("presses", count),
			)
		}
	}
}
