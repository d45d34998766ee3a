// Package main implements the main entry point for a CHIP-8 emulator
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/retroemu/chip8/internal/cli"
	"github.com/retroemu/chip8/internal/config"
	"github.com/retroemu/chip8/internal/disasm"
	"github.com/retroemu/chip8/internal/emulator"
	"github.com/retroemu/chip8/internal/input"
	"github.com/retroemu/chip8/internal/loader"
	"github.com/retroemu/chip8/internal/memory"
	"github.com/retroemu/chip8/internal/options"
	"github.com/retroemu/chip8/internal/terminal"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			printBanner(logger, opts)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	printBanner(logger, opts)

	if err := run(ctx, logger, opts); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, opts options.Program) error {
	rom, err := loader.Load(ctx, opts.ROM)
	if err != nil {
		return fmt.Errorf("loading ROM from %s: %w", opts.ROM, err)
	}
	logger.Info("ROM loaded", log.String("source", opts.ROM), log.Int("bytes", len(rom)))

	if opts.Analyze {
		return analyze(rom)
	}
	return emulate(ctx, logger, opts, rom)
}

// analyze disassembles the ROM and prints the listing and instruction
// usage statistics instead of running it.
func analyze(rom []byte) error {
	mem := memory.New(true)
	if err := mem.LoadROM(rom); err != nil {
		return err
	}

	entries, err := disasm.ROM(mem)
	if err != nil {
		return fmt.Errorf("disassembling: %w", err)
	}

	if err := disasm.Write(os.Stdout, entries); err != nil {
		return err
	}
	fmt.Println()
	return disasm.Analyze(entries).WriteSummary(os.Stdout)
}

func emulate(ctx context.Context, logger *log.Logger, opts options.Program, rom []byte) error {
	var (
		renderer emulator.Renderer
		backend  input.Backend
	)

	if !opts.Headless {
		termCfg := terminal.DefaultConfig()
		termCfg.PixelOn = firstRune(opts.PixelOn, termCfg.PixelOn)
		termCfg.PixelOff = firstRune(opts.PixelOff, termCfg.PixelOff)
		if opts.PixelWidth > 0 {
			termCfg.PixelWidth = opts.PixelWidth
		}

		ui, err := terminal.New(termCfg)
		if err != nil {
			return fmt.Errorf("initializing terminal: %w", err)
		}
		defer ui.Close()

		renderer = ui
		backend = ui
	}

	emu := emulator.New(emulator.Config{
		CycleRate:    opts.CycleRate,
		MaxCycles:    opts.MaxCycles,
		WriteProtect: !opts.DisableWriteProtection,
		Trace:        opts.Trace,
	}, logger, backend)

	if err := emu.LoadROM(rom); err != nil {
		return err
	}
	return emu.Run(ctx, renderer)
}

func firstRune(s string, fallback rune) rune {
	for _, r := range s {
		return r
	}
	return fallback
}

// printBanner prints application version information
func printBanner(logger *log.Logger, opts options.Program) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		short := commit
		if len(short) > 7 {
			short = short[:7]
		}
		versionString += fmt.Sprintf(" (%s)", short)
	}

	logger.Info("chip8", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
