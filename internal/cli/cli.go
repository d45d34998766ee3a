// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroemu/chip8/internal/options"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if err := validateOptions(opts); err != nil {
		return opts, err
	}

	opts.ROM = args[0]
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: chip8 [options] <ROM file or URL>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after the ROM, please pass the ROM as last argument", arg),
			}
		}
	}
	return nil
}

// validateOptions validates option values
func validateOptions(opts options.Program) error {
	if opts.CycleRate <= 0 {
		return fmt.Errorf("cycle rate must be positive, got %d", opts.CycleRate)
	}
	if opts.MaxCycles < 0 {
		return fmt.Errorf("max cycles must not be negative, got %d", opts.MaxCycles)
	}
	if opts.PixelWidth <= 0 {
		return fmt.Errorf("pixel width must be positive, got %d", opts.PixelWidth)
	}
	if len([]rune(opts.PixelOn)) != 1 || len([]rune(opts.PixelOff)) != 1 {
		return fmt.Errorf("pixel characters must be single characters")
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.BoolVar(&opts.Analyze, "analyze", false, "disassemble the ROM and print instruction usage statistics instead of running it")
	flags.BoolVar(&opts.Headless, "headless", false, "run without a terminal display")
	flags.IntVar(&opts.CycleRate, "rate", 500, "instructions executed per second")
	flags.Int64Var(&opts.MaxCycles, "maxcycles", 0, "stop after the given number of cycles, 0 for unlimited")
	flags.BoolVar(&opts.DisableWriteProtection, "nowriteprotect", false, "allow writes into the interpreter memory area")
	flags.StringVar(&opts.PixelOn, "pixelon", "█", "character for lit pixels")
	flags.StringVar(&opts.PixelOff, "pixeloff", " ", "character for dark pixels")
	flags.IntVar(&opts.PixelWidth, "pixelwidth", 2, "terminal cells per pixel")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction")
}
