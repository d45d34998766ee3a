// Package options contains the program options.
package options

// Program options of the emulator.
type Program struct {
	ROM string // file path or http(s) URL

	Analyze  bool // disassemble and print usage statistics instead of running
	Headless bool // run without a terminal renderer

	CycleRate int   // instructions per second
	MaxCycles int64 // stop after this many cycles, 0 for unlimited

	DisableWriteProtection bool

	PixelOn    string
	PixelOff   string
	PixelWidth int

	Debug bool
	Quiet bool
	Trace bool
}
