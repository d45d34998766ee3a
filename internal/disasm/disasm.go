// Package disasm disassembles CHIP-8 programs loaded into memory.
package disasm

import (
	"fmt"
	"io"
	"sort"

	"github.com/retroemu/chip8/internal/instruction"
	"github.com/retroemu/chip8/internal/memory"
)

// Entry is one disassembled instruction.
type Entry struct {
	Address uint16
	Opcode  uint16
	Ins     instruction.Instruction
}

// wordReader reads 16-bit words from memory, the only access the
// disassembler needs.
type wordReader interface {
	ReadWord(addr uint16) (uint16, error)
}

// ROM linearly disassembles the program area, starting at the program
// start address. The scan stops at the first zero word, at the first
// opcode that does not decode, or at the end of memory. CHIP-8 programs
// carry no code/data separation, so a linear scan over the leading code
// region is the best a static pass can do.
func ROM(mem wordReader) ([]Entry, error) {
	var entries []Entry

	for addr := uint16(memory.ProgramStart); addr < memory.Size-1; addr += 2 {
		opcode, err := mem.ReadWord(addr)
		if err != nil {
			return nil, fmt.Errorf("reading opcode at $%04X: %w", addr, err)
		}
		if opcode == 0 {
			break
		}

		ins, err := instruction.Decode(opcode)
		if err != nil {
			break
		}
		entries = append(entries, Entry{Address: addr, Opcode: opcode, Ins: ins})
	}
	return entries, nil
}

// Write writes a disassembly listing.
func Write(w io.Writer, entries []Entry) error {
	if _, err := fmt.Fprintln(w, "Address  Opcode  Mnemonic"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "$%04X    $%04X   %s\n", e.Address, e.Opcode, e.Ins.Mnemonic()); err != nil {
			return fmt.Errorf("writing entry at $%04X: %w", e.Address, err)
		}
	}
	return nil
}

// Analysis summarizes instruction usage of a disassembled program.
type Analysis struct {
	Counts map[instruction.Op]int
	Total  int
}

// Analyze counts how often each operation occurs.
func Analyze(entries []Entry) Analysis {
	a := Analysis{Counts: map[instruction.Op]int{}}
	for _, e := range entries {
		a.Counts[e.Ins.Op]++
		a.Total++
	}
	return a
}

// WriteSummary writes the usage analysis, most frequent operations
// first.
func (a Analysis) WriteSummary(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%d instructions, %d distinct operations\n", a.Total, len(a.Counts)); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}

	ops := make([]instruction.Op, 0, len(a.Counts))
	for op := range a.Counts {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool {
		if a.Counts[ops[i]] != a.Counts[ops[j]] {
			return a.Counts[ops[i]] > a.Counts[ops[j]]
		}
		return ops[i] < ops[j]
	})

	for _, op := range ops {
		if _, err := fmt.Fprintf(w, "%5d  %s\n", a.Counts[op], op); err != nil {
			return fmt.Errorf("writing count for %s: %w", op, err)
		}
	}
	return nil
}
