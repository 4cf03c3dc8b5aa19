// Package elfimage loads statically linked ELF32 little-endian executables
// for the RV32I emulator. It is deliberately narrow: it knows nothing
// about RISC-V semantics, memory sizing, or the base address a caller
// intends to load at. Given a readable ELF image, it returns the
// PT_LOAD segments and the entry point, and nothing else.
//
// This package stays on the standard library (debug/elf) rather than a
// third-party dependency: debug/elf is itself the idiomatic, canonical
// way an ELF file is parsed in Go.
package elfimage

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
)

// ErrLoad is the sentinel wrapped by every segment-placement failure, so
// callers can distinguish "this ELF's segments don't fit" from any other
// error class with errors.Is(err, elfimage.ErrLoad).
var ErrLoad = errors.New("elfimage: cannot load segment")

// Segment is one PT_LOAD segment: its physical load address and bytes.
type Segment struct {
	Paddr uint32
	Data  []byte
}

// Image is the result of loading an ELF file: its segments, in program
// header order, and its entry point.
type Image struct {
	Entry    uint32
	Segments []Segment
}

// LoadError reports a PT_LOAD segment that could not be placed, wrapping
// the underlying cause (usually a riscv.MemoryError from the caller that
// attempted to copy it into a fixed-size buffer).
type LoadError struct {
	Segment int
	Addr    uint32
	Len     int
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("elfimage: segment %d at %#08x (%d bytes): %v", e.Segment, e.Addr, e.Len, e.Err)
}

// Unwrap exposes both ErrLoad (so errors.Is(err, elfimage.ErrLoad)
// matches) and the underlying cause.
func (e *LoadError) Unwrap() []error { return []error{ErrLoad, e.Err} }

// Load reads every PT_LOAD segment from the ELF32 little-endian image in
// r and returns them along with the entry point. It does not validate
// that segments fit in any particular address range: that is the
// caller's concern (riscv.Machine.LoadELF translates p_paddr by the
// machine's base address and range-checks against its own memory size).
func Load(r io.ReaderAt) (*Image, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("elfimage: %w", err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("elfimage: expected ELFCLASS32, got %s", f.Class)
	}
	if f.Data != elf.ELFDATA2LSB {
		return nil, fmt.Errorf("elfimage: expected little-endian image, got %s", f.Data)
	}

	img := &Image{Entry: uint32(f.Entry)}
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		// Memsz may exceed Filesz (uninitialized .bss tail); the extra
		// bytes are left zeroed, matching what a real loader would do.
		data := make([]byte, prog.Memsz)
		if _, err := prog.ReadAt(data[:prog.Filesz], 0); err != nil && err != io.EOF {
			return nil, fmt.Errorf("elfimage: reading PT_LOAD segment at %#x: %w", prog.Paddr, err)
		}
		img.Segments = append(img.Segments, Segment{
			Paddr: uint32(prog.Paddr),
			Data:  data,
		})
	}
	return img, nil
}
