package elfimage

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"
)

// buildELF32 assembles a minimal, valid ELF32 little-endian image with a
// single PT_LOAD segment carrying payload at the given physical address.
// The standard library only reads ELF files, so the test fixture is
// built by hand from debug/elf's own header layout.
func buildELF32(t *testing.T, paddr uint32, payload []byte) []byte {
	t.Helper()

	const ehsize = 52 // sizeof(Elf32_Ehdr)
	const phentsize = 32
	phoff := uint32(ehsize)
	dataOff := phoff + phentsize

	var buf bytes.Buffer

	ident := [16]byte{}
	copy(ident[:], elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	buf.Write(ident[:])

	hdr := struct {
		Type      uint16
		Machine   uint16
		Version   uint32
		Entry     uint32
		Phoff     uint32
		Shoff     uint32
		Flags     uint32
		Ehsize    uint16
		Phentsize uint16
		Phnum     uint16
		Shentsize uint16
		Shnum     uint16
		Shstrndx  uint16
	}{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_RISCV),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     paddr,
		Phoff:     phoff,
		Shoff:     0,
		Ehsize:    ehsize,
		Phentsize: phentsize,
		Phnum:     1,
		Shentsize: 0,
		Shnum:     0,
		Shstrndx:  0,
	}
	if err := binary.Write(&buf, binary.LittleEndian, hdr); err != nil {
		t.Fatal(err)
	}

	prog := struct {
		Type   uint32
		Off    uint32
		Vaddr  uint32
		Paddr  uint32
		Filesz uint32
		Memsz  uint32
		Flags  uint32
		Align  uint32
	}{
		Type:   uint32(elf.PT_LOAD),
		Off:    dataOff,
		Vaddr:  paddr,
		Paddr:  paddr,
		Filesz: uint32(len(payload)),
		Memsz:  uint32(len(payload)),
		Flags:  uint32(elf.PF_R | elf.PF_X),
		Align:  4,
	}
	if err := binary.Write(&buf, binary.LittleEndian, prog); err != nil {
		t.Fatal(err)
	}

	buf.Write(payload)
	return buf.Bytes()
}

func TestLoadSinglePTLoadSegment(t *testing.T) {
	payload := []byte{0x13, 0x02, 0x80, 0x02} // arbitrary RV32I word, little-endian on disk
	raw := buildELF32(t, 0x8000_0000, payload)

	img, err := Load(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(img.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(img.Segments))
	}
	seg := img.Segments[0]
	if seg.Paddr != 0x8000_0000 {
		t.Fatalf("Paddr = %#x, want 0x80000000", seg.Paddr)
	}
	if !bytes.Equal(seg.Data, payload) {
		t.Fatalf("Data = %x, want %x", seg.Data, payload)
	}
	if img.Entry != 0x8000_0000 {
		t.Fatalf("Entry = %#x, want 0x80000000", img.Entry)
	}
}

func TestLoadRejectsGarbageInput(t *testing.T) {
	if _, err := Load(bytes.NewReader([]byte("not an elf file"))); err == nil {
		t.Fatal("expected an error for garbage input")
	}
}
