package riscv

import "encoding/binary"

// Memory is a contiguous byte buffer representing the physical address
// space starting at Base. All multi-byte access is little-endian, as
// RV32I requires.
type Memory struct {
	base uint32
	buf  []byte
}

// NewMemory allocates a Memory of size bytes, addressable as
// [base, base+size).
func NewMemory(base uint32, size uint32) *Memory {
	return &Memory{base: base, buf: make([]byte, size)}
}

// Size returns the memory size in bytes.
func (m *Memory) Size() int { return len(m.buf) }

// Base returns the configured base address.
func (m *Memory) Base() uint32 { return m.base }

func (m *Memory) index(addr uint32, length int) (int, error) {
	idx := int64(addr) - int64(m.base)
	if idx < 0 || idx+int64(length) > int64(len(m.buf)) {
		return 0, &MemoryError{Addr: addr, Len: length}
	}
	return int(idx), nil
}

// Fetch32 returns the little-endian 32-bit word at addr. There is no
// alignment check: RV32I permits misaligned accesses in the harness
// tests this emulator targets.
func (m *Memory) Fetch32(addr uint32) (uint32, error) {
	idx, err := m.index(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.buf[idx : idx+4]), nil
}

// Read returns a copy of length bytes starting at addr.
func (m *Memory) Read(addr uint32, length int) ([]byte, error) {
	idx, err := m.index(addr, length)
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, m.buf[idx:idx+length])
	return out, nil
}

// Write copies data into memory starting at addr, overwriting in place
// and preserving surrounding bytes.
func (m *Memory) Write(addr uint32, data []byte) error {
	idx, err := m.index(addr, len(data))
	if err != nil {
		return err
	}
	copy(m.buf[idx:idx+len(data)], data)
	return nil
}

// WriteByte stores a single byte, the narrow form used by STORE(sb).
func (m *Memory) WriteByte(addr uint32, v uint8) error {
	return m.Write(addr, []byte{v})
}

// WriteHalf stores a little-endian 16-bit halfword, used by STORE(sh).
func (m *Memory) WriteHalf(addr uint32, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return m.Write(addr, buf[:])
}

// WriteWord stores a little-endian 32-bit word, used by STORE(sw).
func (m *Memory) WriteWord(addr uint32, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return m.Write(addr, buf[:])
}
