package riscv

import (
	"errors"
	"testing"
)

func TestMemoryFetchWriteRoundTrip(t *testing.T) {
	m := NewMemory(DefaultBase, 4096)
	if err := m.WriteWord(DefaultBase+0x10, 0x12345678); err != nil {
		t.Fatalf("WriteWord: %v", err)
	}
	got, err := m.Fetch32(DefaultBase + 0x10)
	if err != nil {
		t.Fatalf("Fetch32: %v", err)
	}
	if got != 0x12345678 {
		t.Fatalf("Fetch32 = %#x, want 0x12345678", got)
	}
}

func TestMemoryLittleEndian(t *testing.T) {
	m := NewMemory(DefaultBase, 16)
	if err := m.WriteWord(DefaultBase, 0x01020304); err != nil {
		t.Fatal(err)
	}
	raw, err := m.Read(DefaultBase, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x04, 0x03, 0x02, 0x01}
	for i := range want {
		if raw[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, raw[i], want[i])
		}
	}
}

func TestMemoryOutOfRange(t *testing.T) {
	m := NewMemory(DefaultBase, 16)
	_, err := m.Fetch32(DefaultBase + 13)
	if err == nil {
		t.Fatal("expected out-of-range error")
	}
	var memErr *MemoryError
	if !errors.As(err, &memErr) {
		t.Fatalf("expected *MemoryError, got %T", err)
	}
	if !errors.Is(err, ErrMemory) {
		t.Fatal("expected errors.Is(err, ErrMemory)")
	}
}

func TestMemoryOutOfRangeBelowBase(t *testing.T) {
	m := NewMemory(DefaultBase, 16)
	if _, err := m.Fetch32(DefaultBase - 4); err == nil {
		t.Fatal("expected out-of-range error for address below base")
	}
}

func TestMemoryPreservesSurroundingBytes(t *testing.T) {
	m := NewMemory(DefaultBase, 16)
	if err := m.WriteWord(DefaultBase, 0xFFFFFFFF); err != nil {
		t.Fatal(err)
	}
	if err := m.WriteByte(DefaultBase+1, 0x00); err != nil {
		t.Fatal(err)
	}
	got, err := m.Fetch32(DefaultBase)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0xFFFF00FF {
		t.Fatalf("got %#x, want 0xffff00ff", got)
	}
}
