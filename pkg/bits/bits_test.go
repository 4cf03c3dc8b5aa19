package bits

import "testing"

func TestSlice(t *testing.T) {
	cases := []struct {
		word   uint32
		hi, lo uint
		want   uint32
	}{
		{0xFFFFFFFF, 31, 0, 0xFFFFFFFF},
		{0b1010_1100, 7, 4, 0b1010},
		{0x12345678, 31, 20, 0x123},
		{0, 31, 0, 0},
	}
	for _, c := range cases {
		if got := Slice(c.word, c.hi, c.lo); got != c.want {
			t.Errorf("Slice(%#x, %d, %d) = %#x, want %#x", c.word, c.hi, c.lo, got, c.want)
		}
	}
}

func TestMask(t *testing.T) {
	if Mask(0) != 0 {
		t.Errorf("Mask(0) should be 0")
	}
	if Mask(12) != 0xFFF {
		t.Errorf("Mask(12) = %#x, want 0xfff", Mask(12))
	}
	if Mask(32) != 0xFFFFFFFF {
		t.Errorf("Mask(32) = %#x, want 0xffffffff", Mask(32))
	}
}

func TestSignExtend(t *testing.T) {
	cases := []struct {
		value uint32
		n     uint
		want  int32
	}{
		{0x7FF, 12, 0x7FF},
		{0x800, 12, -2048},
		{0xFFF, 12, -1},
		{1, 1, -1},
		{0, 1, 0},
		{0xFFFFFFFF, 32, -1},
	}
	for _, c := range cases {
		if got := int32(SignExtend(c.value, c.n)); got != c.want {
			t.Errorf("SignExtend(%#x, %d) = %d, want %d", c.value, c.n, got, c.want)
		}
	}
}

func TestInsert(t *testing.T) {
	var word uint32
	word = Insert(word, 0b101, 2, 0)
	word = Insert(word, 0b11, 4, 3)
	if word != 0b11101 {
		t.Errorf("Insert chain = %#b, want %#b", word, 0b11101)
	}
}
