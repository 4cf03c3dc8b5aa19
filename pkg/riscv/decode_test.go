package riscv

import "testing"

func TestDecodeFields(t *testing.T) {
	// addi x5, x1, 42: opcode=0010011, funct3=000, rd=5, rs1=1, imm=42
	var ins uint32
	ins |= OpcodeOPIMM
	ins |= 5 << 7
	ins |= 0b000 << 12
	ins |= 1 << 15
	ins |= 42 << 20

	d, ok := Decode(ins)
	if !ok {
		t.Fatal("decode failed")
	}
	if d.Opcode != OpcodeOPIMM || d.RD != 5 || d.RS1 != 1 || d.Funct3 != 0 {
		t.Fatalf("decode mismatch: %+v", d)
	}
	if d.Imm != 42 {
		t.Fatalf("imm = %d, want 42", d.Imm)
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	_, ok := Decode(0b1111111) // reserved/unknown opcode
	if ok {
		t.Fatal("expected decode to reject an unknown opcode")
	}
}
