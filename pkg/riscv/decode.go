package riscv

import "github.com/go-rv32/rv32i/pkg/bits"

// Opcode values for the RV32I base instruction set.
const (
	OpcodeLUI    = 0b0110111
	OpcodeAUIPC  = 0b0010111
	OpcodeJAL    = 0b1101111
	OpcodeJALR   = 0b1100111
	OpcodeBRANCH = 0b1100011
	OpcodeLOAD   = 0b0000011
	OpcodeSTORE  = 0b0100011
	OpcodeOPIMM  = 0b0010011
	OpcodeOP     = 0b0110011
	OpcodeFENCE  = 0b0001111
	OpcodeSYSTEM = 0b1110011
)

// Instruction is the decoded form of a raw 32-bit instruction word: the
// fixed fields common to every format, plus the immediate selected for
// this instruction's opcode class. It is never stored back into memory;
// it exists only for the duration of one Step.
type Instruction struct {
	Raw    uint32
	Opcode uint32
	RD     uint32
	Funct3 uint32
	RS1    uint32
	RS2    uint32
	Funct7 uint32
	Imm    int32
}

// Decode splits ins into opcode, register fields, funct3/funct7, and
// selects the immediate decoder appropriate for the opcode class. Unknown
// opcodes are reported by the caller (Step), since only the executor knows
// whether a decode failure should abort a run.
func Decode(ins uint32) (Instruction, bool) {
	d := Instruction{
		Raw:    ins,
		Opcode: bits.Slice(ins, 6, 0),
		RD:     bits.Slice(ins, 11, 7),
		Funct3: bits.Slice(ins, 14, 12),
		RS1:    bits.Slice(ins, 19, 15),
		RS2:    bits.Slice(ins, 24, 20),
		Funct7: bits.Slice(ins, 31, 25),
	}
	switch d.Opcode {
	case OpcodeLUI, OpcodeAUIPC:
		d.Imm = int32(ImmU(ins))
	case OpcodeJAL:
		d.Imm = int32(ImmJ(ins))
	case OpcodeJALR, OpcodeLOAD, OpcodeOPIMM, OpcodeSYSTEM:
		d.Imm = int32(ImmI(ins))
	case OpcodeBRANCH:
		d.Imm = int32(ImmB(ins))
	case OpcodeSTORE:
		d.Imm = int32(ImmS(ins))
	case OpcodeOP, OpcodeFENCE:
		// no immediate used by these classes
	default:
		return d, false
	}
	return d, true
}
