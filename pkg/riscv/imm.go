package riscv

import "github.com/go-rv32/rv32i/pkg/bits"

// The five immediate decoders below are pure functions of the raw
// instruction word. Each returns the bit pattern as a uint32; callers
// that need arithmetic comparisons cast to int32.
//
// The J-type construction indexes bit 31 as the sign bit and bits
// [30:21]/[20]/[19:12] for the rest, per the standard RV32I J-immediate
// layout; an off-by-one construction that reaches past bit 31 would
// index a position that does not exist in a 32-bit word, and is
// deliberately not reproduced here.

// ImmI decodes the I-type immediate: ins[31:20], sign-extended from 12 bits.
func ImmI(ins uint32) uint32 {
	return bits.SignExtend(bits.Slice(ins, 31, 20), 12)
}

// ImmS decodes the S-type immediate: ins[31:25] || ins[11:7], sign-extended
// from 12 bits.
func ImmS(ins uint32) uint32 {
	v := (bits.Slice(ins, 31, 25) << 5) | bits.Slice(ins, 11, 7)
	return bits.SignExtend(v, 12)
}

// ImmB decodes the B-type immediate: ins[31]||ins[7]||ins[30:25]||ins[11:8]||0,
// sign-extended from 13 bits.
func ImmB(ins uint32) uint32 {
	v := (bits.Slice(ins, 31, 31) << 12) |
		(bits.Slice(ins, 7, 7) << 11) |
		(bits.Slice(ins, 30, 25) << 5) |
		(bits.Slice(ins, 11, 8) << 1)
	return bits.SignExtend(v, 13)
}

// ImmU decodes the U-type immediate: ins[31:12] || 12'b0. No sign extension
// is needed: the field already occupies the top 20 bits of a 32-bit word.
func ImmU(ins uint32) uint32 {
	return bits.Slice(ins, 31, 12) << 12
}

// ImmJ decodes the J-type immediate:
// ins[31]||ins[19:12]||ins[20]||ins[30:21]||0, sign-extended from 21 bits.
func ImmJ(ins uint32) uint32 {
	v := (bits.Slice(ins, 31, 31) << 20) |
		(bits.Slice(ins, 19, 12) << 12) |
		(bits.Slice(ins, 20, 20) << 11) |
		(bits.Slice(ins, 30, 21) << 1)
	return bits.SignExtend(v, 21)
}
