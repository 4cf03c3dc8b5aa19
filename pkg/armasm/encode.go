package armasm

import (
	"io"
	"strconv"
	"strings"
)

// Data-processing opcodes, ARMv7-A A32 §A5.2.1.
const (
	opAND = 0x0
	opEOR = 0x1
	opSUB = 0x2
	opADD = 0x4
	opCMP = 0xA
	opORR = 0xC
	opMOV = 0xD
	opMVN = 0xF
)

// WordOrError is one assembled word, or the error that stopped
// assembly, tagged with its source line for diagnostics.
type WordOrError struct {
	Word   uint32
	Err    error
	Lineno int
}

// StartAssembler reads ARM32 A32 source from r and streams one
// WordOrError per instruction/.word directive on the returned channel.
// Assembly runs in two passes: lex and parse every line, build the label
// table from the resulting instruction list, then encode each
// instruction against that table.
func StartAssembler(r io.Reader) <-chan WordOrError {
	out := make(chan WordOrError)
	go assembleAsync(r, out)
	return out
}

func assembleAsync(r io.Reader, out chan<- WordOrError) {
	defer close(out)

	var instrs []*Instruction
	for res := range startParsing(startLexing(r)) {
		if res.Err != nil {
			out <- WordOrError{Err: res.Err, Lineno: res.Lineno}
			return
		}
		instrs = append(instrs, res.Instr)
	}

	symtab, err := buildSymtab(instrs)
	if err != nil {
		out <- WordOrError{Err: err}
		return
	}

	idx := 0
	for _, instr := range instrs {
		emits := instr.IsWord || instr.Mnemonic != ""
		if !emits {
			continue
		}
		word, err := encodeOne(instr, idx, symtab)
		if err != nil {
			out <- WordOrError{Err: err, Lineno: instr.Lineno}
			return
		}
		out <- WordOrError{Word: word, Lineno: instr.Lineno}
		idx++
	}
}

// Assemble runs StartAssembler to completion and returns every encoded
// word, or the first error encountered.
func Assemble(r io.Reader) ([]uint32, error) {
	var words []uint32
	for woe := range StartAssembler(r) {
		if woe.Err != nil {
			return nil, woe.Err
		}
		words = append(words, woe.Word)
	}
	return words, nil
}

func encodeOne(instr *Instruction, idx int, symtab map[string]int) (uint32, error) {
	if instr.IsWord {
		return encodeWord(instr, symtab)
	}

	cond := instr.Cond
	switch instr.Mnemonic {
	case "ADD", "SUB":
		return encodeArithmetic(instr, cond)
	case "MOV", "MVN":
		return encodeMove(instr, cond)
	case "AND", "ORR", "EOR":
		return encodeLogical(instr, cond)
	case "CMP":
		return encodeCompare(instr, cond)
	case "MUL":
		return encodeMultiply(instr, cond)
	case "ASR":
		return encodeASR(instr, cond)
	case "STR", "LDR":
		return encodeMemory(instr, cond)
	case "PUSH":
		return encodePushPop(instr, cond, true)
	case "POP":
		return encodePushPop(instr, cond, false)
	case "B", "BL":
		return encodeBranch(instr, idx, symtab, cond)
	case "BX":
		return encodeBX(instr, cond)
	default:
		return 0, assembleErrorf(instr.Lineno, instr.Mnemonic, "%w: unsupported mnemonic", ErrAssemble)
	}
}

func encodeWord(instr *Instruction, symtab map[string]int) (uint32, error) {
	expr := strings.TrimSpace(instr.WordExpr)
	if idx, ok := symtab[expr]; ok {
		return uint32(idx) * 4, nil
	}
	v, err := parseImmediate(expr)
	if err != nil {
		return 0, assembleErrorf(instr.Lineno, ".word", "%w: invalid operand %q", ErrAssemble, expr)
	}
	return uint32(v), nil
}

// parseRegister accepts R0-R15 and the aliases SP (R13), LR (R14), PC (R15).
func parseRegister(lineno int, s string) (uint32, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "SP":
		return 13, nil
	case "LR":
		return 14, nil
	case "PC":
		return 15, nil
	}
	if !strings.HasPrefix(s, "R") {
		return 0, assembleErrorf(lineno, s, "%w: not a register", ErrAssemble)
	}
	n, err := strconv.ParseUint(s[1:], 10, 32)
	if err != nil || n > 15 {
		return 0, assembleErrorf(lineno, s, "%w: invalid register %q", ErrAssemble, s)
	}
	return uint32(n), nil
}

// encodeImmediate searches for an 8-bit-value/4-bit-rotation encoding of
// value, the ARM "modified immediate constant" form (§A5.2.4).
func encodeImmediate(value uint32) (uint32, bool) {
	for rotate := uint32(0); rotate < 32; rotate += 2 {
		rotated := (value >> rotate) | (value << (32 - rotate))
		if rotated <= 0xFF {
			decodeRotate := (32 - rotate) % 32
			return ((decodeRotate / 2) << 8) | rotated, true
		}
	}
	return 0, false
}

// encodeOperand2 encodes the final operand of a data-processing
// instruction: either an immediate (`#123`) or a register, per §A5.1.
func encodeOperand2(lineno int, operand string) (uint32, bool, error) {
	operand = strings.TrimSpace(operand)
	if isImmediate(operand) {
		v, err := parseImmediate(operand)
		if err != nil {
			return 0, false, assembleErrorf(lineno, operand, "%w: invalid immediate", ErrAssemble)
		}
		encoded, ok := encodeImmediate(uint32(v))
		if !ok {
			return 0, false, assembleErrorf(lineno, operand, "%w: immediate %d cannot be encoded", ErrAssemble, v)
		}
		return encoded, true, nil
	}
	rm, err := parseRegister(lineno, operand)
	if err != nil {
		return 0, false, err
	}
	return rm, false, nil
}

func encodeArithmetic(instr *Instruction, cond uint32) (uint32, error) {
	if len(instr.Operands) != 3 {
		return 0, assembleErrorf(instr.Lineno, instr.Mnemonic, "%w: wants 3 operands, got %d", ErrAssemble, len(instr.Operands))
	}
	rd, err := parseRegister(instr.Lineno, instr.Operands[0])
	if err != nil {
		return 0, err
	}
	rn, err := parseRegister(instr.Lineno, instr.Operands[1])
	if err != nil {
		return 0, err
	}
	op2, isImm, err := encodeOperand2(instr.Lineno, instr.Operands[2])
	if err != nil {
		return 0, err
	}
	opcode := uint32(opADD)
	if instr.Mnemonic == "SUB" {
		opcode = opSUB
	}
	return buildDataProcessing(cond, isImm, opcode, boolToBit(instr.SetFlags), rn, rd, op2), nil
}

func encodeLogical(instr *Instruction, cond uint32) (uint32, error) {
	if len(instr.Operands) != 3 {
		return 0, assembleErrorf(instr.Lineno, instr.Mnemonic, "%w: wants 3 operands, got %d", ErrAssemble, len(instr.Operands))
	}
	rd, err := parseRegister(instr.Lineno, instr.Operands[0])
	if err != nil {
		return 0, err
	}
	rn, err := parseRegister(instr.Lineno, instr.Operands[1])
	if err != nil {
		return 0, err
	}
	op2, isImm, err := encodeOperand2(instr.Lineno, instr.Operands[2])
	if err != nil {
		return 0, err
	}
	var opcode uint32
	switch instr.Mnemonic {
	case "AND":
		opcode = opAND
	case "ORR":
		opcode = opORR
	case "EOR":
		opcode = opEOR
	}
	return buildDataProcessing(cond, isImm, opcode, boolToBit(instr.SetFlags), rn, rd, op2), nil
}

func encodeMove(instr *Instruction, cond uint32) (uint32, error) {
	if len(instr.Operands) != 2 {
		return 0, assembleErrorf(instr.Lineno, instr.Mnemonic, "%w: wants 2 operands, got %d", ErrAssemble, len(instr.Operands))
	}
	rd, err := parseRegister(instr.Lineno, instr.Operands[0])
	if err != nil {
		return 0, err
	}
	op2, isImm, err := encodeOperand2(instr.Lineno, instr.Operands[1])
	if err != nil {
		return 0, err
	}
	opcode := uint32(opMOV)
	if instr.Mnemonic == "MVN" {
		opcode = opMVN
	}
	return buildDataProcessing(cond, isImm, opcode, boolToBit(instr.SetFlags), 0, rd, op2), nil
}

func encodeCompare(instr *Instruction, cond uint32) (uint32, error) {
	if len(instr.Operands) != 2 {
		return 0, assembleErrorf(instr.Lineno, instr.Mnemonic, "%w: wants 2 operands, got %d", ErrAssemble, len(instr.Operands))
	}
	rn, err := parseRegister(instr.Lineno, instr.Operands[0])
	if err != nil {
		return 0, err
	}
	op2, isImm, err := encodeOperand2(instr.Lineno, instr.Operands[1])
	if err != nil {
		return 0, err
	}
	return buildDataProcessing(cond, isImm, opCMP, 1, rn, 0, op2), nil
}

// encodeASR assembles the shift pseudo-instruction `ASR Rd, Rm, #imm` (or
// `ASR Rd, Rm, Rs`) as `MOV Rd, Rm, ASR #imm`, the canonical ARM encoding
// for a standalone arithmetic-shift-right (§A8.8.7).
func encodeASR(instr *Instruction, cond uint32) (uint32, error) {
	if len(instr.Operands) != 3 {
		return 0, assembleErrorf(instr.Lineno, instr.Mnemonic, "%w: wants 3 operands, got %d", ErrAssemble, len(instr.Operands))
	}
	rd, err := parseRegister(instr.Lineno, instr.Operands[0])
	if err != nil {
		return 0, err
	}
	rm, err := parseRegister(instr.Lineno, instr.Operands[1])
	if err != nil {
		return 0, err
	}
	shiftOperand := strings.TrimSpace(instr.Operands[2])
	const shiftTypeASR = 0x2
	var shiftField uint32
	if isImmediate(shiftOperand) {
		v, err := parseImmediate(shiftOperand)
		if err != nil || v < 0 || v > 31 {
			return 0, assembleErrorf(instr.Lineno, shiftOperand, "%w: invalid shift amount", ErrAssemble)
		}
		shiftField = (uint32(v) << 7) | (shiftTypeASR << 5) | rm
	} else {
		rs, err := parseRegister(instr.Lineno, shiftOperand)
		if err != nil {
			return 0, err
		}
		shiftField = (rs << 8) | (shiftTypeASR << 5) | (1 << 4) | rm
	}
	instruction := (cond << 28) | (opMOV << 21) | (boolToBit(instr.SetFlags) << 20) | (rd << 12) | shiftField
	return instruction, nil
}

func buildDataProcessing(cond uint32, isImm bool, opcode, sBit, rn, rd, op2 uint32) uint32 {
	var iBit uint32
	if isImm {
		iBit = 1
	}
	return (cond << 28) | (iBit << 25) | (opcode << 21) | (sBit << 20) | (rn << 16) | (rd << 12) | op2
}

func boolToBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func encodeMultiply(instr *Instruction, cond uint32) (uint32, error) {
	if len(instr.Operands) != 3 {
		return 0, assembleErrorf(instr.Lineno, instr.Mnemonic, "%w: wants 3 operands, got %d", ErrAssemble, len(instr.Operands))
	}
	rd, err := parseRegister(instr.Lineno, instr.Operands[0])
	if err != nil {
		return 0, err
	}
	rm, err := parseRegister(instr.Lineno, instr.Operands[1])
	if err != nil {
		return 0, err
	}
	rs, err := parseRegister(instr.Lineno, instr.Operands[2])
	if err != nil {
		return 0, err
	}
	// Format: cccc 0000 00AS dddd 0000 ssss 1001 mmmm (A=0 for MUL)
	instruction := (cond << 28) | (boolToBit(instr.SetFlags) << 20) | (rd << 16) | (rs << 8) | (0x9 << 4) | rm
	return instruction, nil
}

// encodeMemory handles STR/LDR with the supported addressing modes:
// [Rn], [Rn, #imm], [Rn, #imm]!, [Rn], #imm.
func encodeMemory(instr *Instruction, cond uint32) (uint32, error) {
	if len(instr.Operands) < 2 {
		return 0, assembleErrorf(instr.Lineno, instr.Mnemonic, "%w: wants at least 2 operands, got %d", ErrAssemble, len(instr.Operands))
	}
	rd, err := parseRegister(instr.Lineno, instr.Operands[0])
	if err != nil {
		return 0, err
	}

	addr := instr.Operands[1]
	postIndexed := len(instr.Operands) == 3
	var rn uint32
	var immStr string
	var writeback bool

	if postIndexed {
		inner := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(addr), "["), "]")
		rn, err = parseRegister(instr.Lineno, inner)
		if err != nil {
			return 0, err
		}
		immStr = strings.TrimSpace(instr.Operands[2])
		writeback = true // post-indexed always writes back in this grammar
	} else {
		writeback = strings.HasSuffix(addr, "]!")
		inner := strings.TrimSuffix(addr, "!")
		inner = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(inner), "["), "]")
		parts := strings.SplitN(inner, ",", 2)
		rn, err = parseRegister(instr.Lineno, strings.TrimSpace(parts[0]))
		if err != nil {
			return 0, err
		}
		if len(parts) == 2 {
			immStr = strings.TrimSpace(parts[1])
		}
	}

	var offset uint32
	uBit := uint32(1)
	if immStr != "" {
		v, err := parseImmediate(immStr)
		if err != nil {
			return 0, assembleErrorf(instr.Lineno, immStr, "%w: invalid offset", ErrAssemble)
		}
		if v < 0 {
			uBit = 0
			v = -v
		}
		if v > 0xFFF {
			return 0, assembleErrorf(instr.Lineno, immStr, "%w: offset %d too large for 12 bits", ErrAssemble, v)
		}
		offset = uint32(v)
	}

	var pBit uint32 = 1
	var wBit uint32
	if postIndexed {
		// P=0 already implies writeback; W stays 0 because P=0, W=1
		// selects the unprivileged STRT/LDRT forms.
		pBit = 0
	} else if writeback {
		wBit = 1
	}
	var lBit uint32
	if instr.Mnemonic == "LDR" {
		lBit = 1
	}

	// Format: cccc 01IP UBWL nnnn dddd oooo oooo oooo (I=0: immediate offset)
	instruction := (cond << 28) | (1 << 26) | (pBit << 24) | (uBit << 23) |
		(wBit << 21) | (lBit << 20) | (rn << 16) | (rd << 12) | offset
	return instruction, nil
}

// encodePushPop assembles PUSH {reglist} as STMDB SP!, {reglist} and
// POP {reglist} as LDMIA SP!, {reglist}, §A8.8.133/A8.8.132.
func encodePushPop(instr *Instruction, cond uint32, isPush bool) (uint32, error) {
	if len(instr.Operands) != 1 {
		return 0, assembleErrorf(instr.Lineno, instr.Mnemonic, "%w: wants a register list", ErrAssemble)
	}
	mask, err := parseRegisterList(instr.Lineno, instr.Operands[0])
	if err != nil {
		return 0, err
	}
	const regSP = 13
	var pBit, uBit, lBit uint32
	if isPush {
		pBit, uBit, lBit = 1, 0, 0
	} else {
		pBit, uBit, lBit = 0, 1, 1
	}
	instruction := (cond << 28) | (0x4 << 25) | (pBit << 24) | (uBit << 23) |
		(1 << 21) | (lBit << 20) | (regSP << 16) | mask
	return instruction, nil
}

func parseRegisterList(lineno int, s string) (uint32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "{"), "}")
	var mask uint32
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i := strings.IndexByte(part, '-'); i >= 0 {
			lo, err := parseRegister(lineno, part[:i])
			if err != nil {
				return 0, err
			}
			hi, err := parseRegister(lineno, part[i+1:])
			if err != nil {
				return 0, err
			}
			if lo > hi {
				return 0, assembleErrorf(lineno, part, "%w: invalid register range %q", ErrAssemble, part)
			}
			for r := lo; r <= hi; r++ {
				mask |= 1 << r
			}
			continue
		}
		r, err := parseRegister(lineno, part)
		if err != nil {
			return 0, err
		}
		mask |= 1 << r
	}
	return mask, nil
}

func encodeBranch(instr *Instruction, idx int, symtab map[string]int, cond uint32) (uint32, error) {
	if len(instr.Operands) != 1 {
		return 0, assembleErrorf(instr.Lineno, instr.Mnemonic, "%w: wants a target", ErrAssemble)
	}
	target := strings.TrimSpace(instr.Operands[0])
	targetIdx, ok := symtab[target]
	if !ok {
		return 0, assembleErrorf(instr.Lineno, instr.Mnemonic, "%w: undefined label %q", ErrAssemble, target)
	}
	offset, err := branchOffset(targetIdx, idx)
	if err != nil {
		return 0, assembleErrorf(instr.Lineno, instr.Mnemonic, "%w", err)
	}
	var lBit uint32
	if instr.Mnemonic == "BL" {
		lBit = 1
	}
	instruction := (cond << 28) | (0x5 << 25) | (lBit << 24) | (uint32(offset) & 0xFFFFFF)
	return instruction, nil
}

func encodeBX(instr *Instruction, cond uint32) (uint32, error) {
	if len(instr.Operands) != 1 {
		return 0, assembleErrorf(instr.Lineno, instr.Mnemonic, "%w: wants a register", ErrAssemble)
	}
	rm, err := parseRegister(instr.Lineno, instr.Operands[0])
	if err != nil {
		return 0, err
	}
	instruction := (cond << 28) | (0x12FFF1 << 4) | rm
	return instruction, nil
}
