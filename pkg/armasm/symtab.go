package armasm

import "fmt"

// buildSymtab runs the assembler's first pass: every instruction or
// .word directive occupies one 4-byte slot, in order, and a label
// attached to a line (its own or one sharing the line with an
// instruction) resolves to that slot's index. A label with nothing
// following it on its own line binds to the next emitting line.
func buildSymtab(instrs []*Instruction) (map[string]int, error) {
	labels := make(map[string]int)
	var pending []string
	idx := 0
	for _, instr := range instrs {
		if instr.Label != "" {
			pending = append(pending, instr.Label)
		}
		if !instr.IsWord && instr.Mnemonic == "" {
			continue // bare label line: binds to whatever emits next
		}
		for _, l := range pending {
			if _, found := labels[l]; found {
				return nil, fmt.Errorf("%w: line %d: label %q redefined", ErrAssemble, instr.Lineno, l)
			}
			labels[l] = idx
		}
		pending = pending[:0]
		idx++
	}
	return labels, nil
}

// branchOffset computes the signed word offset for a B/BL target given
// the assembler's slot indices, per the ARM pipeline convention (PC
// reads as current instruction + 8 bytes, i.e. +2 words): offset =
// target_index - current_index - 2. The result is sign-extended to fit
// the 24-bit encoded field.
func branchOffset(targetIdx, currentIdx int) (int32, error) {
	offset := int64(targetIdx) - int64(currentIdx) - 2
	if offset < -(1<<23) || offset > (1<<23)-1 {
		return 0, fmt.Errorf("%w: branch offset %d out of 24-bit range", ErrAssemble, offset)
	}
	return int32(offset), nil
}
