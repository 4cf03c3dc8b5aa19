package armasm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMnemonicDefaultsToAL(t *testing.T) {
	base, cond, setFlags, ok := splitMnemonic("ADD")
	require.True(t, ok)
	assert.Equal(t, "ADD", base)
	assert.Equal(t, CondAL, cond)
	assert.False(t, setFlags)
}

func TestSplitMnemonicConditionSuffix(t *testing.T) {
	base, cond, setFlags, ok := splitMnemonic("BNE")
	require.True(t, ok)
	assert.Equal(t, "B", base)
	assert.Equal(t, CondNE, cond)
	assert.False(t, setFlags)
}

func TestSplitMnemonicConditionEndingInS(t *testing.T) {
	// LS ends in 'S' but must be read as the condition code, not a
	// flags-setting suffix on a one-letter base.
	base, cond, setFlags, ok := splitMnemonic("SUBLS")
	require.True(t, ok)
	assert.Equal(t, "SUB", base)
	assert.Equal(t, CondLS, cond)
	assert.False(t, setFlags)
}

func TestSplitMnemonicFlagsOnly(t *testing.T) {
	base, cond, setFlags, ok := splitMnemonic("ADDS")
	require.True(t, ok)
	assert.Equal(t, "ADD", base)
	assert.Equal(t, CondAL, cond)
	assert.True(t, setFlags)
}

func TestSplitMnemonicFlagsAndCondition(t *testing.T) {
	base, cond, setFlags, ok := splitMnemonic("ADDSNE")
	require.True(t, ok)
	assert.Equal(t, "ADD", base)
	assert.Equal(t, CondNE, cond)
	assert.True(t, setFlags)
}

func TestSplitMnemonicBranchLink(t *testing.T) {
	base, cond, _, ok := splitMnemonic("BL")
	require.True(t, ok)
	assert.Equal(t, "BL", base)
	assert.Equal(t, CondAL, cond)
}

func TestSplitMnemonicUnknown(t *testing.T) {
	_, _, _, ok := splitMnemonic("FROB")
	assert.False(t, ok)
}

func TestSplitOperandsKeepsBracketsIntact(t *testing.T) {
	got := splitOperands("R0, [R1, #4]")
	assert.Equal(t, []string{"R0", "[R1, #4]"}, got)
}

func TestSplitOperandsPostIndexed(t *testing.T) {
	got := splitOperands("R0, [R1], #4")
	assert.Equal(t, []string{"R0", "[R1]", "#4"}, got)
}

func TestSplitOperandsRegisterList(t *testing.T) {
	got := splitOperands("{R0, R1, R4-R6}")
	assert.Equal(t, []string{"{R0, R1, R4-R6}"}, got)
}

func TestParseLineLabelAndInstruction(t *testing.T) {
	instr, err := parseLine(line{Text: "loop: ADD R0, R1, R2", Lineno: 1})
	require.NoError(t, err)
	assert.Equal(t, "loop", instr.Label)
	assert.Equal(t, "ADD", instr.Mnemonic)
	assert.Len(t, instr.Operands, 3)
}

func TestParseLineWordDirective(t *testing.T) {
	instr, err := parseLine(line{Text: ".word 42", Lineno: 1})
	require.NoError(t, err)
	assert.True(t, instr.IsWord)
	assert.Equal(t, "42", instr.WordExpr)
}

func TestParseLineUnknownMnemonic(t *testing.T) {
	_, err := parseLine(line{Text: "FROB R0, R1", Lineno: 3})
	require.Error(t, err)
	var ae *AssembleError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, 3, ae.Line)
	assert.ErrorIs(t, err, ErrAssemble)
}

func TestBuildSymtabBareLabelBindsToNextInstruction(t *testing.T) {
	instrs := []*Instruction{
		{Lineno: 1, Label: "start"},
		{Lineno: 2, Mnemonic: "MOV", Operands: []string{"R0", "#1"}},
		{Lineno: 3, Label: "loop", Mnemonic: "ADD", Operands: []string{"R0", "R0", "#1"}},
	}
	symtab, err := buildSymtab(instrs)
	require.NoError(t, err)
	assert.Equal(t, 0, symtab["start"])
	assert.Equal(t, 1, symtab["loop"])
}

func TestBuildSymtabRedefinedLabel(t *testing.T) {
	instrs := []*Instruction{
		{Lineno: 1, Label: "x", Mnemonic: "MOV", Operands: []string{"R0", "#1"}},
		{Lineno: 2, Label: "x", Mnemonic: "MOV", Operands: []string{"R0", "#2"}},
	}
	_, err := buildSymtab(instrs)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAssemble)
}

func TestBranchOffsetPipelineConvention(t *testing.T) {
	// A branch to the instruction right after itself is offset -1 word
	// (target - current - 2); to itself it is -2.
	off, err := branchOffset(5, 5)
	require.NoError(t, err)
	assert.EqualValues(t, -2, off)

	off, err = branchOffset(6, 5)
	require.NoError(t, err)
	assert.EqualValues(t, -1, off)
}

func TestAssembleUndefinedLabel(t *testing.T) {
	_, err := Assemble(strings.NewReader("B missing\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAssemble)
}

func TestAssembleUnencodableImmediate(t *testing.T) {
	// 0x101 cannot be formed from any 8-bit-value/even-rotation pair.
	_, err := Assemble(strings.NewReader("MOV R0, #0x101\n"))
	require.Error(t, err)
}

func TestEncodeImmediateRotations(t *testing.T) {
	_, ok := encodeImmediate(0xFF000000)
	assert.True(t, ok, "0xFF000000 should be encodable (rotate 8)")

	_, ok = encodeImmediate(0x101)
	assert.False(t, ok, "0x101 should not be encodable")
}
