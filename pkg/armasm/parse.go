package armasm

import (
	"strconv"
	"strings"
)

// Instruction is one parsed source line: either a real instruction, a
// `.word` directive, or a bare label with nothing else on the line.
type Instruction struct {
	Lineno   int
	Label    string // "" if the line carries no label
	IsWord   bool
	WordExpr string // raw operand text for .word, resolved at encode time
	Mnemonic string // base mnemonic, condition/S suffix already split off
	Cond     uint32
	SetFlags bool
	Operands []string
}

// startParsing consumes lexed lines and emits one (*Instruction, error)
// pair per line, parsing ARM32 A32 source: labels, the `.word` directive,
// and mnemonic-plus-operands instructions.
func startParsing(lines <-chan line) <-chan parseResult {
	out := make(chan parseResult)
	go func() {
		defer close(out)
		for l := range lines {
			instr, err := parseLine(l)
			out <- parseResult{Instr: instr, Err: err, Lineno: l.Lineno}
			if err != nil {
				return
			}
		}
	}()
	return out
}

type parseResult struct {
	Instr  *Instruction
	Err    error
	Lineno int
}

func parseLine(l line) (*Instruction, error) {
	text := l.Text
	var label string

	if i := strings.IndexByte(text, ':'); i >= 0 {
		candidate := strings.TrimSpace(text[:i])
		if isLabelName(candidate) {
			label = candidate
			text = strings.TrimSpace(text[i+1:])
		}
	}

	if text == "" {
		return &Instruction{Lineno: l.Lineno, Label: label}, nil
	}

	if strings.HasPrefix(text, ".word") {
		expr := strings.TrimSpace(strings.TrimPrefix(text, ".word"))
		if expr == "" {
			return nil, assembleErrorf(l.Lineno, ".word", "missing operand")
		}
		return &Instruction{Lineno: l.Lineno, Label: label, IsWord: true, WordExpr: expr}, nil
	}

	fields := strings.SplitN(text, " ", 2)
	mnemonicToken := fields[0]
	base, cond, setFlags, ok := splitMnemonic(mnemonicToken)
	if !ok {
		return nil, assembleErrorf(l.Lineno, mnemonicToken, "%w: unknown mnemonic", ErrAssemble)
	}

	var operands []string
	if len(fields) > 1 {
		operands = splitOperands(fields[1])
	}

	return &Instruction{
		Lineno:   l.Lineno,
		Label:    label,
		Mnemonic: base,
		Cond:     cond,
		SetFlags: setFlags,
		Operands: operands,
	}, nil
}

// isLabelName reports whether s is a valid label identifier: starts
// with a letter, underscore, or dot, and contains no whitespace.
func isLabelName(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t,[]{}#") {
		return false
	}
	c := s[0]
	return c == '.' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// splitOperands splits an operand list on top-level commas, keeping
// bracketed addressing-mode groups ([Rn, #imm]) and register-list
// groups ({R0, R1-R3}) intact.
func splitOperands(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

// isImmediate reports whether an operand is an immediate (leading '#')
// or a bare decimal/hex/binary literal.
func isImmediate(op string) bool {
	op = strings.TrimSpace(op)
	if strings.HasPrefix(op, "#") {
		return true
	}
	if op == "" {
		return false
	}
	neg := strings.TrimPrefix(op, "-")
	return neg != "" && (neg[0] >= '0' && neg[0] <= '9')
}

// parseImmediate parses a "#123", "#0x7B", or bare numeric operand.
func parseImmediate(op string) (int64, error) {
	op = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(op), "#"))
	neg := false
	if strings.HasPrefix(op, "-") {
		neg = true
		op = op[1:]
	}
	base := 10
	switch {
	case strings.HasPrefix(op, "0x"), strings.HasPrefix(op, "0X"):
		op = op[2:]
		base = 16
	case strings.HasPrefix(op, "0b"), strings.HasPrefix(op, "0B"):
		op = op[2:]
		base = 2
	}
	v, err := strconv.ParseUint(op, base, 64)
	if err != nil {
		return 0, err
	}
	if neg {
		return -int64(v), nil
	}
	return int64(v), nil
}
