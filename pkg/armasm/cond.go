package armasm

import "strings"

// Condition codes, ARMv7-A A32 §A8.3. CondAL is the default suffix when
// a mnemonic carries none.
const (
	CondEQ uint32 = 0x0
	CondNE uint32 = 0x1
	CondCS uint32 = 0x2
	CondCC uint32 = 0x3
	CondMI uint32 = 0x4
	CondPL uint32 = 0x5
	CondVS uint32 = 0x6
	CondVC uint32 = 0x7
	CondHI uint32 = 0x8
	CondLS uint32 = 0x9
	CondGE uint32 = 0xA
	CondLT uint32 = 0xB
	CondGT uint32 = 0xC
	CondLE uint32 = 0xD
	CondAL uint32 = 0xE
)

var condSuffixes = map[string]uint32{
	"EQ": CondEQ, "NE": CondNE, "CS": CondCS, "HS": CondCS,
	"CC": CondCC, "LO": CondCC, "MI": CondMI, "PL": CondPL,
	"VS": CondVS, "VC": CondVC, "HI": CondHI, "LS": CondLS,
	"GE": CondGE, "LT": CondLT, "GT": CondGT, "LE": CondLE,
	"AL": CondAL,
}

// dataProcessingBases can take a trailing "S" to set flags; mnemonics
// that aren't in this set never carry an S suffix (B, BL, BX, STR, LDR,
// PUSH, POP, CMP already always sets flags).
var dataProcessingBases = map[string]bool{
	"ADD": true, "SUB": true, "MOV": true, "MVN": true,
	"AND": true, "ORR": true, "EOR": true, "MUL": true, "ASR": true,
}

// knownBases lists recognized mnemonics, longest first, so that suffix
// splitting tries the longest match before falling back to a shorter
// one (disambiguates e.g. "BL" from "B"+"L").
var knownBases = []string{
	"PUSH", "POP", "ASR", "MVN", "ADD", "SUB", "MOV", "AND", "ORR",
	"EOR", "CMP", "MUL", "STR", "LDR", "BX", "BL", "B",
}

// splitMnemonic separates a raw token like "ADDSNE" into its base
// mnemonic ("ADD"), condition code, and set-flags bit. Condition
// defaults to AL and set-flags defaults to false when absent.
func splitMnemonic(raw string) (base string, cond uint32, setFlags bool, ok bool) {
	upper := strings.ToUpper(raw)
	for _, b := range knownBases {
		if !strings.HasPrefix(upper, b) {
			continue
		}
		rest := upper[len(b):]

		if rest == "" {
			return b, CondAL, false, true
		}
		// A whole condition code (e.g. "LS") takes priority over reading
		// a trailing "S" as the flags bit, since several condition codes
		// themselves end in S.
		if c, found := condSuffixes[rest]; found {
			return b, c, false, true
		}
		if rest == "S" && dataProcessingBases[b] {
			return b, CondAL, true, true
		}
		if dataProcessingBases[b] && strings.HasPrefix(rest, "S") {
			if c, found := condSuffixes[rest[1:]]; found {
				return b, c, true, true
			}
		}
		if dataProcessingBases[b] && strings.HasSuffix(rest, "S") {
			if c, found := condSuffixes[rest[:len(rest)-1]]; found {
				return b, c, true, true
			}
		}
		// The prefix matched but the remainder isn't a condition code or
		// flags suffix; keep looking, a different base might fit better
		// (e.g. "BL" vs "B").
	}
	return "", 0, false, false
}
