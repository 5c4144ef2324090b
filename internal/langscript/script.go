// Package langscript classifies runes by Unicode script range.
//
// It is the shared codepoint-counting primitive behind both query language
// detection (package query) and the CJK-aware lexical channel dispatch
// (package lexical), generalizing the ad hoc range checks the teacher kept
// duplicated across its top-level query-shaping helpers.
package langscript

// Script identifies the script family a rune belongs to, for the purposes
// of this package's detection heuristics only (not a general Unicode script
// property implementation).
type Script int

const (
	ScriptOther Script = iota
	ScriptHan          // Chinese (and shared CJK ideographs)
	ScriptKana         // Japanese hiragana/katakana
	ScriptHangul       // Korean
	ScriptLatin
)

// Classify returns the Script family for r, or ScriptOther if none of the
// recognized ranges match.
func Classify(r rune) Script {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF:
		return ScriptHan
	case (r >= 0x3040 && r <= 0x309F) || (r >= 0x30A0 && r <= 0x30FF):
		return ScriptKana
	case r >= 0xAC00 && r <= 0xD7AF:
		return ScriptHangul
	case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		return ScriptLatin
	default:
		return ScriptOther
	}
}

// Counts tallies codepoints in s by script family.
type Counts struct {
	Han, Kana, Hangul, Latin int
}

// Count walks s once and tallies each recognized script range.
func Count(s string) Counts {
	var c Counts
	for _, r := range s {
		switch Classify(r) {
		case ScriptHan:
			c.Han++
		case ScriptKana:
			c.Kana++
		case ScriptHangul:
			c.Hangul++
		case ScriptLatin:
			c.Latin++
		}
	}
	return c
}

// ContainsCJK reports whether s contains any CJK-range codepoint (Han,
// Kana, or Hangul). Used to decide whether a query needs the native-script
// lexical channel (e.g. PGroonga) in addition to, or instead of, the
// trigram/transliteration channel.
func ContainsCJK(s string) bool {
	for _, r := range s {
		switch Classify(r) {
		case ScriptHan, ScriptKana, ScriptHangul:
			return true
		}
	}
	return false
}

// ContainsASCIIAlphaNum reports whether s contains any ASCII letter or digit.
func ContainsASCIIAlphaNum(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return true
		}
	}
	return false
}
