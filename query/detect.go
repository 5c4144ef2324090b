package query

import (
	"strings"

	"github.com/corpusdb/retrievalcore/internal/langscript"
)

// DetectLanguage is a pure function implementing spec.md §4.2's language
// detection rules:
//
//  1. empty/blank input -> "en"
//  2. otherwise, count codepoints per script range (Chinese, Japanese-only
//     kana, Korean, Latin) and return the code for whichever range has the
//     highest count, breaking ties in the fixed priority order
//     Chinese > Japanese > Korean > Latin.
func DetectLanguage(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return "en"
	}

	c := langscript.Count(sample)

	max := c.Han
	if c.Kana > max {
		max = c.Kana
	}
	if c.Hangul > max {
		max = c.Hangul
	}
	if c.Latin > max {
		max = c.Latin
	}

	// Fixed tie-break order: zh > ja > ko > en. The first range matching the
	// max count wins, so Chinese beats a tied Latin count, etc.
	switch {
	case c.Han == max && c.Han > 0:
		return "zh"
	case c.Kana == max && c.Kana > 0:
		return "ja"
	case c.Hangul == max && c.Hangul > 0:
		return "ko"
	default:
		return "en"
	}
}
