package textnormalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NFKC applies Unicode NFKC normalization only, without Heavy's
// transliteration/lowercasing/punctuation-stripping. Used where the
// downstream tokenizer (e.g. a CJK-aware tsearch config) needs native
// script preserved but still wants combining-mark variants collapsed to
// their canonical composed form.
func NFKC(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return norm.NFKC.String(s)
}
