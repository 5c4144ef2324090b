package query

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Kind classifies a query per spec.md §4.2.
type Kind int

const (
	KindPlain Kind = iota
	KindPhrase
	KindAdvanced
)

func (k Kind) String() string {
	switch k {
	case KindPhrase:
		return "phrase"
	case KindAdvanced:
		return "advanced"
	default:
		return "plain"
	}
}

// TokenType enumerates the token kinds spec.md §4.2 requires in the
// structured parse representation.
type TokenType int

const (
	TokenText TokenType = iota
	TokenAnd
	TokenOr
	TokenNot
	TokenPhrase
	TokenGroup
)

// Token is one element of a parsed advanced query. Text/Phrase tokens carry
// their literal text in Text; Group tokens carry a nested token sequence
// (the parenthesized sub-expression) in Group.
type Token struct {
	Type  TokenType
	Text  string
	Group []Token
}

// Parsed is the structured output of Parse.
type Parsed struct {
	Kind    Kind
	Raw     string
	Tokens  []Token
	Phrases []string
}

// Options configures Parse's validation limits (spec.md §4.2 defaults).
type Options struct {
	MaxLen int
	MinLen int
}

func (o Options) withDefaults() Options {
	out := o
	if out.MaxLen <= 0 {
		out.MaxLen = 1000
	}
	if out.MinLen <= 0 {
		out.MinLen = 2
	}
	return out
}

var advancedWordRe = regexp.MustCompile(`(?i)\b(AND|OR|NOT)\b`)

// Parse classifies raw into plain/phrase/advanced per spec.md §4.2 and
// produces a structured token representation. It fails with a *ParseError
// (Kind: KindValidation) if raw is empty/whitespace-only or its trimmed
// length falls outside [MinLen, MaxLen].
func Parse(raw string, opts Options) (*Parsed, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, validationErr("Parse", "query is nil or whitespace-only")
	}

	o := opts.withDefaults()
	n := utf8.RuneCountInString(trimmed)
	if n < o.MinLen {
		return nil, validationErr("Parse", "query is shorter than the minimum length")
	}
	if n > o.MaxLen {
		return nil, validationErr("Parse", "query exceeds the maximum length")
	}

	if inner, ok := wholePhrase(trimmed); ok {
		return &Parsed{
			Kind:    KindPhrase,
			Raw:     trimmed,
			Tokens:  []Token{{Type: TokenPhrase, Text: inner}},
			Phrases: []string{inner},
		}, nil
	}

	if isAdvanced(trimmed) {
		toks, rest, err := parseSequence(trimmed)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(rest) != "" {
			return nil, parseErr("Parse", "unbalanced parentheses in advanced query")
		}
		p := &Parsed{Kind: KindAdvanced, Raw: trimmed, Tokens: toks}
		p.Phrases = collectPhrases(toks)
		return p, nil
	}

	return &Parsed{
		Kind:   KindPlain,
		Raw:    trimmed,
		Tokens: []Token{{Type: TokenText, Text: trimmed}},
	}, nil
}

// wholePhrase reports whether s is, in its entirety, a single
// double-quoted phrase (exactly one matching pair spanning the whole
// trimmed string), and returns its inner text.
func wholePhrase(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}
	if strings.Count(s, `"`) != 2 {
		return "", false
	}
	return s[1 : len(s)-1], true
}

func isAdvanced(s string) bool {
	if advancedWordRe.MatchString(s) {
		return true
	}
	return strings.Contains(s, `"`)
}

func collectPhrases(toks []Token) []string {
	var out []string
	for _, t := range toks {
		switch t.Type {
		case TokenPhrase:
			out = append(out, t.Text)
		case TokenGroup:
			out = append(out, collectPhrases(t.Group)...)
		}
	}
	return out
}

// parseSequence scans a flat sequence of tokens from s until it either
// consumes all of s or encounters an unmatched ')' (returned as leftover
// rest for the caller — the top-level caller treats non-empty leftover as
// an unbalanced-parens error; a recursive call consumes the ')' itself and
// returns the remainder after it).
func parseSequence(s string) (toks []Token, rest string, err error) {
	i := 0
	for i < len(s) {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}
		switch s[i] {
		case ')':
			return toks, s[i+1:], nil
		case '(':
			depth := 1
			j := i + 1
			for j < len(s) && depth > 0 {
				switch s[j] {
				case '(':
					depth++
				case ')':
					depth--
				}
				if depth == 0 {
					break
				}
				j++
			}
			if depth != 0 {
				return nil, "", parseErr("parseSequence", "unbalanced parentheses in advanced query")
			}
			inner := s[i+1 : j]
			groupToks, groupRest, gerr := parseSequence(inner)
			if gerr != nil {
				return nil, "", gerr
			}
			if strings.TrimSpace(groupRest) != "" {
				return nil, "", parseErr("parseSequence", "unbalanced parentheses in advanced query")
			}
			toks = append(toks, Token{Type: TokenGroup, Group: groupToks})
			i = j + 1
		case '"':
			j := strings.IndexByte(s[i+1:], '"')
			if j < 0 {
				return nil, "", parseErr("parseSequence", "unterminated quoted phrase")
			}
			phrase := s[i+1 : i+1+j]
			toks = append(toks, Token{Type: TokenPhrase, Text: phrase})
			i = i + 1 + j + 1
		default:
			j := i
			for j < len(s) && !isSpace(s[j]) && s[j] != '(' && s[j] != ')' && s[j] != '"' {
				j++
			}
			word := s[i:j]
			toks = append(toks, wordToken(word))
			i = j
		}
	}
	return toks, "", nil
}

func wordToken(word string) Token {
	switch strings.ToUpper(word) {
	case "AND":
		return Token{Type: TokenAnd, Text: word}
	case "OR":
		return Token{Type: TokenOr, Text: word}
	case "NOT":
		return Token{Type: TokenNot, Text: word}
	default:
		return Token{Type: TokenText, Text: word}
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
