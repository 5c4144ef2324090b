package query

import "strings"

// escapeLiteral escapes literal single quotes for embedding inside a
// store-native lexical-query expression, per spec.md §4.2's requirement
// that "all literal single quotes and database-syntax metacharacters in
// token text must be escaped by the adapter". Backslashes are escaped too
// since the store's string literal syntax treats them specially when
// standard_conforming_strings is off.
func escapeLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `''`)
	return s
}

// EmitLexicalQuery deterministically builds a store-native lexical-query
// expression from a Parsed query and a tokenizer config name, per spec.md
// §4.2's mapping:
//
//	plain    -> plain_query(config, text)
//	phrase   -> phrase_query(config, inner)
//	advanced -> tree of plain_query/phrase_query leaves joined by
//	            && (AND) / || (OR) / prefixed by !! (NOT), grouped by
//	            parentheses.
func EmitLexicalQuery(p *Parsed, config string) (string, error) {
	if p == nil {
		return "", validationErr("EmitLexicalQuery", "parsed query is nil")
	}
	config = strings.TrimSpace(config)
	if config == "" {
		return "", validationErr("EmitLexicalQuery", "tokenizer config is required")
	}

	switch p.Kind {
	case KindPlain:
		return plainQuery(config, p.Tokens[0].Text), nil
	case KindPhrase:
		return phraseQuery(config, p.Tokens[0].Text), nil
	case KindAdvanced:
		expr, err := emitSequence(p.Tokens, config)
		if err != nil {
			return "", err
		}
		return expr, nil
	default:
		return "", parseErr("EmitLexicalQuery", "unknown query kind")
	}
}

func plainQuery(config, text string) string {
	return "plain_query(" + config + ",'" + escapeLiteral(text) + "')"
}

func phraseQuery(config, text string) string {
	return "phrase_query(" + config + ",'" + escapeLiteral(text) + "')"
}

// emitSequence walks a flat token sequence left to right, combining atoms
// with the operator that precedes them (defaulting to AND when two atoms
// are adjacent with no explicit operator between them), and applying a
// pending NOT as a unary prefix on the next atom.
func emitSequence(toks []Token, config string) (string, error) {
	var expr string
	havePrev := false
	pendingOp := TokenAnd // default join is AND
	haveOp := false
	negateNext := false

	flush := func(atom string) {
		if negateNext {
			atom = "!! " + atom
			negateNext = false
		}
		if !havePrev {
			expr = atom
			havePrev = true
			return
		}
		op := "&&"
		if haveOp && pendingOp == TokenOr {
			op = "||"
		}
		expr = expr + " " + op + " " + atom
		haveOp = false
	}

	for _, t := range toks {
		switch t.Type {
		case TokenAnd:
			pendingOp = TokenAnd
			haveOp = true
		case TokenOr:
			pendingOp = TokenOr
			haveOp = true
		case TokenNot:
			negateNext = true
		case TokenText:
			flush(plainQuery(config, t.Text))
		case TokenPhrase:
			flush(phraseQuery(config, t.Text))
		case TokenGroup:
			inner, err := emitSequence(t.Group, config)
			if err != nil {
				return "", err
			}
			flush("(" + inner + ")")
		default:
			return "", parseErr("emitSequence", "unknown token type")
		}
	}

	if !havePrev {
		return "", parseErr("emitSequence", "advanced query has no searchable terms")
	}
	return expr, nil
}
