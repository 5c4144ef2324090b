// Package pgutil collects small SQL-identifier and literal helpers shared
// by every package that builds dynamic SQL against the Postgres store
// (pg, lexical, vectorindex). Every caller that interpolates a
// schema/table/column name into SQL text must route it through QuoteIdent
// first.
package pgutil

import (
	"fmt"
	"strings"
)

// QuoteIdent validates that ident contains only ASCII letters, digits and
// underscore, then double-quotes it for safe interpolation into SQL text.
// This is the single identifier-allowlisting choke point for the whole
// module — every dynamic schema/table name passes through here before
// being formatted into a query string.
func QuoteIdent(ident string) (string, error) {
	ident = strings.TrimSpace(ident)
	if ident == "" {
		return "", fmt.Errorf("empty identifier")
	}
	for _, r := range ident {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			continue
		}
		return "", fmt.Errorf("invalid identifier %q", ident)
	}
	return `"` + ident + `"`, nil
}

// QuoteLiteral escapes a string for safe interpolation as a SQL literal.
// Used only for fragments that cannot be bound as a query parameter (e.g.
// inside a dynamically assembled index predicate); anywhere a bind
// parameter can be used instead, prefer pgx.NamedArgs.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
