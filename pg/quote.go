package pg

import "github.com/corpusdb/retrievalcore/internal/pgutil"

// QuoteSchema validates and safely quotes a schema identifier for embedding in SQL.
func QuoteSchema(schema string) (string, error) {
	return pgutil.QuoteIdent(schema)
}
