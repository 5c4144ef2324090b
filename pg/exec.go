package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Executor is satisfied by both *pgxpool.Pool and pgx.Tx. Every read/write
// helper in this package takes an Executor rather than a concrete pool so
// callers (chiefly the ingestion pipeline, C7) can compose several of
// them into one transaction to satisfy I5's atomic-replace invariant.
type Executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Executor = (*pgxpool.Pool)(nil)
var _ Executor = (pgx.Tx)(nil)
