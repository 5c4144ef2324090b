package pg

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corpusdb/retrievalcore/internal/pgutil"
	"github.com/corpusdb/retrievalcore/pg/migrations"
)

// MigrateOptions configures schema application.
type MigrateOptions struct {
	// Schema is the Postgres schema migrations run against. Defaults to
	// "public". Tables are created unqualified and resolved through
	// search_path, mirroring the teacher's SET LOCAL search_path pattern.
	Schema string
	// Dimensions is the configured embedding vector width D. Required:
	// the embeddings and search_logs tables declare a fixed-width halfvec
	// column and the migration SQL templates __DIM__ at apply time.
	Dimensions int
}

func (o MigrateOptions) withDefaults() MigrateOptions {
	out := o
	if strings.TrimSpace(out.Schema) == "" {
		out.Schema = "public"
	}
	return out
}

// Migrate applies every pending migration embedded under
// pg/migrations/postgres, forward-only, tracked in a schema_migrations
// table so re-running Migrate is a no-op once the schema is current.
func Migrate(ctx context.Context, pool *pgxpool.Pool, opts MigrateOptions) error {
	o := opts.withDefaults()
	if o.Dimensions <= 0 {
		return validationErr("Migrate", "Dimensions must be > 0")
	}
	if pool == nil {
		return validationErr("Migrate", "pool is required")
	}

	quotedSchema, err := pgutil.QuoteIdent(o.Schema)
	if err != nil {
		return validationErr("Migrate", fmt.Sprintf("invalid schema: %v", err))
	}

	dirEntries, err := fs.ReadDir(migrations.Postgres, "postgres")
	if err != nil {
		return dbErr("Migrate", fmt.Errorf("read embedded migrations: %w", err))
	}

	var files []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if strings.HasSuffix(de.Name(), ".up.sql") {
			files = append(files, de.Name())
		}
	}
	sort.Strings(files)

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return dbErr("Migrate", fmt.Errorf("acquire connection: %w", err))
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, fmt.Sprintf(`
		CREATE SCHEMA IF NOT EXISTS %s
	`, quotedSchema)); err != nil {
		return dbErr("Migrate", fmt.Errorf("ensure schema: %w", err))
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return dbErr("Migrate", fmt.Errorf("begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL search_path = %s", quotedSchema)); err != nil {
		return dbErr("Migrate", fmt.Errorf("set search_path: %w", err))
	}

	if _, err := tx.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    text PRIMARY KEY,
			applied_at timestamptz NOT NULL DEFAULT now()
		)
	`); err != nil {
		return dbErr("Migrate", fmt.Errorf("ensure schema_migrations: %w", err))
	}

	applied := make(map[string]bool)
	rows, err := tx.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return dbErr("Migrate", fmt.Errorf("read schema_migrations: %w", err))
	}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return dbErr("Migrate", err)
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return dbErr("Migrate", err)
	}

	for _, f := range files {
		version := migrationVersion(f)
		if applied[version] {
			continue
		}

		raw, err := fs.ReadFile(migrations.Postgres, "postgres/"+f)
		if err != nil {
			return dbErr("Migrate", fmt.Errorf("read migration %s: %w", f, err))
		}
		sql := strings.ReplaceAll(string(raw), "__DIM__", strconv.Itoa(o.Dimensions))

		if _, err := tx.Exec(ctx, sql); err != nil {
			return dbErr("Migrate", fmt.Errorf("apply migration %s: %w", f, err))
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			return dbErr("Migrate", fmt.Errorf("record migration %s: %w", f, err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return dbErr("Migrate", fmt.Errorf("commit: %w", err))
	}
	return nil
}

func migrationVersion(filename string) string {
	return strings.TrimSuffix(filename, ".up.sql")
}
