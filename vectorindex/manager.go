// Package vectorindex implements the Vector Index Manager (spec.md §4.6,
// C6): dense-vector storage and approximate cosine-distance search over
// Section embeddings.
package vectorindex

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/corpusdb/retrievalcore/pg"
)

// Hit is one vector search result, joined with enough section/document
// metadata for the orchestrator (C8) to enrich and rank it without a
// second round-trip.
type Hit struct {
	SectionID     int64
	DocumentID    int64
	SectionNumber int
	Title         string
	Content       string
	Language      string
	Similarity    float32 // in [0,1]; 1 - cosine_distance
}

// Options configures Search.
type Options struct {
	Limit            int
	Threshold        float32 // minimum similarity in [0,1]
	DocumentIDs      []int64
	TagIDs           []int64
	DateFrom         *string // RFC3339 date, inclusive, applied to documents.published_at
	DateTo           *string
	TwoStage         bool
	OversampleFactor int // defaults to 5 when TwoStage is set
}

// Insert persists the one embedding row for a section (1:1), per spec.md
// §4.6's storage contract.
func Insert(ctx context.Context, exec pg.Executor, sectionID int64, vector []float32) error {
	if exec == nil {
		return validationErr("Insert", "executor is required")
	}
	if sectionID <= 0 {
		return validationErr("Insert", "sectionID is required")
	}
	if len(vector) == 0 {
		return validationErr("Insert", "vector is required")
	}
	_, err := exec.Exec(ctx, `
		INSERT INTO embeddings (section_id, vector) VALUES ($1, $2)
		ON CONFLICT (section_id) DO UPDATE SET vector = EXCLUDED.vector
	`, sectionID, pgvector.NewHalfVector(vector))
	if err != nil {
		return storeErr("Insert", err)
	}
	return nil
}

// Search runs cosine-distance approximate nearest-neighbor search,
// returning hits ordered by ascending distance (descending similarity),
// per spec.md §4.6.
func Search(ctx context.Context, exec pg.Executor, queryVector []float32, opts Options) ([]Hit, error) {
	if exec == nil {
		return nil, validationErr("Search", "executor is required")
	}
	if len(queryVector) == 0 {
		return nil, validationErr("Search", "queryVector is required")
	}
	limit := opts.Limit
	if limit <= 0 {
		return nil, nil
	}

	dim := len(queryVector)
	half := fmt.Sprintf("halfvec(%d)", dim)
	qvec := pgvector.NewHalfVector(queryVector)

	where, args, err := buildWhere(opts)
	if err != nil {
		return nil, err
	}
	args["qvec"] = qvec
	args["limit"] = limit

	// spec.md §4.6 pins strict "cosine_distance < (1 - threshold)"; comparing
	// on distance directly (rather than the derived similarity) keeps the
	// boundary exact instead of an epsilon-shifted similarity >= threshold.
	args["max_distance"] = 1 - opts.Threshold

	var sql string
	if !opts.TwoStage {
		sql = fmt.Sprintf(`
			SELECT s.id, s.document_id, s.section_number, coalesce(s.title, ''), s.content, d.language,
			       (1 - (e.vector::%s <=> (@qvec::%s)))::float4 AS similarity
			FROM embeddings e
			JOIN sections s ON s.id = e.section_id
			JOIN documents d ON d.id = s.document_id
			%s
			  AND (e.vector::%s <=> (@qvec::%s)) < @max_distance
			ORDER BY e.vector::%s <=> (@qvec::%s)
			LIMIT @limit
		`, half, half, where, half, half, half, half)
	} else {
		oversample := limit * opts.OversampleFactor
		if opts.OversampleFactor <= 1 {
			oversample = limit * 5
		}
		args["oversample"] = oversample
		sql = fmt.Sprintf(`
			WITH candidates AS (
				SELECT s.id, s.document_id, s.section_number, s.title, s.content, d.language, e.vector
				FROM embeddings e
				JOIN sections s ON s.id = e.section_id
				JOIN documents d ON d.id = s.document_id
				%s
				ORDER BY (binary_quantize(e.vector::%s)::bit(%d)) <~> (binary_quantize(@qvec::%s)::bit(%d))
				LIMIT @oversample
			)
			SELECT id, document_id, section_number, coalesce(title, ''), content, language,
			       (1 - (vector::%s <=> (@qvec::%s)))::float4 AS similarity
			FROM candidates
			WHERE (vector::%s <=> (@qvec::%s)) < @max_distance
			ORDER BY vector::%s <=> (@qvec::%s)
			LIMIT @limit
		`, where, half, dim, half, dim, half, half, half, half, half, half)
	}

	rows, err := exec.Query(ctx, sql, args)
	if err != nil {
		return nil, storeErr("Search", err)
	}
	defer rows.Close()

	var out []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.SectionID, &h.DocumentID, &h.SectionNumber, &h.Title, &h.Content, &h.Language, &h.Similarity); err != nil {
			return nil, storeErr("Search", err)
		}
		out = append(out, h)
	}
	return out, storeErrOrNil("Search", rows.Err())
}

func buildWhere(opts Options) (string, pgx.NamedArgs, error) {
	where := "WHERE e.vector IS NOT NULL"
	args := pgx.NamedArgs{}

	if len(opts.DocumentIDs) > 0 {
		where += " AND s.document_id = ANY(@document_ids::bigint[])"
		args["document_ids"] = opts.DocumentIDs
	}
	if opts.DateFrom != nil && strings.TrimSpace(*opts.DateFrom) != "" {
		where += " AND d.published_at >= @date_from"
		args["date_from"] = *opts.DateFrom
	}
	if opts.DateTo != nil && strings.TrimSpace(*opts.DateTo) != "" {
		where += " AND d.published_at <= @date_to"
		args["date_to"] = *opts.DateTo
	}
	if len(opts.TagIDs) > 0 {
		where += ` AND EXISTS (
			SELECT 1 FROM section_tags st WHERE st.section_id = s.id AND st.tag_id = ANY(@tag_ids::bigint[])
		)`
		args["tag_ids"] = opts.TagIDs
	}
	return where, args, nil
}

// DeleteBySection removes the embedding row for one section.
func DeleteBySection(ctx context.Context, exec pg.Executor, sectionID int64) error {
	if exec == nil {
		return validationErr("DeleteBySection", "executor is required")
	}
	_, err := exec.Exec(ctx, `DELETE FROM embeddings WHERE section_id = $1`, sectionID)
	if err != nil {
		return storeErr("DeleteBySection", err)
	}
	return nil
}

// DeleteOlderThan removes embedding rows created more than the given
// number of days ago.
func DeleteOlderThan(ctx context.Context, exec pg.Executor, days int) (int64, error) {
	if exec == nil {
		return 0, validationErr("DeleteOlderThan", "executor is required")
	}
	if days <= 0 {
		return 0, validationErr("DeleteOlderThan", "days must be > 0")
	}
	ct, err := exec.Exec(ctx, `
		DELETE FROM embeddings WHERE created_at < now() - ($1 || ' days')::interval
	`, days)
	if err != nil {
		return 0, storeErr("DeleteOlderThan", err)
	}
	return ct.RowsAffected(), nil
}

// CleanupOrphaned deletes embedding rows whose section no longer exists.
// In practice the foreign key's ON DELETE CASCADE makes this a no-op; it
// exists for parity with the lexical index's cleanup and as a defensive
// sweep after any out-of-band data repair.
func CleanupOrphaned(ctx context.Context, exec pg.Executor) (int64, error) {
	if exec == nil {
		return 0, validationErr("CleanupOrphaned", "executor is required")
	}
	ct, err := exec.Exec(ctx, `
		DELETE FROM embeddings e WHERE NOT EXISTS (SELECT 1 FROM sections s WHERE s.id = e.section_id)
	`)
	if err != nil {
		return 0, storeErr("CleanupOrphaned", err)
	}
	return ct.RowsAffected(), nil
}

func storeErrOrNil(op string, err error) error {
	if err == nil {
		return nil
	}
	return storeErr(op, err)
}
