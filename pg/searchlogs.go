package pg

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
)

// InsertSearchLog writes one SearchLog row (C9). Best-effort by design:
// callers should log-and-continue on error rather than fail the query
// that is being recorded.
func InsertSearchLog(ctx context.Context, exec Executor, l SearchLog) (int64, error) {
	if exec == nil {
		return 0, validationErr("InsertSearchLog", "executor is required")
	}
	filterRaw, err := json.Marshal(l.FilterSnapshot)
	if err != nil {
		return 0, validationErr("InsertSearchLog", "filter snapshot must be JSON-serializable")
	}

	var vec any
	if len(l.QueryVector) > 0 {
		vec = pgvector.NewHalfVector(l.QueryVector)
	}

	var id int64
	err2 := exec.QueryRow(ctx, `
		INSERT INTO search_logs (query_text, search_type, execution_time_ms, results_count, query_vector, result_section_ids, filter_snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, l.QueryText, string(l.SearchType), l.ExecutionTimeMs, l.ResultsCount, vec, l.ResultSectionIDs, filterRaw).Scan(&id)
	if err2 != nil {
		return 0, dbErr("InsertSearchLog", err2)
	}
	return id, nil
}

func scanSearchLog(rows pgx.Rows) (SearchLog, error) {
	var l SearchLog
	var searchType string
	var filterRaw []byte
	if err := rows.Scan(&l.ID, &l.QueryText, &searchType, &l.ExecutionTimeMs, &l.ResultsCount, &l.ResultSectionIDs, &filterRaw, &l.CreatedAt); err != nil {
		return l, err
	}
	l.SearchType = SearchType(searchType)
	if len(filterRaw) > 0 {
		_ = json.Unmarshal(filterRaw, &l.FilterSnapshot)
	}
	return l, nil
}

const searchLogColumns = `id, query_text, search_type, execution_time_ms, results_count, result_section_ids, filter_snapshot, created_at`

// RecentSearchLogs returns the N most recent search logs.
func RecentSearchLogs(ctx context.Context, exec Executor, limit int) ([]SearchLog, error) {
	if exec == nil {
		return nil, validationErr("RecentSearchLogs", "executor is required")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := exec.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM search_logs ORDER BY created_at DESC LIMIT $1
	`, searchLogColumns), limit)
	if err != nil {
		return nil, dbErr("RecentSearchLogs", err)
	}
	defer rows.Close()
	var out []SearchLog
	for rows.Next() {
		l, err := scanSearchLog(rows)
		if err != nil {
			return nil, dbErr("RecentSearchLogs", err)
		}
		out = append(out, l)
	}
	return out, dbErrOrNil("RecentSearchLogs", rows.Err())
}

// SearchLogsByType returns the N most recent logs of a given search type.
func SearchLogsByType(ctx context.Context, exec Executor, t SearchType, limit int) ([]SearchLog, error) {
	if exec == nil {
		return nil, validationErr("SearchLogsByType", "executor is required")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := exec.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM search_logs WHERE search_type = $1 ORDER BY created_at DESC LIMIT $2
	`, searchLogColumns), string(t), limit)
	if err != nil {
		return nil, dbErr("SearchLogsByType", err)
	}
	defer rows.Close()
	var out []SearchLog
	for rows.Next() {
		l, err := scanSearchLog(rows)
		if err != nil {
			return nil, dbErr("SearchLogsByType", err)
		}
		out = append(out, l)
	}
	return out, dbErrOrNil("SearchLogsByType", rows.Err())
}

// PopularQuery is an aggregate row: a query text and how often it was
// observed in the trailing window.
type PopularQuery struct {
	QueryText string
	Count     int64
}

// PopularQueries returns the most frequent query texts observed in the
// trailing 24h window.
func PopularQueries(ctx context.Context, exec Executor, limit int) ([]PopularQuery, error) {
	if exec == nil {
		return nil, validationErr("PopularQueries", "executor is required")
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := exec.Query(ctx, `
		SELECT query_text, count(*) AS cnt
		FROM search_logs
		WHERE created_at >= now() - interval '24 hours'
		GROUP BY query_text
		ORDER BY cnt DESC, query_text ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, dbErr("PopularQueries", err)
	}
	defer rows.Close()
	var out []PopularQuery
	for rows.Next() {
		var p PopularQuery
		if err := rows.Scan(&p.QueryText, &p.Count); err != nil {
			return nil, dbErr("PopularQueries", err)
		}
		out = append(out, p)
	}
	return out, dbErrOrNil("PopularQueries", rows.Err())
}

// AvgExecTimeByType reports the average execution_time_ms per search type.
func AvgExecTimeByType(ctx context.Context, exec Executor) (map[SearchType]float64, error) {
	if exec == nil {
		return nil, validationErr("AvgExecTimeByType", "executor is required")
	}
	rows, err := exec.Query(ctx, `
		SELECT search_type, avg(execution_time_ms)::float8 FROM search_logs GROUP BY search_type
	`)
	if err != nil {
		return nil, dbErr("AvgExecTimeByType", err)
	}
	defer rows.Close()
	out := make(map[SearchType]float64)
	for rows.Next() {
		var t string
		var avg float64
		if err := rows.Scan(&t, &avg); err != nil {
			return nil, dbErr("AvgExecTimeByType", err)
		}
		out[SearchType(t)] = avg
	}
	return out, dbErrOrNil("AvgExecTimeByType", rows.Err())
}

// SimilarByVector finds prior queries whose query_vector is within the
// given cosine-distance bound of vec, closest first (more recent first among
// equal distances) — used to surface
// "people also searched" style suggestions. Rows with no query_vector are
// excluded.
func SimilarByVector(ctx context.Context, exec Executor, vec []float32, maxDistance float32, limit int) ([]SearchLog, error) {
	if exec == nil {
		return nil, validationErr("SimilarByVector", "executor is required")
	}
	if len(vec) == 0 {
		return nil, validationErr("SimilarByVector", "vec is required")
	}
	if limit <= 0 {
		limit = 10
	}
	qvec := pgvector.NewHalfVector(vec)
	rows, err := exec.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM search_logs
		WHERE query_vector IS NOT NULL AND (query_vector <=> $1) < $2
		ORDER BY query_vector <=> $1 ASC, created_at DESC
		LIMIT $3
	`, searchLogColumns), qvec, maxDistance, limit)
	if err != nil {
		return nil, dbErr("SimilarByVector", err)
	}
	defer rows.Close()
	var out []SearchLog
	for rows.Next() {
		l, err := scanSearchLog(rows)
		if err != nil {
			return nil, dbErr("SimilarByVector", err)
		}
		out = append(out, l)
	}
	return out, dbErrOrNil("SimilarByVector", rows.Err())
}
