// Package searchlog implements the Search Logger (spec.md §4.9, C9): a
// best-effort write of one SearchLog row per observed query, plus read
// views over the log.
package searchlog

import (
	"context"
	"log"

	"github.com/corpusdb/retrievalcore/pg"
)

// Entry is the input to Record — everything the orchestrator (C8) knows
// about one completed (or rejected) query.
type Entry struct {
	QueryText        string
	SearchType       pg.SearchType
	ExecutionTimeMs  int64
	ResultsCount     int
	QueryVector      []float32
	ResultSectionIDs []int64
	FilterSnapshot   map[string]any
}

// Logger writes and reads SearchLog rows against a store executor.
type Logger struct {
	exec pg.Executor
}

// New builds a Logger over the given executor.
func New(exec pg.Executor) *Logger {
	return &Logger{exec: exec}
}

// Record persists one SearchLog row. A failure here must never cause the
// surrounding query to fail (spec.md §7's "Logger" error kind: swallowed,
// log-to-stderr) — so Record never returns an error; it logs and moves on.
func (l *Logger) Record(ctx context.Context, e Entry) {
	if l == nil || l.exec == nil {
		return
	}
	_, err := pg.InsertSearchLog(ctx, l.exec, pg.SearchLog{
		QueryText:        e.QueryText,
		SearchType:       e.SearchType,
		ExecutionTimeMs:  e.ExecutionTimeMs,
		ResultsCount:     e.ResultsCount,
		QueryVector:      e.QueryVector,
		ResultSectionIDs: e.ResultSectionIDs,
		FilterSnapshot:   e.FilterSnapshot,
	})
	if err != nil {
		log.Printf("retrievalcore: search log write failed query=%q type=%s err=%v", e.QueryText, e.SearchType, err)
	}
}

// RecentN returns the N most recent SearchLog rows.
func (l *Logger) RecentN(ctx context.Context, n int) ([]pg.SearchLog, error) {
	return pg.RecentSearchLogs(ctx, l.exec, n)
}

// ByType returns the N most recent SearchLog rows of a given search type.
func (l *Logger) ByType(ctx context.Context, t pg.SearchType, n int) ([]pg.SearchLog, error) {
	return pg.SearchLogsByType(ctx, l.exec, t, n)
}

// Popular returns the most frequent query texts in the trailing 24h window.
func (l *Logger) Popular(ctx context.Context, n int) ([]pg.PopularQuery, error) {
	return pg.PopularQueries(ctx, l.exec, n)
}

// AvgExecTimeByType reports the average execution_time_ms per search type.
func (l *Logger) AvgExecTimeByType(ctx context.Context) (map[pg.SearchType]float64, error) {
	return pg.AvgExecTimeByType(ctx, l.exec)
}

// defaultSimilarityBound is the cosine-distance bound for SimilarByVector,
// per spec.md §9 Open Question 3: a diagnostic utility, not an invariant.
const defaultSimilarityBound float32 = 0.3

// SimilarByVector surfaces prior queries whose logged query_vector falls
// within the cosine-distance bound of vec.
func (l *Logger) SimilarByVector(ctx context.Context, vec []float32, n int) ([]pg.SearchLog, error) {
	return pg.SimilarByVector(ctx, l.exec, vec, defaultSimilarityBound, n)
}
