// Package retrieval implements the Retrieval Orchestrator (spec.md §4.8,
// C8): hybrid vector+lexical search, fused via Reciprocal Rank Fusion, with
// pagination, enrichment, and graceful single-channel degradation.
package retrieval

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/corpusdb/retrievalcore/embedding"
	"github.com/corpusdb/retrievalcore/lang"
	"github.com/corpusdb/retrievalcore/pg"
	"github.com/corpusdb/retrievalcore/query"
	"github.com/corpusdb/retrievalcore/searchlog"
)

// SearchType selects which channel(s) the orchestrator consults.
type SearchType string

const (
	SearchVector   SearchType = "vector"
	SearchFulltext SearchType = "fulltext"
	SearchHybrid   SearchType = "hybrid"
)

// SearchOptions configures Search, per the option table in spec.md §4.8.
type SearchOptions struct {
	SearchType SearchType
	Limit      int
	// Alpha defaults to 0.7 when nil. A pointer is used so an explicit
	// alpha=0 (lexical-only ordering, per spec.md §8's pinned
	// "alpha=0 ⇒ hybrid ≡ lexical ordering" property) is distinguishable
	// from an unset field.
	Alpha           *float32
	RRFK            int
	Language        string
	Filters         Filters
	IncludeContent  bool
	IncludeMetadata bool
	Page            int
	PerPage         int
}

// alpha resolves the effective fusion weight: the default of 0.7 when
// unset, otherwise the caller's value clamped to [0,1] (spec.md §9 Open
// Question 1).
func (o SearchOptions) alpha() float32 {
	if o.Alpha == nil {
		return 0.7
	}
	return ClampAlpha(*o.Alpha)
}

func (o SearchOptions) withDefaults() SearchOptions {
	out := o
	if out.SearchType == "" {
		out.SearchType = SearchHybrid
	}
	if out.Limit <= 0 {
		out.Limit = 10
	}
	if out.Limit > 100 {
		out.Limit = 100
	}
	if out.RRFK <= 0 {
		out.RRFK = 60
	}
	if out.Page <= 0 {
		out.Page = 1
	}
	if out.PerPage <= 0 {
		out.PerPage = out.Limit
	}
	return out
}

// ResultItem is one enriched, ranked hit in a Result.
type ResultItem struct {
	SectionID        int64
	DocumentID       int64
	SectionNumber    int
	Title            string
	Content          string
	Language         string
	Score            float32
	DocumentMetadata map[string]any
}

// Metadata reports how a Search call was satisfied, per spec.md §4.8 step 7.
type Metadata struct {
	TotalCount        int
	ExecutionTimeMs   int64
	Language          string
	Alpha             float32
	TextResultCount   int
	VectorResultCount int
	Error             string
}

// Result is the full Search response.
type Result struct {
	Query    string
	Results  []ResultItem
	Metadata Metadata
}

// Orchestrator wires the store, embedding gateway, tokenizer registry, and
// search logger together to satisfy C8.
type Orchestrator struct {
	Exec     pg.Executor
	Gateway  *embedding.Gateway
	Registry *lang.Registry
	Logger   *searchlog.Logger
}

// New builds an Orchestrator from its collaborators.
func New(exec pg.Executor, gateway *embedding.Gateway, registry *lang.Registry, logger *searchlog.Logger) *Orchestrator {
	return &Orchestrator{Exec: exec, Gateway: gateway, Registry: registry, Logger: logger}
}

// retrievalPoolSize computes RETRIEVAL_POOL = max(64, 64*ceil(limit/64))
// per spec.md §4.8 step 3.
func retrievalPoolSize(limit int) int {
	pool := 64 * ((limit + 63) / 64)
	if pool < 64 {
		pool = 64
	}
	return pool
}

// Search runs the hybrid/vector/fulltext retrieval algorithm of spec.md
// §4.8 and records exactly one SearchLog row (§4.9), including on
// validation failure.
func (o *Orchestrator) Search(ctx context.Context, queryText string, opts SearchOptions) (*Result, error) {
	start := time.Now()
	opts = opts.withDefaults()

	switch opts.SearchType {
	case SearchVector, SearchFulltext, SearchHybrid:
	default:
		o.logRejected(ctx, queryText, opts, "invalid search_type")
		return nil, argErr("Search", "search_type must be one of vector, fulltext, hybrid")
	}

	if _, err := query.Parse(queryText, query.Options{}); err != nil {
		o.logRejected(ctx, queryText, opts, err.Error())
		return nil, argErr("Search", err.Error())
	}

	language := strings.TrimSpace(opts.Language)
	if language == "" {
		language = query.DetectLanguage(queryText)
	}

	pool := retrievalPoolSize(opts.Limit)

	var vectorIDs, textIDs []int64
	var vectorErr, textErr error
	var queryVector []float32

	runVector := opts.SearchType == SearchVector || opts.SearchType == SearchHybrid
	runLexical := opts.SearchType == SearchFulltext || opts.SearchType == SearchHybrid

	vc := &VectorChannel{Exec: o.Exec, Gateway: o.Gateway}
	lc := &LexicalChannel{Exec: o.Exec, Registry: o.Registry, Language: language}

	if opts.SearchType == SearchHybrid {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			hits, err := vc.Search(gctx, queryText, pool, opts.Filters)
			vectorErr = err
			vectorIDs = idsOf(hits)
			return nil // captured, not propagated: the sibling channel must still run (degradation policy)
		})
		g.Go(func() error {
			hits, err := lc.Search(gctx, queryText, pool, opts.Filters)
			textErr = err
			textIDs = idsOf(hits)
			return nil
		})
		_ = g.Wait()
		queryVector = vc.QueryVector()
	} else if runVector {
		hits, err := vc.Search(ctx, queryText, pool, opts.Filters)
		if err != nil {
			o.logRejected(ctx, queryText, opts, err.Error())
			return nil, err
		}
		vectorIDs = idsOf(hits)
		queryVector = vc.QueryVector()
	} else if runLexical {
		hits, err := lc.Search(ctx, queryText, pool, opts.Filters)
		if err != nil {
			o.logRejected(ctx, queryText, opts, err.Error())
			return nil, err
		}
		textIDs = idsOf(hits)
	}

	var metaErr string
	if opts.SearchType == SearchHybrid {
		switch {
		case vectorErr != nil && textErr != nil:
			if errors.Is(ctx.Err(), context.DeadlineExceeded) && len(vectorIDs) == 0 && len(textIDs) == 0 {
				o.logRejected(ctx, queryText, opts, "timed out")
				return nil, &TimeoutError{Op: "Search"}
			}
			metaErr = "vector channel: " + vectorErr.Error() + "; fulltext channel: " + textErr.Error()
			vectorIDs, textIDs = nil, nil
		case vectorErr != nil:
			metaErr = vectorErr.Error()
			vectorIDs = nil
		case textErr != nil:
			metaErr = textErr.Error()
			textIDs = nil
		}
	}

	fused := Fuse(vectorIDs, textIDs, opts.alpha(), opts.RRFK)
	page := paginate(fused, opts.Page, opts.PerPage, opts.Limit)

	items, err := o.enrich(ctx, page, opts)
	if err != nil {
		o.logRejected(ctx, queryText, opts, err.Error())
		return nil, err
	}

	execMs := time.Since(start).Milliseconds()
	resultIDs := make([]int64, 0, len(items))
	for _, it := range items {
		resultIDs = append(resultIDs, it.SectionID)
	}

	o.Logger.Record(ctx, searchlog.Entry{
		QueryText:        queryText,
		SearchType:       pg.SearchType(opts.SearchType),
		ExecutionTimeMs:  execMs,
		ResultsCount:     len(items),
		QueryVector:      queryVector,
		ResultSectionIDs: resultIDs,
		FilterSnapshot:   filterSnapshot(opts),
	})

	return &Result{
		Query:   queryText,
		Results: items,
		Metadata: Metadata{
			TotalCount:        len(fused),
			ExecutionTimeMs:   execMs,
			Language:          language,
			Alpha:             opts.alpha(),
			TextResultCount:   len(textIDs),
			VectorResultCount: len(vectorIDs),
			Error:             metaErr,
		},
	}, nil
}

// logRejected records a zero-result SearchLog row for a query that was
// rejected before it ran or that failed before returning results (spec.md
// §4.9: "including validation failures"); the reason is stored under the
// "rejected" key of the filter snapshot.
func (o *Orchestrator) logRejected(ctx context.Context, queryText string, opts SearchOptions, reason string) {
	o.Logger.Record(ctx, searchlog.Entry{
		QueryText:       queryText,
		SearchType:      pg.SearchType(opts.SearchType),
		ExecutionTimeMs: 0,
		ResultsCount:    0,
		FilterSnapshot:  map[string]any{"rejected": reason},
	})
}

// enrich attaches section content and document metadata per opts, per
// spec.md §4.8 step 6.
func (o *Orchestrator) enrich(ctx context.Context, page []RankedHit, opts SearchOptions) ([]ResultItem, error) {
	if len(page) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(page))
	for _, h := range page {
		ids = append(ids, h.SectionID)
	}
	sections, err := pg.SectionsByIDs(ctx, o.Exec, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]pg.Section, len(sections))
	for _, s := range sections {
		byID[s.ID] = s
	}

	var docs map[int64]pg.Document
	if opts.IncludeMetadata {
		docIDs := make([]int64, 0, len(sections))
		seen := make(map[int64]bool)
		for _, s := range sections {
			if !seen[s.DocumentID] {
				seen[s.DocumentID] = true
				docIDs = append(docIDs, s.DocumentID)
			}
		}
		docs, err = pg.DocumentsByIDs(ctx, o.Exec, docIDs)
		if err != nil {
			return nil, err
		}
	}

	out := make([]ResultItem, 0, len(page))
	for _, h := range page {
		s, ok := byID[h.SectionID]
		if !ok {
			continue
		}
		item := ResultItem{
			SectionID:     s.ID,
			DocumentID:    s.DocumentID,
			SectionNumber: s.SectionNumber,
			Title:         s.Title,
			Score:         h.Score,
		}
		if opts.IncludeContent {
			item.Content = s.Content
		}
		if opts.IncludeMetadata {
			if d, ok := docs[s.DocumentID]; ok {
				item.Language = d.Language
				item.DocumentMetadata = map[string]any{
					"title":        d.Title,
					"author":       d.Author,
					"published_at": d.PublishedAt,
					"metadata":     d.Metadata,
				}
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func idsOf(hits []sectionHit) []int64 {
	out := make([]int64, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.SectionID)
	}
	return out
}

func filterSnapshot(opts SearchOptions) map[string]any {
	return map[string]any{
		"search_type":      string(opts.SearchType),
		"limit":            opts.Limit,
		"alpha":            opts.alpha(),
		"document_ids":     opts.Filters.DocumentIDs,
		"tag_ids":          opts.Filters.TagIDs,
		"date_from":        opts.Filters.DateFrom,
		"date_to":          opts.Filters.DateTo,
		"include_content":  opts.IncludeContent,
		"include_metadata": opts.IncludeMetadata,
	}
}
