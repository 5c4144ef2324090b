package retrieval

import (
	"context"

	"github.com/corpusdb/retrievalcore/embedding"
	"github.com/corpusdb/retrievalcore/lang"
	"github.com/corpusdb/retrievalcore/lexical"
	"github.com/corpusdb/retrievalcore/pg"
	"github.com/corpusdb/retrievalcore/vectorindex"
)

// ChannelKind distinguishes the two retrieval channels (spec.md §9
// "Polymorphic retrieval channel"). Implemented as a sum type with
// concrete variants rather than a class hierarchy: VectorChannel and
// LexicalChannel both satisfy the channel capability below, and the
// orchestrator composes over that capability without knowing which
// variant it is driving.
type ChannelKind int

const (
	VectorChannelKind ChannelKind = iota
	LexicalChannelKind
)

func (k ChannelKind) String() string {
	if k == VectorChannelKind {
		return "vector"
	}
	return "fulltext"
}

// sectionHit is one channel's raw result, before RRF fusion strips it down
// to a section id.
type sectionHit struct {
	SectionID int64
}

// channel is the capability spec.md §9 calls
// `search(query_repr, limit, filters, deadline) -> RankedHit[]`.
type channel interface {
	Kind() ChannelKind
	Search(ctx context.Context, queryText string, limit int, filters Filters) ([]sectionHit, error)
}

// Filters mirrors spec.md §4.8's filter option group.
type Filters struct {
	DocumentIDs []int64
	TagIDs      []int64
	DateFrom    *string
	DateTo      *string
}

// VectorChannel embeds the query once via the Embedding Gateway (C4) and
// delegates to the Vector Index Manager (C6).
type VectorChannel struct {
	Exec    pg.Executor
	Gateway *embedding.Gateway

	// lastVector holds the most recently embedded query vector, so the
	// orchestrator can attach it to the SearchLog row without embedding
	// the query a second time. Valid only after Search returns; a
	// VectorChannel is constructed fresh per request, never shared.
	lastVector []float32
}

func (c *VectorChannel) Kind() ChannelKind { return VectorChannelKind }

// QueryVector returns the vector embedded by the most recent Search call.
func (c *VectorChannel) QueryVector() []float32 { return c.lastVector }

func (c *VectorChannel) Search(ctx context.Context, queryText string, limit int, filters Filters) ([]sectionHit, error) {
	vecs, err := c.Gateway.EmbedBatch(ctx, []string{queryText})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, nil
	}
	c.lastVector = vecs[0]
	hits, err := vectorindex.Search(ctx, c.Exec, vecs[0], vectorindex.Options{
		Limit:       limit,
		DocumentIDs: filters.DocumentIDs,
		TagIDs:      filters.TagIDs,
		DateFrom:    filters.DateFrom,
		DateTo:      filters.DateTo,
	})
	if err != nil {
		return nil, err
	}
	out := make([]sectionHit, 0, len(hits))
	for _, h := range hits {
		out = append(out, sectionHit{SectionID: h.SectionID})
	}
	return out, nil
}

// LexicalChannel delegates to the Lexical Index Manager (C5).
type LexicalChannel struct {
	Exec     pg.Executor
	Registry *lang.Registry
	Language string
}

func (c *LexicalChannel) Kind() ChannelKind { return LexicalChannelKind }

func (c *LexicalChannel) Search(ctx context.Context, queryText string, limit int, filters Filters) ([]sectionHit, error) {
	hits, err := lexical.Search(ctx, c.Exec, c.Registry, queryText, lexical.SearchOptions{
		LanguageOverride: c.Language,
		Limit:            limit,
		DocumentIDs:      filters.DocumentIDs,
		TagIDs:           filters.TagIDs,
		DateFrom:         filters.DateFrom,
		DateTo:           filters.DateTo,
	})
	if err != nil {
		return nil, err
	}
	out := make([]sectionHit, 0, len(hits))
	for _, h := range hits {
		out = append(out, sectionHit{SectionID: h.SectionID})
	}
	return out, nil
}
