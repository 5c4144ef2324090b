// Package pg is the Postgres-backed persistence layer implementing the
// data model of spec.md §3 (C10 Schema & Migrations) and the row types
// shared by every other package that reads or writes the store.
package pg

import "time"

// DownloadState is Document's ingestion lifecycle state.
type DownloadState int

const (
	DownloadPending DownloadState = iota
	DownloadCompleted
	DownloadFailed
)

func (s DownloadState) String() string {
	switch s {
	case DownloadPending:
		return "pending"
	case DownloadCompleted:
		return "completed"
	case DownloadFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Document is one ingested source (spec.md §3).
type Document struct {
	ID            int64
	Title         string
	URL           string
	Author        string
	PublishedAt   *time.Time
	Language      string
	Description   string
	DownloadState DownloadState
	Metadata      map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Section is one chunk of a Document.
type Section struct {
	ID            int64
	DocumentID    int64
	SectionNumber int
	Title         string
	Content       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Embedding is one dense vector row, 1:1 with Section.
type Embedding struct {
	ID        int64
	SectionID int64
	Vector    []float32
	CreatedAt time.Time
}

// LexicalVector is one lexical index row, 1:1 with Section. The three
// vector fields always hold store-native tsvector literals (PGroonga search
// runs over sections.raw_content, not over these fields); they are opaque
// to Go and only ever round-tripped through the store.
type LexicalVector struct {
	SectionID   int64
	Language    string
	TitleVec    string
	ContentVec  string
	CombinedVec string
	UpdatedAt   time.Time
}

// Tag is a free-form label, optionally nested under a parent (forest).
type Tag struct {
	ID       int64
	Name     string
	ParentID *int64
}

// ResearchTopic is a user-defined grouping of sections and tags.
type ResearchTopic struct {
	ID          int64
	Name        string
	Description string
}

// LanguageConfig is a persisted row of the Tokenizer Registry (C1).
type LanguageConfig struct {
	Code      string
	Name      string
	Installed bool
}

// SearchType classifies a SearchLog entry.
type SearchType string

const (
	SearchTypeVector   SearchType = "vector"
	SearchTypeFulltext SearchType = "fulltext"
	SearchTypeHybrid   SearchType = "hybrid"
)

// SearchLog is one row per observed query (C9).
type SearchLog struct {
	ID               int64
	QueryText        string
	SearchType       SearchType
	ExecutionTimeMs  int64
	ResultsCount     int
	QueryVector      []float32
	ResultSectionIDs []int64
	FilterSnapshot   map[string]any
	CreatedAt        time.Time
}
