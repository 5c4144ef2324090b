package ingest

import "context"

// ConvertedDocument is what the external converter collaborator produces
// from a raw source descriptor (spec.md §4.7 step 1).
type ConvertedDocument struct {
	Title    string
	Markdown string
}

// Converter fetches a document source (URL or local path) and converts it
// to markdown, inferring a title when the source has none. Modeled as a
// function type rather than a single-method interface, following the
// host app's AssetLister/AssetFetcher collaborator pattern: the pipeline
// only ever needs one call shape, so a func type is the smaller contract.
type Converter func(ctx context.Context, source string) (ConvertedDocument, error)

// Tagger generates candidate tag names for a document's content (spec.md
// §4.7 step 7's "external tag service"). Returns tag names to upsert and
// link; never entity ids, since tag identity is owned by this core.
type Tagger func(ctx context.Context, documentID int64, markdown string) ([]string, error)
