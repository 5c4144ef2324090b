// Package ingest implements the Ingestion Pipeline (spec.md §4.7, C7):
// fetch, chunk, and transactionally replace a document's sections, then
// maintain its lexical and vector indexes and optional tag/topic links.
package ingest

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/corpusdb/retrievalcore/chunk"
	"github.com/corpusdb/retrievalcore/embedding"
	"github.com/corpusdb/retrievalcore/lang"
	"github.com/corpusdb/retrievalcore/lexical"
	"github.com/corpusdb/retrievalcore/pg"
	"github.com/corpusdb/retrievalcore/query"
	"github.com/corpusdb/retrievalcore/vectorindex"
)

// beginner is satisfied by *pgxpool.Pool. Only the Pipeline needs to open
// transactions (every other package works against pg.Executor), so the
// dependency is scoped to exactly the capability required.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Options configures one Ingest call, per spec.md §4.7's input shape.
type Options struct {
	Title    string
	Author   string
	Language string

	// GenerateEmbeddings defaults to true when nil, per spec.md §4.7's
	// `generate_embeddings=true` default — a pointer is used so the zero
	// Options value doesn't accidentally disable embeddings.
	GenerateEmbeddings *bool
	GenerateTags       bool
	TopicIDs           []int64
	Tags               []string
}

func (o Options) generateEmbeddings() bool {
	if o.GenerateEmbeddings == nil {
		return true
	}
	return *o.GenerateEmbeddings
}

// Result is what one successful Ingest call reports.
type Result struct {
	DocumentID   int64
	SectionCount int
}

// Pipeline wires the store, tokenizer registry, embedding gateway, and the
// external converter/tagger collaborators together to satisfy C7.
type Pipeline struct {
	DB       beginner
	Registry *lang.Registry
	Gateway  *embedding.Gateway
	Convert  Converter
	Tag      Tagger
}

// New builds a Pipeline. tag may be nil if GenerateTags is never requested.
func New(db beginner, registry *lang.Registry, gateway *embedding.Gateway, convert Converter, tag Tagger) *Pipeline {
	return &Pipeline{DB: db, Registry: registry, Gateway: gateway, Convert: convert, Tag: tag}
}

// Ingest runs the full fetch -> chunk -> transactional replace -> lexical
// -> embeddings -> tags/topics -> commit pipeline for one source (spec.md
// §4.7 steps 1-8).
func (p *Pipeline) Ingest(ctx context.Context, source string, opts Options) (*Result, error) {
	if strings.TrimSpace(source) == "" {
		return nil, argErr("Ingest", "source is required")
	}
	if p.Convert == nil {
		return nil, argErr("Ingest", "a Converter collaborator is required")
	}

	converted, err := p.Convert(ctx, source)
	if err != nil {
		return nil, &FetchError{Op: "Ingest", Err: err}
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = strings.TrimSpace(converted.Title)
	}
	if title == "" {
		title = source
	}

	language := strings.ToLower(strings.TrimSpace(opts.Language))
	if language == "" {
		language = query.DetectLanguage(converted.Markdown)
	}

	documentID, err := pg.UpsertDocumentByURL(ctx, p.DB.(pg.Executor), pg.Document{
		Title:         title,
		URL:           source,
		Author:        opts.Author,
		Language:      language,
		DownloadState: pg.DownloadPending,
	})
	if err != nil {
		return nil, &DocumentProcessingError{Op: "Ingest", DocumentID: 0, Err: err}
	}

	chunks := chunk.Chunk(converted.Markdown, chunk.Options{})

	result, procErr := p.replaceAndIndex(ctx, documentID, language, chunks, opts)
	if procErr != nil {
		_ = pg.SetDocumentDownloadState(ctx, p.DB.(pg.Executor), documentID, pg.DownloadFailed)
		return nil, &DocumentProcessingError{Op: "Ingest", DocumentID: documentID, Err: procErr}
	}
	return result, nil
}

// replaceAndIndex runs spec.md §4.7 steps 4-8 inside one transaction, so a
// reader never observes a partial section set for the document (I5).
func (p *Pipeline) replaceAndIndex(ctx context.Context, documentID int64, language string, chunks []chunk.Section, opts Options) (*Result, error) {
	tx, err := p.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	newSections := make([]pg.NewSection, 0, len(chunks))
	for i, c := range chunks {
		newSections = append(newSections, pg.NewSection{SectionNumber: i + 1, Title: c.Title, Content: c.Content})
	}

	sections, err := pg.ReplaceSections(ctx, tx, documentID, newSections)
	if err != nil {
		return nil, err
	}

	for _, s := range sections {
		err := lexical.Maintain(ctx, tx, p.Registry, lexical.Section{
			ID: s.ID, Language: language, Title: s.Title, Content: s.Content,
		})
		if err != nil {
			return nil, err
		}
	}

	if opts.generateEmbeddings() && len(sections) > 0 && p.Gateway != nil {
		texts := make([]string, len(sections))
		for i, s := range sections {
			texts[i] = s.Content
		}
		vectors, err := p.Gateway.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, &EmbeddingGenerationError{Op: "replaceAndIndex", Err: err}
		}
		if len(vectors) != len(sections) {
			return nil, &EmbeddingGenerationError{Op: "replaceAndIndex", Err: argErr("replaceAndIndex", "embedder returned a different vector count than sections")}
		}
		want := p.Gateway.Dimensions()
		for i, v := range vectors {
			if want > 0 && len(v) != want {
				return nil, &EmbeddingGenerationError{Op: "replaceAndIndex", Err: argErr("replaceAndIndex", "embedder returned a vector of the wrong dimension")}
			}
			if err := vectorindex.Insert(ctx, tx, sections[i].ID, v); err != nil {
				return nil, err
			}
		}
	}

	if err := p.linkTagsAndTopics(ctx, tx, documentID, sections, opts); err != nil {
		return nil, err
	}

	if err := pg.SetDocumentDownloadState(ctx, tx, documentID, pg.DownloadCompleted); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &Result{DocumentID: documentID, SectionCount: len(sections)}, nil
}

func (p *Pipeline) linkTagsAndTopics(ctx context.Context, tx pgx.Tx, documentID int64, sections []pg.Section, opts Options) error {
	tagNames := append([]string{}, opts.Tags...)
	if opts.GenerateTags && p.Tag != nil {
		contents := make([]string, len(sections))
		for i, s := range sections {
			contents[i] = s.Content
		}
		generated, err := p.Tag(ctx, documentID, strings.Join(contents, "\n\n"))
		if err != nil {
			return err
		}
		tagNames = append(tagNames, generated...)
	}

	tagIDs := make([]int64, 0, len(tagNames))
	for _, name := range tagNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		id, err := pg.UpsertTag(ctx, tx, name, nil)
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, id)
	}

	for _, s := range sections {
		for _, tagID := range tagIDs {
			if err := pg.LinkSectionTag(ctx, tx, s.ID, tagID); err != nil {
				return err
			}
		}
		for _, topicID := range opts.TopicIDs {
			if err := pg.AddSectionToTopic(ctx, tx, topicID, s.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
