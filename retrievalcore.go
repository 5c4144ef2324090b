// Package retrievalcore wires the Hybrid Retrieval Core's modules
// (tokenizer registry, embedding gateway, ingestion pipeline, retrieval
// orchestrator, search log, and background backfill) into a single
// facade, mirroring the teacher's runtime.Runtime constructor shape.
package retrievalcore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corpusdb/retrievalcore/embedding"
	"github.com/corpusdb/retrievalcore/ingest"
	"github.com/corpusdb/retrievalcore/lang"
	"github.com/corpusdb/retrievalcore/pg"
	"github.com/corpusdb/retrievalcore/retrieval"
	"github.com/corpusdb/retrievalcore/searchlog"
	"github.com/corpusdb/retrievalcore/worker"
)

// Options configures a Core. Pool and Embedder are required; everything
// else has a sane default.
type Options struct {
	// Required.
	Pool     *pgxpool.Pool
	Embedder embedding.Embedder

	// Schema Postgres migrations run against. Defaults to "public".
	Schema string

	// The configured embedder's vector width, used to size the halfvec
	// column at migration time. When <= 0 it defaults to
	// Embedder.Dimensions(); New fails if both are zero.
	Dimensions int

	// Registry seeds the tokenizer mapping. Defaults to lang.NewRegistry().
	Registry *lang.Registry

	// GatewayOptions configures the embedding gateway's batching, retry,
	// and normalization behavior. Zero value uses the gateway's defaults.
	GatewayOptions embedding.GatewayOptions
	// Cache, if non-nil, is shared by the gateway across calls.
	Cache *embedding.Cache

	// Convert and Tag are the external collaborators the ingestion
	// pipeline needs to turn a source string into markdown (and
	// optionally classify it into tags). Convert is required to use
	// Core.Ingest; Tag may be nil if GenerateTags is never requested.
	Convert ingest.Converter
	Tag     ingest.Tagger

	// SkipMigrate, if true, does not apply pg/migrations/postgres on
	// construction. Callers managing migrations out-of-band should set
	// this.
	SkipMigrate bool
}

// Core is the facade a host application embeds: one Postgres pool, one
// configured embedder, and the modules built on top of them.
type Core struct {
	pool     *pgxpool.Pool
	schema   string
	registry *lang.Registry
	gateway  *embedding.Gateway
	logger   *searchlog.Logger

	pipeline     *ingest.Pipeline
	orchestrator *retrieval.Orchestrator
}

// New constructs a Core, applying pending schema migrations unless
// opts.SkipMigrate is set.
func New(ctx context.Context, opts Options) (*Core, error) {
	if opts.Pool == nil {
		return nil, fmt.Errorf("retrievalcore: pool is required")
	}
	if opts.Embedder == nil {
		return nil, fmt.Errorf("retrievalcore: embedder is required")
	}
	if opts.Dimensions <= 0 {
		opts.Dimensions = opts.Embedder.Dimensions()
	}
	if opts.Dimensions <= 0 {
		return nil, fmt.Errorf("retrievalcore: dimensions is required")
	}

	schema := strings.TrimSpace(opts.Schema)
	if schema == "" {
		schema = "public"
	}

	if !opts.SkipMigrate {
		if err := pg.Migrate(ctx, opts.Pool, pg.MigrateOptions{Schema: schema, Dimensions: opts.Dimensions}); err != nil {
			return nil, fmt.Errorf("retrievalcore: migrate: %w", err)
		}
	}

	registry := opts.Registry
	if registry == nil {
		registry = lang.NewRegistry()
	}

	gateway := embedding.NewGateway(opts.Embedder, opts.GatewayOptions, opts.Cache)
	logger := searchlog.New(opts.Pool)

	pipeline := ingest.New(opts.Pool, registry, gateway, opts.Convert, opts.Tag)
	orchestrator := retrieval.New(opts.Pool, gateway, registry, logger)

	return &Core{
		pool:         opts.Pool,
		schema:       schema,
		registry:     registry,
		gateway:      gateway,
		logger:       logger,
		pipeline:     pipeline,
		orchestrator: orchestrator,
	}, nil
}

// Ingest fetches, chunks, and indexes one source document (C7).
func (c *Core) Ingest(ctx context.Context, source string, opts ingest.Options) (*ingest.Result, error) {
	return c.pipeline.Ingest(ctx, source, opts)
}

// BatchIngest ingests many sources, collecting per-item failures without
// aborting the batch.
func (c *Core) BatchIngest(ctx context.Context, items []ingest.BatchItem) ingest.BatchResult {
	return c.pipeline.BatchUpdate(ctx, items)
}

// Search runs a hybrid/vector/fulltext query through the retrieval
// orchestrator (C8).
func (c *Core) Search(ctx context.Context, queryText string, opts retrieval.SearchOptions) (*retrieval.Result, error) {
	return c.orchestrator.Search(ctx, queryText, opts)
}

// Registry exposes the tokenizer registry for administrative installs.
func (c *Core) Registry() *lang.Registry { return c.registry }

// SearchLog exposes the search log reader for diagnostics/analytics.
func (c *Core) SearchLog() *searchlog.Logger { return c.logger }

// RunBackfillOnce drains one bounded batch of sections missing an
// embedding (spec.md §5's background backfill). See the worker package
// for a standalone polling loop, or riverjob for a River-scheduled job.
func (c *Core) RunBackfillOnce(ctx context.Context, opts worker.Options) error {
	return worker.RunOnce(ctx, c.pool, c.gateway, opts)
}

// RunBackfill polls RunBackfillOnce on opts.PollEvery until ctx is
// canceled. Intended to be run in its own goroutine by the host.
func (c *Core) RunBackfill(ctx context.Context, opts worker.Options) error {
	return worker.Run(ctx, c.pool, c.gateway, opts)
}

// Close releases the underlying pool. Core does not own opts.Pool's
// lifecycle beyond this — callers that share the pool with other
// components should call Pool() and manage Close() themselves instead.
func (c *Core) Close() { c.pool.Close() }

// Pool exposes the underlying connection pool for callers that need to
// run their own transactions spanning a Core operation (e.g. ingest
// inside a larger host transaction).
func (c *Core) Pool() *pgxpool.Pool { return c.pool }
