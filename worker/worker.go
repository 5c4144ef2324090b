// Package worker implements the background embedding backfill loop
// (spec.md §5 "an optional embedding cache" / SPEC_FULL.md §5 "Background
// embedding/lexical backfill loop"): sections left without an Embedding
// row — because ingestion ran with GenerateEmbeddings off, or because a new
// embedding model/dimension was configured after sections already
// existed — are periodically drained and embedded.
package worker

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/corpusdb/retrievalcore/embedding"
	"github.com/corpusdb/retrievalcore/pg"
	"github.com/corpusdb/retrievalcore/vectorindex"
)

// Options configures the backfill loop.
type Options struct {
	BatchSize            int
	PollEvery            time.Duration
	MaxConcurrentEmbeds  int
	MaxRequestsPerSecond float64 // 0 = unlimited

	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

func (o Options) withDefaults() Options {
	out := o
	if out.BatchSize <= 0 {
		out.BatchSize = 250
	}
	if out.PollEvery <= 0 {
		out.PollEvery = 2 * time.Second
	}
	if out.MaxConcurrentEmbeds <= 0 {
		out.MaxConcurrentEmbeds = 8
	}
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 5
	}
	if out.BackoffBase <= 0 {
		out.BackoffBase = 5 * time.Second
	}
	if out.BackoffMax <= 0 {
		out.BackoffMax = 10 * time.Minute
	}
	return out
}

func expBackoff(base time.Duration, attempt int, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := math.Pow(2, float64(attempt-1))
	d := time.Duration(float64(base) * mult)
	if d > max {
		return max
	}
	return d
}

// addJitter uses the global rand functions (internally locked) rather than
// a shared *rand.Rand, since this is called concurrently from every
// fanned-out embed goroutine in RunOnce.
func addJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	j := time.Duration(rand.Int63n(int64(d/4) + 1))
	return d + j
}

// makeTokenBucket rate-limits concurrent embedder calls across a batch.
func makeTokenBucket(rps float64, burst int) <-chan struct{} {
	ch := make(chan struct{}, burst)
	for i := 0; i < burst; i++ {
		ch <- struct{}{}
	}
	if rps <= 0 {
		return ch
	}
	interval := time.Duration(float64(time.Second) / rps)
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	t := time.NewTicker(interval)
	go func() {
		for range t.C {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}()
	return ch
}

// subBatch splits a slice of sections into chunks of at most size n.
func subBatch(sections []pg.Section, n int) [][]pg.Section {
	if n <= 0 {
		n = len(sections)
	}
	var out [][]pg.Section
	for start := 0; start < len(sections); start += n {
		end := start + n
		if end > len(sections) {
			end = len(sections)
		}
		out = append(out, sections[start:end])
	}
	return out
}

func embedAndInsertWithRetry(ctx context.Context, exec pg.Executor, gateway *embedding.Gateway, sections []pg.Section, cfg Options) {
	texts := make([]string, len(sections))
	for i, s := range sections {
		texts[i] = s.Content
	}

	var vectors [][]float32
	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		vectors, err = gateway.EmbedBatch(ctx, texts)
		if err == nil {
			break
		}
		if attempt == cfg.MaxAttempts {
			log.Printf("retrievalcore: worker: giving up on a batch of %d sections after %d attempts: %v", len(sections), attempt, err)
			return
		}
		wait := addJitter(expBackoff(cfg.BackoffBase, attempt, cfg.BackoffMax))
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
	if err != nil {
		return
	}

	want := gateway.Dimensions()
	for i, v := range vectors {
		if want > 0 && len(v) != want {
			log.Printf("retrievalcore: worker: skipping section %d, embedder returned dimension %d want %d", sections[i].ID, len(v), want)
			continue
		}
		if err := vectorindex.Insert(ctx, exec, sections[i].ID, v); err != nil {
			log.Printf("retrievalcore: worker: insert failed for section %d: %v", sections[i].ID, err)
		}
	}
}

// RunOnce fetches one batch of sections missing an embedding and embeds
// them, fanning requests out across cfg.MaxConcurrentEmbeds workers
// optionally rate-limited by MaxRequestsPerSecond. Useful for integrating
// into an external job runner (e.g. River/cron) that does not want an
// internal polling loop — see riverjob.EmbedBatchWorker for that wiring.
func RunOnce(ctx context.Context, exec pg.Executor, gateway *embedding.Gateway, opts Options) error {
	if exec == nil {
		return fmt.Errorf("executor is required")
	}
	if gateway == nil {
		return fmt.Errorf("gateway is required")
	}
	cfg := opts.withDefaults()

	sections, err := pg.SectionsMissingEmbeddings(ctx, exec, cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(sections) == 0 {
		return nil
	}

	sem := make(chan struct{}, cfg.MaxConcurrentEmbeds)
	var tokens <-chan struct{}
	if cfg.MaxRequestsPerSecond > 0 {
		tokens = makeTokenBucket(cfg.MaxRequestsPerSecond, cfg.MaxConcurrentEmbeds)
	}

	var wg sync.WaitGroup
	for _, batch := range subBatch(sections, embedBatchSize) {
		batch := batch
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				<-sem
				wg.Done()
			}()
			if tokens != nil {
				select {
				case <-ctx.Done():
					return
				case <-tokens:
				}
			}
			embedAndInsertWithRetry(ctx, exec, gateway, batch, cfg)
		}()
	}
	wg.Wait()
	return nil
}

// embedBatchSize bounds each goroutine's EmbedBatch call so a single
// backlog doesn't turn into one giant provider request (grounded on the
// teacher's providerEmbedBatchSize constant).
const embedBatchSize = 25

// Run drains the backfill queue on a fixed interval until ctx is canceled.
// A failed RunOnce is logged and retried on the next tick rather than
// stopping the loop, matching the teacher's worker polling idiom.
func Run(ctx context.Context, exec pg.Executor, gateway *embedding.Gateway, opts Options) error {
	if exec == nil {
		return fmt.Errorf("executor is required")
	}
	if gateway == nil {
		return fmt.Errorf("gateway is required")
	}
	cfg := opts.withDefaults()

	ticker := time.NewTicker(cfg.PollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := RunOnce(ctx, exec, gateway, cfg); err != nil {
				log.Printf("retrievalcore: worker: backfill pass failed: %v", err)
			}
		}
	}
}
