package embedding

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/corpusdb/retrievalcore/internal/normalize"
)

// RetryOptions configures the gateway's capped exponential backoff for
// transient embedder failures (spec.md §4.4, §7: base 1s, multiplier 2,
// max 3 tries).
type RetryOptions struct {
	BaseDelay  time.Duration
	Multiplier float64
	MaxTries   int
}

func (o RetryOptions) withDefaults() RetryOptions {
	out := o
	if out.BaseDelay <= 0 {
		out.BaseDelay = time.Second
	}
	if out.Multiplier <= 0 {
		out.Multiplier = 2
	}
	if out.MaxTries <= 0 {
		out.MaxTries = 3
	}
	return out
}

// GatewayOptions configures the Gateway.
type GatewayOptions struct {
	BatchSize int
	Retry     RetryOptions
	// Normalize L2-normalizes every returned vector in place. Off by
	// default: spec.md's cosine-similarity definition (§4.6) divides by
	// magnitude explicitly, so normalization is not required for
	// correctness — this is an optional provider-smoothing knob, grounded
	// in the teacher's embedder, which always normalizes.
	Normalize bool
	// IsRetryable classifies an error from Embedder.EmbedBatch as
	// transient (retry) vs permanent (fail fast). Defaults to "always
	// retryable" when nil, matching the teacher's conservative default in
	// worker/worker.go's isRetryable.
	IsRetryable func(error) bool
	// Sleep is overridable for tests; defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Gateway batches section contents, retries transient embedder failures
// with capped exponential backoff, and serializes vectors for the store
// (spec.md §4.4). It never persists; it returns vectors to the caller (C7).
type Gateway struct {
	embedder Embedder
	opts     GatewayOptions
	cache    *Cache
}

// NewGateway constructs a Gateway. cache may be nil (no caching).
func NewGateway(embedder Embedder, opts GatewayOptions, cache *Cache) *Gateway {
	o := opts
	if o.BatchSize <= 0 {
		o.BatchSize = 16
	}
	o.Retry = o.Retry.withDefaults()
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	return &Gateway{embedder: embedder, opts: o, cache: cache}
}

// Dimensions reports the configured embedder's vector dimension D.
func (g *Gateway) Dimensions() int { return g.embedder.Dimensions() }

// EmbedBatch embeds texts in configured-size batches, retrying each batch
// on transient failure, and returns one vector per input text in order.
func (g *Gateway) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))

	// Resolve from cache first; only the misses go to the provider.
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))
	for i, t := range texts {
		if g.cache != nil {
			if v, ok := g.cache.Get(t); ok {
				out[i] = v
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}

	for start := 0; start < len(missTexts); start += g.opts.BatchSize {
		end := start + g.opts.BatchSize
		if end > len(missTexts) {
			end = len(missTexts)
		}
		batch := missTexts[start:end]

		vecs, err := g.embedWithRetry(ctx, batch)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(batch) {
			return nil, genErr("EmbedBatch", fmt.Errorf("expected %d vectors, got %d", len(batch), len(vecs)))
		}

		for i, v := range vecs {
			if g.opts.Normalize {
				normalize.L2NormalizeInPlace(v)
			}
			idx := missIdx[start+i]
			out[idx] = v
			if g.cache != nil {
				g.cache.Put(batch[i], v)
			}
		}
	}

	return out, nil
}

func (g *Gateway) embedWithRetry(ctx context.Context, batch []string) ([][]float32, error) {
	retryable := g.opts.IsRetryable
	if retryable == nil {
		retryable = func(error) bool { return true }
	}

	var lastErr error
	for attempt := 1; attempt <= g.opts.Retry.MaxTries; attempt++ {
		vecs, err := g.embedder.EmbedBatch(ctx, batch)
		if err == nil {
			return vecs, nil
		}
		lastErr = err
		if !retryable(err) || attempt == g.opts.Retry.MaxTries {
			break
		}

		delay := time.Duration(float64(g.opts.Retry.BaseDelay) * math.Pow(g.opts.Retry.Multiplier, float64(attempt-1)))
		select {
		case <-ctx.Done():
			return nil, genErr("EmbedBatch", ctx.Err())
		default:
		}
		g.opts.Sleep(delay)
	}
	return nil, genErr("EmbedBatch", lastErr)
}

// SerializeVector formats a vector as the store's bracketed, comma-separated
// decimal list with no whitespace (spec.md §6): "[v0,v1,...,v_{D-1}]".
func SerializeVector(vec []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
