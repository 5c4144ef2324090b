package worker

import (
	"testing"
	"time"

	"github.com/corpusdb/retrievalcore/pg"
)

func TestOptions_WithDefaults(t *testing.T) {
	cfg := Options{}.withDefaults()
	if cfg.BatchSize != 250 {
		t.Errorf("BatchSize default = %d, want 250", cfg.BatchSize)
	}
	if cfg.PollEvery != 2*time.Second {
		t.Errorf("PollEvery default = %v, want 2s", cfg.PollEvery)
	}
	if cfg.MaxConcurrentEmbeds != 8 {
		t.Errorf("MaxConcurrentEmbeds default = %d, want 8", cfg.MaxConcurrentEmbeds)
	}
	if cfg.MaxAttempts != 5 {
		t.Errorf("MaxAttempts default = %d, want 5", cfg.MaxAttempts)
	}
}

func TestOptions_WithDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := Options{BatchSize: 10, MaxAttempts: 2}.withDefaults()
	if cfg.BatchSize != 10 {
		t.Errorf("expected explicit BatchSize preserved, got %d", cfg.BatchSize)
	}
	if cfg.MaxAttempts != 2 {
		t.Errorf("expected explicit MaxAttempts preserved, got %d", cfg.MaxAttempts)
	}
}

func TestExpBackoff_DoublesPerAttemptUpToMax(t *testing.T) {
	base := time.Second
	max := 10 * time.Second
	if got := expBackoff(base, 1, max); got != time.Second {
		t.Errorf("attempt 1 = %v, want 1s", got)
	}
	if got := expBackoff(base, 2, max); got != 2*time.Second {
		t.Errorf("attempt 2 = %v, want 2s", got)
	}
	if got := expBackoff(base, 3, max); got != 4*time.Second {
		t.Errorf("attempt 3 = %v, want 4s", got)
	}
	if got := expBackoff(base, 10, max); got != max {
		t.Errorf("attempt 10 = %v, want capped at %v", got, max)
	}
}

func TestAddJitter_NeverReducesDuration(t *testing.T) {
	base := 4 * time.Second
	for i := 0; i < 20; i++ {
		got := addJitter(base)
		if got < base {
			t.Fatalf("jittered duration %v is less than base %v", got, base)
		}
	}
}

func TestAddJitter_ZeroDurationUnchanged(t *testing.T) {
	if got := addJitter(0); got != 0 {
		t.Errorf("expected zero duration unchanged, got %v", got)
	}
}

func TestSubBatch_SplitsIntoChunksOfN(t *testing.T) {
	sections := make([]pg.Section, 7)
	for i := range sections {
		sections[i].ID = int64(i + 1)
	}
	batches := subBatch(sections, 3)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 3 || len(batches[1]) != 3 || len(batches[2]) != 1 {
		t.Errorf("unexpected batch sizes: %d, %d, %d", len(batches[0]), len(batches[1]), len(batches[2]))
	}
}

func TestSubBatch_EmptyInput(t *testing.T) {
	if got := subBatch(nil, 5); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestMakeTokenBucket_StartsWithBurstTokensAvailable(t *testing.T) {
	ch := makeTokenBucket(0, 4)
	count := 0
	for {
		select {
		case <-ch:
			count++
		default:
			if count != 4 {
				t.Errorf("expected 4 immediately available tokens, got %d", count)
			}
			return
		}
	}
}
