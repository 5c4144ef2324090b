package embedding

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeEmbedder struct {
	dims      int
	calls     [][]string
	failTimes int
	err       error
}

func (f *fakeEmbedder) Model() string   { return "fake-model" }
func (f *fakeEmbedder) Dimensions() int { return f.dims }

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, append([]string(nil), texts...))
	if len(f.calls) <= f.failTimes {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func TestGateway_BatchesBySize(t *testing.T) {
	fe := &fakeEmbedder{dims: 2}
	gw := NewGateway(fe, GatewayOptions{BatchSize: 2, Sleep: func(time.Duration) {}}, nil)

	vecs, err := gw.EmbedBatch(context.Background(), []string{"a", "b", "c", "d", "e"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 5 {
		t.Fatalf("expected 5 vectors, got %d", len(vecs))
	}
	if len(fe.calls) != 3 {
		t.Fatalf("expected 3 batch calls (2+2+1), got %d: %v", len(fe.calls), fe.calls)
	}
}

func TestGateway_RetriesThenSucceeds(t *testing.T) {
	fe := &fakeEmbedder{dims: 2, failTimes: 2, err: errors.New("transient")}
	gw := NewGateway(fe, GatewayOptions{Sleep: func(time.Duration) {}}, nil)

	vecs, err := gw.EmbedBatch(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("unexpected error after retries: %v", err)
	}
	if len(vecs) != 1 {
		t.Fatalf("expected 1 vector, got %d", len(vecs))
	}
	if len(fe.calls) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(fe.calls))
	}
}

func TestGateway_ExhaustsRetriesAndSurfacesGenerationError(t *testing.T) {
	fe := &fakeEmbedder{dims: 2, failTimes: 99, err: errors.New("down")}
	gw := NewGateway(fe, GatewayOptions{Sleep: func(time.Duration) {}}, nil)

	_, err := gw.EmbedBatch(context.Background(), []string{"a"})
	if err == nil {
		t.Fatal("expected error")
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerationError, got %T", err)
	}
	if len(fe.calls) != 3 {
		t.Fatalf("expected 3 attempts (MaxTries default), got %d", len(fe.calls))
	}
}

func TestGateway_CacheAvoidsRecall(t *testing.T) {
	fe := &fakeEmbedder{dims: 2}
	cache := NewCache("fake-model", 10)
	gw := NewGateway(fe, GatewayOptions{Sleep: func(time.Duration) {}}, cache)

	ctx := context.Background()
	if _, err := gw.EmbedBatch(ctx, []string{"x", "y"}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := gw.EmbedBatch(ctx, []string{"x", "y"}); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(fe.calls) != 1 {
		t.Fatalf("expected cache to serve the second call entirely, got %d provider calls", len(fe.calls))
	}
}

func TestSerializeVector(t *testing.T) {
	got := SerializeVector([]float32{1, -0.5, 0})
	want := "[1,-0.5,0]"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
