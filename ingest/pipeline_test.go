package ingest

import (
	"context"
	"errors"
	"testing"
)

func TestOptions_GenerateEmbeddingsDefaultsTrue(t *testing.T) {
	o := Options{}
	if !o.generateEmbeddings() {
		t.Error("expected GenerateEmbeddings to default to true per spec.md §4.7")
	}
}

func TestOptions_GenerateEmbeddingsExplicitFalse(t *testing.T) {
	f := false
	o := Options{GenerateEmbeddings: &f}
	if o.generateEmbeddings() {
		t.Error("expected explicit false to be honored")
	}
}

func TestOptions_GenerateEmbeddingsExplicitTrue(t *testing.T) {
	tr := true
	o := Options{GenerateEmbeddings: &tr}
	if !o.generateEmbeddings() {
		t.Error("expected explicit true to be honored")
	}
}

func TestIngest_RejectsEmptySource(t *testing.T) {
	p := &Pipeline{Convert: func(ctx context.Context, source string) (ConvertedDocument, error) {
		return ConvertedDocument{}, nil
	}}
	_, err := p.Ingest(context.Background(), "  ", Options{})
	var argErr *ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("expected *ArgumentError for empty source, got %T: %v", err, err)
	}
}

func TestIngest_RejectsMissingConverter(t *testing.T) {
	p := &Pipeline{}
	_, err := p.Ingest(context.Background(), "https://example.com/doc", Options{})
	var argErr *ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("expected *ArgumentError for missing converter, got %T: %v", err, err)
	}
}

func TestIngest_WrapsConverterFailure(t *testing.T) {
	p := &Pipeline{Convert: func(ctx context.Context, source string) (ConvertedDocument, error) {
		return ConvertedDocument{}, errors.New("network unreachable")
	}}
	_, err := p.Ingest(context.Background(), "https://example.com/doc", Options{})
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T: %v", err, err)
	}
}

func TestBatchUpdate_CollectsIndividualFailuresWithoutAborting(t *testing.T) {
	calls := 0
	p := &Pipeline{Convert: func(ctx context.Context, source string) (ConvertedDocument, error) {
		calls++
		return ConvertedDocument{}, errors.New("boom")
	}}
	items := []BatchItem{
		{Source: "https://a"},
		{Source: "https://b"},
		{Source: "https://c"},
	}
	result := p.BatchUpdate(context.Background(), items)
	if calls != 3 {
		t.Errorf("expected all 3 items attempted, converter called %d times", calls)
	}
	if result.Failed != 3 || result.Success != 0 {
		t.Errorf("expected 3 failures and 0 successes, got %+v", result)
	}
	if len(result.Errors) != 3 {
		t.Errorf("expected 3 collected errors, got %d", len(result.Errors))
	}
}

func TestBatchError_Message(t *testing.T) {
	be := BatchError{Source: "https://x", Err: errors.New("oops")}
	if be.Error() != "https://x: oops" {
		t.Errorf("unexpected BatchError message: %q", be.Error())
	}
}
