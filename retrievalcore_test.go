package retrievalcore

import (
	"context"
	"testing"
)

func TestNew_RejectsNilPool(t *testing.T) {
	_, err := New(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected error for nil pool")
	}
}
