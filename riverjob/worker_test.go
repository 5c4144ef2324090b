package riverjob

import (
	"context"
	"testing"

	"github.com/riverqueue/river"
)

func TestEmbedBatchArgs_Kind(t *testing.T) {
	var a EmbedBatchArgs
	if got := a.Kind(); got != "retrievalcore_embed_batch" {
		t.Errorf("unexpected Kind: %q", got)
	}
}

func TestEmbedBatchWorker_WorkIsNoopWithoutCollaborators(t *testing.T) {
	w := &EmbedBatchWorker{}
	if w.Exec != nil || w.Gateway != nil {
		t.Fatal("expected zero-value worker to have nil collaborators")
	}
	if err := w.Work(context.Background(), &river.Job[EmbedBatchArgs]{}); err != nil {
		t.Fatalf("expected Work without collaborators to return nil, got %v", err)
	}
}
