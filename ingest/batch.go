package ingest

import "context"

// BatchItem is one source document for BatchUpdate.
type BatchItem struct {
	Source  string
	Options Options
}

// BatchResult reports per-item outcomes without aborting the batch, per
// spec.md §4.7's "Batch ingestion" note.
type BatchResult struct {
	Success int
	Failed  int
	Errors  []BatchError
}

// BatchError names which source in a BatchUpdate call failed and why.
type BatchError struct {
	Source string
	Err    error
}

func (e BatchError) Error() string { return e.Source + ": " + e.Err.Error() }

// BatchUpdate ingests each item independently; one item's failure does not
// abort the rest of the batch.
func (p *Pipeline) BatchUpdate(ctx context.Context, items []BatchItem) BatchResult {
	var out BatchResult
	for _, item := range items {
		if _, err := p.Ingest(ctx, item.Source, item.Options); err != nil {
			out.Failed++
			out.Errors = append(out.Errors, BatchError{Source: item.Source, Err: err})
			continue
		}
		out.Success++
	}
	return out
}
