// Package embedding implements the Embedding Gateway (spec.md §4.4, C4): a
// batched, retrying façade over an external embedder, plus vector
// serialization for the store.
package embedding

import "context"

// Embedder is the opaque external collaborator contract spec.md §1 and §4.4
// describe as `embed_batch(texts[]) -> vector<f32,D>[]`. Implementations
// must return a vector for every input text, in order, and error out
// (rather than return partial results) if they cannot.
type Embedder interface {
	Model() string
	Dimensions() int
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
