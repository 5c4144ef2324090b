// Package riverjob adapts the background embedding backfill loop
// (worker.RunOnce) into a River (github.com/riverqueue/river) job, for
// deployments that already run a River client/queue rather than a
// standalone polling loop.
package riverjob

import (
	"context"
	"time"

	"github.com/riverqueue/river"

	"github.com/corpusdb/retrievalcore/embedding"
	"github.com/corpusdb/retrievalcore/pg"
	"github.com/corpusdb/retrievalcore/worker"
)

// EmbedBatchArgs is the job payload for one embedding backfill pass.
// Limit <= 0 falls back to worker's own default batch size.
type EmbedBatchArgs struct {
	Limit int `json:"limit"`
}

// Kind satisfies river.JobArgs.
func (EmbedBatchArgs) Kind() string { return "retrievalcore_embed_batch" }

// EmbedBatchWorker drains sections missing an embedding, one job run at a
// time. Scheduling a recurring job of this kind (e.g. via River's periodic
// job support) replaces running worker.Run as a standalone goroutine.
type EmbedBatchWorker struct {
	river.WorkerDefaults[EmbedBatchArgs]

	Exec    pg.Executor
	Gateway *embedding.Gateway

	MaxConcurrentEmbeds  int
	MaxRequestsPerSecond float64
}

func (w *EmbedBatchWorker) Work(ctx context.Context, job *river.Job[EmbedBatchArgs]) error {
	if w.Exec == nil || w.Gateway == nil {
		return nil
	}

	opts := worker.Options{
		BatchSize:            job.Args.Limit,
		MaxConcurrentEmbeds:  w.MaxConcurrentEmbeds,
		MaxRequestsPerSecond: w.MaxRequestsPerSecond,
		BackoffBase:          5 * time.Second,
		BackoffMax:           2 * time.Minute,
	}
	return worker.RunOnce(ctx, w.Exec, w.Gateway, opts)
}
