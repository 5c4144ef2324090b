package riverjob

import (
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/corpusdb/retrievalcore/embedding"
	"github.com/corpusdb/retrievalcore/pg"
)

// NewClient builds a river.Client wired with EmbedBatchWorker, using pool
// both as the River driver's connection and as the Executor the worker
// writes embeddings through.
func NewClient(pool *pgxpool.Pool, gateway *embedding.Gateway) (*river.Client[pgx.Tx], error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, &EmbedBatchWorker{Exec: pg.Executor(pool), Gateway: gateway})

	return river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 4},
		},
		Workers: workers,
	})
}

// PeriodicEmbedBatch schedules EmbedBatchArgs to run on a fixed interval,
// for hosts that prefer a single recurring job over a standalone
// worker.Run goroutine.
func PeriodicEmbedBatch(every time.Duration, limit int) *river.PeriodicJob {
	return river.NewPeriodicJob(
		river.PeriodicInterval(every),
		func() (river.JobArgs, *river.InsertOpts) {
			return EmbedBatchArgs{Limit: limit}, nil
		},
		&river.PeriodicJobOpts{RunOnStart: true},
	)
}
