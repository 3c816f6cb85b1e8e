package jobs

import (
	"context"

	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/session"
	"github.com/vytor/wordflash/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool   *worker.Pool
	loader worker.DeckLoader
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, loader worker.DeckLoader) JobQueue {
	return &WorkerQueue{pool: pool, loader: loader}
}

func (q *WorkerQueue) EnqueueLoad(s *session.Session, ds models.Dataset) error {
	return q.pool.Submit(&worker.LoadDeckJob{
		Loader:  q.loader,
		Session: s,
		Dataset: ds,
	})
}

// InlineQueue runs each load on the calling goroutine. It is meant for tests
// and one-shot tools where a pool is overkill.
type InlineQueue struct {
	Loader worker.DeckLoader
	Ctx    context.Context
}

func (q *InlineQueue) EnqueueLoad(s *session.Session, ds models.Dataset) error {
	ctx := q.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.NewContext(ctx, logger.Default().WithPrefix("inline-queue"))
	job := &worker.LoadDeckJob{Loader: q.Loader, Session: s, Dataset: ds}
	// The outcome is recorded on the session; EnqueueLoad only reports
	// failures to enqueue.
	_ = job.Run(ctx)
	return nil
}
