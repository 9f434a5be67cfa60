package sim

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BlockSavvy/jetstream-sub001/engine/semantic"
	"github.com/BlockSavvy/jetstream-sub001/pkg/fn"
	"github.com/BlockSavvy/jetstream-sub001/pkg/resilience"
)

// Encoder abstracts the embedding client for the index worker.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// ErrQueueFull is returned when the in-process queue cannot take another job.
var ErrQueueFull = errors.New("index queue full")

// Worker consumes index jobs from an in-process queue and writes vectors.
// Job failures are logged and swallowed; the queue keeps draining. Writes are
// throttled so a burst of simulation runs cannot saturate the vector store.
type Worker struct {
	jobs   chan IndexJob
	index  fn.Stage[IndexJob, struct{}]
	logger *slog.Logger
	retry  fn.RetryOpts
}

// NewWorker creates a Worker with a bounded queue.
func NewWorker(enc Encoder, store semantic.Store, queueSize int, logger *slog.Logger) *Worker {
	if queueSize <= 0 {
		queueSize = 64
	}
	if logger == nil {
		logger = slog.Default()
	}

	stage := fn.TracedStage("sim.index", func(ctx context.Context, job IndexJob) fn.Result[struct{}] {
		vector, err := enc.Encode(ctx, job.Text)
		if err != nil {
			return fn.Err[struct{}](err)
		}
		rec := semantic.Record{
			ID:     job.ID,
			Vector: vector,
			Meta:   map[string]string{"id": job.ID},
		}
		if err := store.Upsert(ctx, job.Namespace, rec); err != nil {
			return fn.Err[struct{}](err)
		}
		return fn.Ok(struct{}{})
	})
	limiter := resilience.NewLimiter(resilience.LimiterOpts{Rate: 50, Burst: 10})

	return &Worker{
		jobs:   make(chan IndexJob, queueSize),
		index:  resilience.LimiterStageWait(limiter, stage),
		logger: logger,
		retry: fn.RetryOpts{
			MaxAttempts: 3,
			InitialWait: 200 * time.Millisecond,
			MaxWait:     2 * time.Second,
			Jitter:      true,
		},
	}
}

// Dispatch enqueues a job without blocking. A full queue drops the job.
func (w *Worker) Dispatch(_ context.Context, job IndexJob) error {
	select {
	case w.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run drains the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.jobs:
			w.process(ctx, job)
		}
	}
}

// process indexes one job, retrying transient failures. Nothing propagates.
func (w *Worker) process(ctx context.Context, job IndexJob) {
	result := fn.Retry(ctx, w.retry, func(ctx context.Context) fn.Result[struct{}] {
		return w.index(ctx, job)
	})
	if _, err := result.Unwrap(); err != nil {
		w.logger.Warn("index job failed", "namespace", job.Namespace, "id", job.ID, "error", err)
		return
	}
	w.logger.Debug("index job done", "namespace", job.Namespace, "id", job.ID)
}

// Pending reports how many jobs are queued.
func (w *Worker) Pending() int { return len(w.jobs) }
