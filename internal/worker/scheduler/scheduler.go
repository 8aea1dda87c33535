package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a unit of work the scheduler triggers on an interval. Run must
// contain its own failures; the error return is reserved for runs that
// could not record their outcome at all.
type Job interface {
	Name() string
	Enabled() bool
	Run(ctx context.Context) error
}

type entry struct {
	job      Job
	interval time.Duration
}

// Worker triggers registered jobs on their own tickers. Each job gets
// its own goroutine, so a slow run never delays another job's cadence.
type Worker struct {
	entries []entry
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewWorker creates a new scheduler worker.
func NewWorker() *Worker {
	return &Worker{
		stopCh: make(chan struct{}),
	}
}

// Register adds a job with its trigger interval.
func (w *Worker) Register(job Job, interval time.Duration) {
	w.entries = append(w.entries, entry{job: job, interval: interval})
}

// Start launches one trigger loop per enabled job.
func (w *Worker) Start(ctx context.Context) {
	for _, e := range w.entries {
		if !e.job.Enabled() {
			slog.Info("job disabled, skipping", "job", e.job.Name())

			continue
		}

		w.wg.Add(1)
		go w.runLoop(ctx, e)
	}
}

// Stop stops all trigger loops and waits for them to exit.
func (w *Worker) Stop() {
	close(w.stopCh)
	w.wg.Wait()
}

func (w *Worker) runLoop(ctx context.Context, e entry) {
	defer w.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	slog.Info("job scheduled", "job", e.job.Name(), "interval", e.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("job trigger shutting down", "job", e.job.Name())

			return
		case <-w.stopCh:
			slog.Info("job trigger stopped", "job", e.job.Name())

			return
		case <-ticker.C:
			if err := e.job.Run(ctx); err != nil {
				slog.Error("job run could not record its outcome", "job", e.job.Name(), "error", err)
			}
		}
	}
}
