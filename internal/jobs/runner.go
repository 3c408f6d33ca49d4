// Package jobs runs periodic maintenance tasks.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/instaclone/backend/pkg/logger"
)

const defaultInterval = time.Hour

// Task is one unit of periodic work.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Runner runs a Task on a fixed interval until stopped or ctx is cancelled.
type Runner struct {
	task     Task
	interval time.Duration
	quit     chan struct{}
	stopOnce sync.Once
	doneCh   chan struct{}
}

func NewRunner(task Task, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Runner{
		task:     task,
		interval: interval,
		quit:     make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the runner in a background goroutine.
func (r *Runner) Start(ctx context.Context) {
	go r.run(ctx)
}

// Stop signals the runner to stop and returns immediately.
// Call Done() to wait for it to exit. Calling Stop more than once is safe.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

// Done returns a channel that is closed when the runner has fully stopped.
func (r *Runner) Done() <-chan struct{} {
	return r.doneCh
}

func (r *Runner) run(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = RunOnce(ctx, r.task)
		}
	}
}

// RunOnce runs task once and logs the outcome.
func RunOnce(ctx context.Context, task Task) error {
	l := logger.L().With().Str(logger.FieldJob, task.Name()).Logger()
	start := time.Now()
	if err := task.Run(logger.WithLogger(ctx, l)); err != nil {
		l.Error().Err(err).Msg("job failed")
		return err
	}
	l.Debug().Dur("took", time.Since(start)).Msg("job finished")
	return nil
}
