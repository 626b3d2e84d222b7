// internal/app/system/workers/runner.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultJobTimeout = 30 * time.Second

// Job is a unit of periodic background work.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration // zero means 30s
	Run      func(ctx context.Context) error
}

// Runner drives a set of jobs, each on its own ticker.
type Runner struct {
	log    *zap.Logger
	jobs   []Job
	stopCh chan struct{}
	wg     sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a runner. Jobs with a non-positive interval or nil Run are ignored.
func New(logger *zap.Logger, jobs ...Job) *Runner {
	r := &Runner{log: logger, stopCh: make(chan struct{})}
	for _, j := range jobs {
		if j.Interval <= 0 || j.Run == nil {
			logger.Warn("skipping invalid job", zap.String("job", j.Name))
			continue
		}
		r.jobs = append(r.jobs, j)
	}
	return r
}

// Start launches one goroutine per job. Calling it again is a no-op.
func (r *Runner) Start() {
	r.startOnce.Do(func() {
		for _, j := range r.jobs {
			r.wg.Add(1)
			go r.loop(j)
			r.log.Info("background job started",
				zap.String("job", j.Name),
				zap.Duration("interval", j.Interval))
		}
	})
}

// Stop signals every job to stop and waits for in-flight runs to finish.
// Safe to call more than once.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		r.wg.Wait()
		r.log.Info("background jobs stopped", zap.Int("jobs", len(r.jobs)))
	})
}

func (r *Runner) loop(j Job) {
	defer r.wg.Done()

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.runOnce(j)
		}
	}
}

func (r *Runner) runOnce(j Job) {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("background job panicked", zap.String("job", j.Name), zap.Any("panic", p))
		}
	}()

	if err := j.Run(ctx); err != nil {
		r.log.Error("background job failed", zap.String("job", j.Name), zap.Error(err))
	}
}
