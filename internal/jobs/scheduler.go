// Package jobs runs the periodic background work: message
// classification and summary task processing.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type job struct {
	name     string
	interval time.Duration
	run      func(context.Context)
}

// Scheduler drives registered jobs on fixed intervals, one goroutine
// per job. Within a job, ticks serialize: a tick that outruns its
// interval delays the next one rather than overlapping it. Nothing
// coordinates across processes, so running two schedulers against the
// same database can double-process summary tasks.
type Scheduler struct {
	logger *slog.Logger
	jobs   []job
	wg     sync.WaitGroup
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

func (s *Scheduler) Add(name string, interval time.Duration, run func(context.Context)) {
	s.jobs = append(s.jobs, job{name: name, interval: interval, run: run})
}

// Start launches every registered job. Each runs an immediate first
// tick, then on its interval until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	for _, j := range s.jobs {
		s.wg.Add(1)
		go func(j job) {
			defer s.wg.Done()
			s.logger.Info("job started", "job", j.name, "interval", j.interval)

			j.run(ctx)

			ticker := time.NewTicker(j.interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					s.logger.Info("job stopped", "job", j.name)
					return
				case <-ticker.C:
					j.run(ctx)
				}
			}
		}(j)
	}
}

// Wait blocks until all jobs have observed cancellation and returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
