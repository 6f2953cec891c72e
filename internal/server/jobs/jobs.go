// Package jobs runs periodic server maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/postplanner/internal/logging"
	"github.com/robfig/cron/v3"
)

// Job is one unit of periodic work.
type Job func(ctx context.Context) error

type entry struct {
	name string
	spec string
	job  Job
}

// Scheduler runs registered jobs until its context ends.
type Scheduler struct {
	logger  logging.Logger
	entries []entry
}

func NewScheduler(logger logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Scheduler{logger: logger.With("module", "jobs")}
}

// Add registers job under a standard cron spec or descriptor such as
// "@hourly". The spec is validated immediately.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("job %s: invalid schedule %q: %w", name, spec, err)
	}
	s.entries = append(s.entries, entry{name: name, spec: spec, job: job})
	return nil
}

// Run starts the cron loop and blocks until ctx is cancelled and running
// jobs have finished.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New()
	for _, e := range s.entries {
		if _, err := c.AddFunc(e.spec, func() { s.runJob(ctx, e) }); err != nil {
			return fmt.Errorf("job %s: %w", e.name, err)
		}
		s.logger.Info(ctx, "job scheduled", "job", e.name, "schedule", e.spec)
	}

	c.Start()
	<-ctx.Done()

	s.logger.Info(ctx, "Stopping job scheduler...")
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) runJob(ctx context.Context, e entry) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := e.job(ctx); err != nil {
		s.logger.Error(ctx, "job failed", "job", e.name, "error", err)
		return
	}
	s.logger.Debug(ctx, "job finished", "job", e.name, "duration", time.Since(start))
}
