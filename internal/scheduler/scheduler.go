// Package scheduler runs the periodic cache flush.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/daybook/internal/logfields"
	"git.home.luguber.info/inful/daybook/internal/metrics"
)

// FlushJobName names the recurring cache reset job.
const FlushJobName = "cache-flush"

// Flusher empties a cache.
type Flusher interface {
	Flush(reason metrics.FlushReason)
}

// Scheduler wraps gocron scheduler for managing periodic tasks.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(logger *slog.Logger, opts ...gocron.SchedulerOption) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, logger: logger}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start(_ context.Context) {
	s.logger.Info("Starting scheduler", slog.Int("jobs", len(s.scheduler.Jobs())))
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop(_ context.Context) error {
	s.logger.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleEvery runs task every interval, first run one interval from now.
// Returns the job ID for later management.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, task func()) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("interval must be positive, got %s", interval)
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create %s job: %w", name, err)
	}
	return job.ID().String(), nil
}

// ScheduleFlush empties target every interval, whatever its size or activity.
func (s *Scheduler) ScheduleFlush(target Flusher, interval time.Duration) (string, error) {
	id, err := s.ScheduleEvery(FlushJobName, interval, func() {
		s.logger.Debug("Executing scheduled flush", logfields.JobName(FlushJobName))
		target.Flush(metrics.FlushScheduled)
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("Scheduled cache flush", logfields.JobID(id),
		logfields.JobName(FlushJobName), slog.Duration("interval", interval))
	return id, nil
}

// NextRun reports when the named job fires next.
func (s *Scheduler) NextRun(name string) (time.Time, bool) {
	for _, j := range s.scheduler.Jobs() {
		if j.Name() != name {
			continue
		}
		next, err := j.NextRun()
		if err != nil {
			return time.Time{}, false
		}
		return next, true
	}
	return time.Time{}, false
}
