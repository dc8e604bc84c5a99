package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/doccpub/internal/logfields"
)

// Scheduler wraps gocron for periodic rebuild triggers.
type Scheduler struct {
	scheduler gocron.Scheduler
	trigger   func(trigger string)
}

// NewScheduler creates a scheduler that fires trigger on each tick.
func NewScheduler(trigger func(trigger string)) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, trigger: trigger}, nil
}

// SchedulePeriodicPublish registers a publish every interval.
// Returns the job ID for later management.
func (s *Scheduler) SchedulePeriodicPublish(interval time.Duration) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.fire),
		gocron.WithName("periodic-publish"),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create periodic publish job: %w", err)
	}
	return job.ID().String(), nil
}

func (s *Scheduler) fire() {
	slog.Info("Executing scheduled publish", logfields.Trigger("schedule"))
	s.trigger("schedule")
}

// Start begins the scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}
