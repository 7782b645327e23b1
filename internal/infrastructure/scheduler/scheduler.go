package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

// Snapshotter refreshes today's statistics.
type Snapshotter interface {
	Snapshot(ctx context.Context) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Snapshotter
	logger    logrus.FieldLogger
	timeout   time.Duration
}

// New creates a new scheduler instance
func New(target Snapshotter, logger *logrus.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		target:    target,
		logger:    logger.WithField("component", "scheduler"),
		timeout:   30 * time.Second,
	}
}

// Start schedules the snapshot job on a cron expression and begins running
// it in the background.
func (s *Scheduler) Start(cronExpr string) error {
	if _, err := s.scheduler.Cron(cronExpr).Do(s.snapshot); err != nil {
		return fmt.Errorf("schedule snapshot %q: %w", cronExpr, err)
	}
	s.scheduler.StartAsync()
	s.logger.WithField("cron", cronExpr).Info("snapshot job scheduled")
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) snapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	start := time.Now()
	if err := s.target.Snapshot(ctx); err != nil {
		s.logger.WithError(err).Error("statistics snapshot failed")
		return
	}
	s.logger.WithField("duration", time.Since(start)).Debug("statistics snapshot stored")
}
