package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Runner is the slice of the research service the scheduler needs: one
// research cycle with the configured default parameters.
type Runner interface {
	RunScheduled(ctx context.Context) error
}

// Service triggers research runs on the configured cadence.
type Service struct {
	schedule string
	runner   Runner
	cron     *cron.Cron
	log      *logrus.Entry
}

// NewService creates a scheduler for the given cadence ("daily" or "weekly").
func NewService(schedule string, runner Runner, log *logrus.Entry) *Service {
	return &Service{
		schedule: schedule,
		runner:   runner,
		cron:     cron.New(cron.WithSeconds()),
		log:      log,
	}
}

// Start registers the cron entry and begins scheduling.
func (s *Service) Start() error {
	var expression string

	switch s.schedule {
	case "daily":
		// Every day at 9 AM UTC
		expression = "0 0 9 * * *"
	case "weekly":
		// Monday at 9 AM UTC
		expression = "0 0 9 * * MON"
	default:
		return fmt.Errorf("unknown schedule %q", s.schedule)
	}

	_, err := s.cron.AddFunc(expression, func() {
		s.log.Info("Starting scheduled research run")
		if err := s.runner.RunScheduled(context.Background()); err != nil {
			s.log.Errorf("Scheduled research run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Infof("Scheduler started with %s schedule", s.schedule)
	return nil
}

// Stop stops the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		s.log.Info("Scheduler stopped")
	}
}
