package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/acmclub/ojrank/internal/logger"
	"github.com/acmclub/ojrank/internal/service"
)

// Scheduler fires the aggregation pipeline once per day at a fixed local
// wall-clock time.
type Scheduler struct {
	aggregation service.AggregationService
	runAt       string
	location    *time.Location
	logger      *logger.Logger
	stopChan    chan struct{}
}

func NewScheduler(
	aggregation service.AggregationService,
	runAt string,
	location *time.Location,
	log *logger.Logger,
) (*Scheduler, error) {
	if _, err := time.Parse("15:04", runAt); err != nil {
		return nil, fmt.Errorf("invalid runAt time %q: %w", runAt, err)
	}

	return &Scheduler{
		aggregation: aggregation,
		runAt:       runAt,
		location:    location,
		logger:      log.With("component", "Scheduler"),
		stopChan:    make(chan struct{}),
	}, nil
}

// Start blocks until Stop is called; run it on its own goroutine.
func (s *Scheduler) Start() {
	next := s.nextFireTime(time.Now())
	s.logger.Info("Next aggregation scheduled",
		"at", next.Format("2006-01-02 15:04:05 MST"),
		"in", time.Until(next).Round(time.Second).String(),
	)

	timer := time.NewTimer(time.Until(next))

	for {
		select {
		case <-timer.C:
			ctx := context.Background()
			if err := s.aggregation.RunToday(ctx); err != nil {
				// Left for the next scheduled run or a manual trigger.
				s.logger.Error("Daily aggregation failed", "error", err)
			}

			timer.Reset(24 * time.Hour)

		case <-s.stopChan:
			timer.Stop()
			s.logger.Info("Scheduler stopped")
			return
		}
	}
}

func (s *Scheduler) Stop() {
	close(s.stopChan)
}

// nextFireTime returns the next occurrence of the configured wall-clock
// time, today or tomorrow.
func (s *Scheduler) nextFireTime(now time.Time) time.Time {
	runAt, _ := time.Parse("15:04", s.runAt)

	local := now.In(s.location)
	next := time.Date(local.Year(), local.Month(), local.Day(),
		runAt.Hour(), runAt.Minute(), 0, 0, s.location)

	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}

	return next
}
