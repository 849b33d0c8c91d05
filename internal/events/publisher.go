// Package events publishes pipeline lifecycle events for downstream
// consumers (bots, dashboards). Publishing is best effort: a failed publish
// never rolls back a persisted day.
package events

import (
	"context"
	"time"

	"github.com/acmclub/ojrank/internal/logger"
	"github.com/acmclub/ojrank/internal/natsjetstream"
)

const (
	// Subjects
	DayProcessedSubject = "events.leaderboard.dayProcessed"
)

// DayProcessed is emitted after a contest day has been merged, ranked and
// persisted.
type DayProcessed struct {
	RunID     string    `json:"runId"`
	Date      string    `json:"date"`
	ContestID int       `json:"contestId"`
	Users     int       `json:"users"`
	Timestamp time.Time `json:"timestamp"`
}

type EventPublisher struct {
	publisher *natsjetstream.Publisher
	logger    *logger.Logger
}

func NewEventPublisher(client *natsjetstream.Client, log *logger.Logger) *EventPublisher {
	return &EventPublisher{
		publisher: natsjetstream.NewPublisher(client),
		logger:    log.With("component", "EventPublisher"),
	}
}

func (p *EventPublisher) PublishDayProcessed(ctx context.Context, runID, date string, contestID, users int) error {
	event := DayProcessed{
		RunID:     runID,
		Date:      date,
		ContestID: contestID,
		Users:     users,
		Timestamp: time.Now().UTC(),
	}

	if err := p.publisher.PublishJSON(ctx, DayProcessedSubject, event); err != nil {
		p.logger.Error("Failed to publish day processed event", "error", err, "run_id", runID)
		return err
	}

	p.logger.Info("Published day processed event", "run_id", runID, "contest_id", contestID)
	return nil
}
