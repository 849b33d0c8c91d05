package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/acmclub/ojrank/internal/apperrors"
	"github.com/acmclub/ojrank/internal/cache"
	"github.com/acmclub/ojrank/internal/contest"
	"github.com/acmclub/ojrank/internal/events"
	"github.com/acmclub/ojrank/internal/logger"
	"github.com/acmclub/ojrank/internal/scoring"
	"github.com/acmclub/ojrank/internal/source"
	"github.com/acmclub/ojrank/internal/store"
)

type AggregationService interface {
	// RunForDate executes the full pipeline for one calendar day: resolve
	// the contest id, fetch results, score, evaluate streaks, rank and
	// persist. Re-running an already-processed day is a no-op.
	RunForDate(ctx context.Context, t time.Time) error
	RunToday(ctx context.Context) error

	// DeleteUser removes a participant from the roster and re-ranks it.
	// Administrative only; the aggregation pipeline itself never deletes.
	DeleteUser(ctx context.Context, id string) error
}

type aggregationService struct {
	store       store.SnapshotStore
	source      source.ResultSource
	calendar    *contest.Calendar
	rosterCache *cache.RosterCache
	publisher   *events.EventPublisher
	problems    []string
	logger      *logger.Logger

	// mu makes every read-modify-write cycle over the roster single-flight;
	// readers meanwhile see either the previous or the fully saved snapshot.
	mu sync.Mutex
}

// NewAggregationService wires the daily pipeline. rosterCache and publisher
// are optional.
func NewAggregationService(
	snapshotStore store.SnapshotStore,
	resultSource source.ResultSource,
	calendar *contest.Calendar,
	rosterCache *cache.RosterCache,
	publisher *events.EventPublisher,
	problems []string,
	logger *logger.Logger,
) AggregationService {
	return &aggregationService{
		store:       snapshotStore,
		source:      resultSource,
		calendar:    calendar,
		rosterCache: rosterCache,
		publisher:   publisher,
		problems:    problems,
		logger:      logger,
	}
}

func (s *aggregationService) RunToday(ctx context.Context) error {
	return s.RunForDate(ctx, time.Now())
}

func (s *aggregationService) RunForDate(ctx context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := t.In(s.calendar.Location()).Format("2006-01-02")
	runID := uuid.New().String()
	log := s.logger.With("run_id", runID, "day", day)

	contestID, err := s.calendar.ContestIDForDate(t)
	if err != nil {
		log.Warn("No contest scheduled for day", "error", err)
		return err
	}
	log = log.With("contest_id", contestID)

	snapshot, err := s.store.Load(ctx)
	if err != nil {
		log.Error("Failed to load snapshot", "error", err)
		return err
	}

	if snapshot.HasProcessedDay(day) {
		log.Info("Day already processed, skipping")
		return nil
	}

	// Fetch before touching the roster: a failed or partial fetch must
	// leave the persisted state exactly as it was.
	results, err := s.source.Fetch(ctx, contestID)
	if err != nil {
		log.Error("Contest result fetch failed, aborting day", "error", err)
		return err
	}
	log.Info("Fetched contest results", "participants", len(results))

	merged, skipped := scoring.MergeDay(snapshot, results, s.problems)
	if skipped > 0 {
		log.Warn("Skipped malformed result rows", "skipped", skipped)
	}

	scoring.EvaluateStreaks(snapshot.Users)
	scoring.AssignRanks(snapshot.Users)

	now := time.Now().UTC()
	for _, u := range snapshot.Users {
		u.LastUpdated = now
	}
	snapshot.UpdatedAt = now
	snapshot.MarkProcessed(day)

	if err := s.store.Save(ctx, snapshot); err != nil {
		log.Error("Failed to save snapshot, day's aggregation lost", "error", err)
		return err
	}

	if s.rosterCache != nil {
		s.rosterCache.Invalidate(ctx)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishDayProcessed(ctx, runID, day, contestID, len(snapshot.Users)); err != nil {
			// The day is already persisted; a lost event is not worth a retry
			// of the whole pipeline.
			log.Warn("Day processed event not published", "error", err)
		}
	}

	log.Info("Day aggregated", "merged", merged, "roster_size", len(snapshot.Users))
	return nil
}

func (s *aggregationService) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i, u := range snapshot.Users {
		if u.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperrors.New(apperrors.CodeNotFound, "user not found")
	}

	snapshot.Users = append(snapshot.Users[:idx], snapshot.Users[idx+1:]...)
	scoring.AssignRanks(snapshot.Users)
	snapshot.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, snapshot); err != nil {
		return err
	}

	if s.rosterCache != nil {
		s.rosterCache.Invalidate(ctx)
	}

	s.logger.Info("User deleted from roster", "user_id", id)
	return nil
}
