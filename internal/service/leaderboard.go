package service

import (
	"context"
	"sort"
	"strings"

	"github.com/acmclub/ojrank/internal/apperrors"
	"github.com/acmclub/ojrank/internal/cache"
	"github.com/acmclub/ojrank/internal/logger"
	"github.com/acmclub/ojrank/internal/models"
	"github.com/acmclub/ojrank/internal/store"
)

const (
	SortByScore    = "score"
	SortByProgress = "progress"

	DefaultPageSize = 10
	MaxPageSize     = 100
)

type ListQuery struct {
	Page     int
	PageSize int
	SortBy   string
	Search   string
}

type ListResult struct {
	Data       []*models.UserRecord `json:"data"`
	TotalCount int                  `json:"totalCount"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
}

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, query ListQuery) (*ListResult, error)
	GetUser(ctx context.Context, id string) (*models.UserRecord, error)
}

type leaderboardService struct {
	store       store.SnapshotStore
	rosterCache *cache.RosterCache
	logger      *logger.Logger
}

// NewLeaderboardService serves read queries over the persisted roster. The
// roster cache is optional; pass nil to read the store directly.
func NewLeaderboardService(
	snapshotStore store.SnapshotStore,
	rosterCache *cache.RosterCache,
	logger *logger.Logger,
) LeaderboardService {
	return &leaderboardService{
		store:       snapshotStore,
		rosterCache: rosterCache,
		logger:      logger,
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, query ListQuery) (*ListResult, error) {
	query = normalizeQuery(query)
	if query.SortBy != SortByScore && query.SortBy != SortByProgress {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "sortBy must be score or progress")
	}

	snapshot, err := s.loadSnapshot(ctx)
	if err != nil {
		s.logger.Error("Failed to load roster for listing", "error", err)
		return nil, err
	}

	users := filterUsers(snapshot.Users, query.Search)

	if query.SortBy == SortByProgress {
		sort.SliceStable(users, func(i, j int) bool {
			return users[i].Progress > users[j].Progress
		})
	}
	// The persisted roster is already ordered by score descending.

	total := len(users)
	totalPages := (total + query.PageSize - 1) / query.PageSize

	start := (query.Page - 1) * query.PageSize
	if start > total {
		start = total
	}
	end := start + query.PageSize
	if end > total {
		end = total
	}

	return &ListResult{
		Data:       users[start:end],
		TotalCount: total,
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *leaderboardService) GetUser(ctx context.Context, id string) (*models.UserRecord, error) {
	snapshot, err := s.loadSnapshot(ctx)
	if err != nil {
		s.logger.Error("Failed to load roster for user lookup", "error", err, "user_id", id)
		return nil, err
	}

	user := snapshot.FindUser(id)
	if user == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
	}

	return user, nil
}

// loadSnapshot reads through the roster cache when one is wired in.
func (s *leaderboardService) loadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	if s.rosterCache != nil {
		if snapshot := s.rosterCache.Get(ctx); snapshot != nil {
			return snapshot, nil
		}
	}

	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	if s.rosterCache != nil {
		s.rosterCache.Set(ctx, snapshot)
	}

	return snapshot, nil
}

func normalizeQuery(query ListQuery) ListQuery {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = DefaultPageSize
	}
	if query.PageSize > MaxPageSize {
		query.PageSize = MaxPageSize
	}
	if query.SortBy == "" {
		query.SortBy = SortByScore
	}
	return query
}

// filterUsers applies the substring search over id and display name. It
// always copies so sorting never reorders the snapshot itself.
func filterUsers(users []*models.UserRecord, search string) []*models.UserRecord {
	filtered := make([]*models.UserRecord, 0, len(users))

	if search == "" {
		filtered = append(filtered, users...)
		return filtered
	}

	needle := strings.ToLower(search)
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), needle) || strings.Contains(u.ID, search) {
			filtered = append(filtered, u)
		}
	}

	return filtered
}
