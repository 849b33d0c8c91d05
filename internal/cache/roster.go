package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/acmclub/ojrank/internal/logger"
	"github.com/acmclub/ojrank/internal/models"
)

const rosterKey = "leaderboard:snapshot"

// RosterCache keeps the latest snapshot serialized in Redis so the query
// layer does not hit the store on every request. All failures degrade to a
// cache miss; the store stays the source of truth.
type RosterCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewRosterCache(redisClient *RedisClient, ttl time.Duration, log *logger.Logger) *RosterCache {
	return &RosterCache{
		client: redisClient.GetClient(),
		ttl:    ttl,
		logger: log.With("component", "RosterCache"),
	}
}

// Get returns the cached snapshot, or nil on a miss.
func (c *RosterCache) Get(ctx context.Context) *models.Snapshot {
	data, err := c.client.Get(ctx, rosterKey).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		c.logger.Warn("Roster cache read failed", "error", err)
		return nil
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		c.logger.Warn("Roster cache holds an unreadable snapshot", "error", err)
		return nil
	}

	return &snapshot
}

func (c *RosterCache) Set(ctx context.Context, snapshot *models.Snapshot) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		c.logger.Warn("Failed to encode snapshot for cache", "error", err)
		return
	}

	if err := c.client.Set(ctx, rosterKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Roster cache write failed", "error", err)
	}
}

// Invalidate drops the cached snapshot after the pipeline persists a new
// one.
func (c *RosterCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, rosterKey).Err(); err != nil {
		c.logger.Warn("Roster cache invalidation failed", "error", err)
	}
}
