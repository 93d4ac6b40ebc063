package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// ══════════════════════════════════════════════════════════════════════════════

// keyLeaderboardTop is the key pattern for cached tops:
// "lb:top:{period}:{age_group}" ("lb:top:daily:global" for the global board).
const keyLeaderboardTop = "lb:top:%s:%s"

// LeaderboardCache implements leaderboard.Cache on Redis. The full top
// (up to leaderboard.MaxEntries) is stored as one JSON value per
// (period, age group) key; requests for a smaller limit slice it client
// side. A cache miss is not an error - callers fall through to PostgreSQL.
type LeaderboardCache struct {
	client *Client
}

// NewLeaderboardCache creates a new LeaderboardCache.
func NewLeaderboardCache(client *Client) *LeaderboardCache {
	return &LeaderboardCache{client: client}
}

func topKey(period leaderboard.PeriodType, ageGroup player.AgeGroup) string {
	group := string(ageGroup)
	if group == "" {
		group = "global"
	}
	return fmt.Sprintf(keyLeaderboardTop, period, group)
}

// GetCachedTop returns the cached top-N, or nil without error on a miss.
func (c *LeaderboardCache) GetCachedTop(ctx context.Context, period leaderboard.PeriodType, ageGroup player.AgeGroup, limit int) ([]leaderboard.Entry, error) {
	raw, err := c.client.rdb.Get(ctx, topKey(period, ageGroup)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leaderboard_cache: get failed: %w", err)
	}

	var entries []leaderboard.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		// Corrupt value: drop it and treat as a miss.
		_ = c.client.rdb.Del(ctx, topKey(period, ageGroup)).Err()
		return nil, nil
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// SetCachedTop stores the top with a TTL.
func (c *LeaderboardCache) SetCachedTop(ctx context.Context, period leaderboard.PeriodType, ageGroup player.AgeGroup, entries []leaderboard.Entry, ttl time.Duration) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}

	if err := c.client.rdb.Set(ctx, topKey(period, ageGroup), raw, ttl).Err(); err != nil {
		return fmt.Errorf("leaderboard_cache: set failed: %w", err)
	}
	return nil
}

// Invalidate drops the cached top for the (period, age group) key.
// Called by the aggregation job after replacing a snapshot.
func (c *LeaderboardCache) Invalidate(ctx context.Context, period leaderboard.PeriodType, ageGroup player.AgeGroup) error {
	if err := c.client.rdb.Del(ctx, topKey(period, ageGroup)).Err(); err != nil {
		return fmt.Errorf("leaderboard_cache: invalidate failed: %w", err)
	}
	return nil
}
