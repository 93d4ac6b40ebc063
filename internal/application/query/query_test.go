package query

import (
	"context"
	"sync"
	"time"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/reward"
)

type snapshotKey struct {
	period   leaderboard.PeriodType
	ageGroup player.AgeGroup
}

// fakeLeaderboardRepo is an in-memory leaderboard.Repository.
type fakeLeaderboardRepo struct {
	mu        sync.Mutex
	snapshots map[snapshotKey]*leaderboard.Snapshot
}

func newFakeLeaderboardRepo(snapshots ...*leaderboard.Snapshot) *fakeLeaderboardRepo {
	repo := &fakeLeaderboardRepo{snapshots: make(map[snapshotKey]*leaderboard.Snapshot)}
	for _, s := range snapshots {
		repo.snapshots[snapshotKey{s.Period, s.AgeGroup}] = s
	}
	return repo
}

func (r *fakeLeaderboardRepo) ReplaceSnapshot(_ context.Context, s *leaderboard.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snapshotKey{s.Period, s.AgeGroup}] = s
	return nil
}

func (r *fakeLeaderboardRepo) GetSnapshot(_ context.Context, period leaderboard.PeriodType, ageGroup player.AgeGroup) (*leaderboard.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.snapshots[snapshotKey{period, ageGroup}]
	if !ok {
		return nil, leaderboard.ErrSnapshotNotFound
	}
	return s, nil
}

// fakeCache is an in-memory leaderboard.Cache without TTL expiry.
type fakeCache struct {
	mu      sync.Mutex
	entries map[snapshotKey][]leaderboard.Entry
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[snapshotKey][]leaderboard.Entry)}
}

func (c *fakeCache) GetCachedTop(_ context.Context, period leaderboard.PeriodType, ageGroup player.AgeGroup, limit int) ([]leaderboard.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.entries[snapshotKey{period, ageGroup}]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (c *fakeCache) SetCachedTop(_ context.Context, period leaderboard.PeriodType, ageGroup player.AgeGroup, entries []leaderboard.Entry, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[snapshotKey{period, ageGroup}] = entries
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, period leaderboard.PeriodType, ageGroup player.AgeGroup) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, snapshotKey{period, ageGroup})
	return nil
}

// fakePlayerRepo is an in-memory player.Repository.
type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[string]*player.Player
}

func newFakePlayerRepo(players ...*player.Player) *fakePlayerRepo {
	repo := &fakePlayerRepo{players: make(map[string]*player.Player)}
	for _, p := range players {
		repo.players[p.ID] = p
	}
	return repo
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id string) (*player.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, player.ErrPlayerNotFound
	}
	return p, nil
}

func (r *fakePlayerRepo) Create(_ context.Context, p *player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[p.ID] = p
	return nil
}

func (r *fakePlayerRepo) Update(_ context.Context, p *player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[p.ID] = p
	return nil
}

func (r *fakePlayerRepo) ListCompetitors(_ context.Context) ([]*player.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*player.Player
	for _, p := range r.players {
		if p.IsRankable() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) GetByIDs(_ context.Context, ids []string) ([]*player.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*player.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.players[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeRewardRepo is an in-memory reward.Repository for list queries.
type fakeRewardRepo struct {
	mu      sync.Mutex
	records []*reward.Record
}

func (r *fakeRewardRepo) Upsert(_ context.Context, rec *reward.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeRewardRepo) GetByID(_ context.Context, id string) (*reward.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, reward.ErrRewardNotFound
}

func (r *fakeRewardRepo) ListByPlayer(_ context.Context, playerID string, onlyUnclaimed bool) ([]*reward.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*reward.Record
	for _, rec := range r.records {
		if rec.PlayerID != playerID {
			continue
		}
		if onlyUnclaimed && rec.Claimed {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *fakeRewardRepo) Claim(_ context.Context, recordID, callerPlayerID string) (*reward.Record, error) {
	rec, err := r.GetByID(context.Background(), recordID)
	if err != nil {
		return nil, err
	}
	if err := rec.Claim(callerPlayerID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return rec, nil
}

// testSnapshot builds a daily global snapshot with descending scores.
func testSnapshot(period leaderboard.PeriodType, ageGroup player.AgeGroup, participants ...leaderboard.Participant) *leaderboard.Snapshot {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	entries := leaderboard.RankCohort(participants)
	return leaderboard.NewSnapshot("snap-test", period, ageGroup, entries,
		now.Truncate(24*time.Hour), now.Truncate(24*time.Hour).AddDate(0, 0, 1), now)
}
