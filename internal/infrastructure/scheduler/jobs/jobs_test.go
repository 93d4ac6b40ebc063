package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/reward"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEST FAKES
// ══════════════════════════════════════════════════════════════════════════════

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
	clone := *p
	return &clone, nil
}

func (r *fakePlayerRepo) Create(_ context.Context, p *player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *p
	r.players[p.ID] = &clone
	return nil
}

func (r *fakePlayerRepo) Update(_ context.Context, p *player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[p.ID]; !ok {
		return player.ErrPlayerNotFound
	}
	clone := *p
	r.players[p.ID] = &clone
	return nil
}

func (r *fakePlayerRepo) ListCompetitors(_ context.Context) ([]*player.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*player.Player, 0, len(r.players))
	for _, p := range r.players {
		if p.CompetitionOptIn && p.ProfileComplete {
			clone := *p
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *fakePlayerRepo) GetByIDs(_ context.Context, ids []string) ([]*player.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*player.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.players[id]; ok {
			clone := *p
			result = append(result, &clone)
		}
	}
	return result, nil
}

type snapshotKey struct {
	period   leaderboard.PeriodType
	ageGroup player.AgeGroup
}

type fakeLeaderboardRepo struct {
	mu        sync.Mutex
	snapshots map[snapshotKey]*leaderboard.Snapshot
	replaces  int
}

func newFakeLeaderboardRepo() *fakeLeaderboardRepo {
	return &fakeLeaderboardRepo{snapshots: make(map[snapshotKey]*leaderboard.Snapshot)}
}

func (r *fakeLeaderboardRepo) ReplaceSnapshot(_ context.Context, s *leaderboard.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snapshotKey{s.Period, s.AgeGroup}] = s
	r.replaces++
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

type fakeCache struct {
	mu   sync.Mutex
	tops map[snapshotKey][]leaderboard.Entry
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{tops: make(map[snapshotKey][]leaderboard.Entry)}
}

func (c *fakeCache) GetCachedTop(_ context.Context, period leaderboard.PeriodType, ageGroup player.AgeGroup, limit int) ([]leaderboard.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, ok := c.tops[snapshotKey{period, ageGroup}]
	if !ok {
		return nil, nil
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (c *fakeCache) SetCachedTop(_ context.Context, period leaderboard.PeriodType, ageGroup player.AgeGroup, entries []leaderboard.Entry, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tops[snapshotKey{period, ageGroup}] = entries
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, period leaderboard.PeriodType, ageGroup player.AgeGroup) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tops, snapshotKey{period, ageGroup})
	return nil
}

type rankNotification struct {
	playerID string
	oldRank  leaderboard.Rank
	newRank  leaderboard.Rank
}

type fakeRankNotifier struct {
	mu    sync.Mutex
	sent  []rankNotification
	fail  bool
}

func (n *fakeRankNotifier) NotifyRankImproved(_ context.Context, playerID string, oldRank, newRank leaderboard.Rank) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return context.DeadlineExceeded
	}
	n.sent = append(n.sent, rankNotification{playerID, oldRank, newRank})
	return nil
}

type fakeRewardRepo struct {
	mu      sync.Mutex
	records map[string]*reward.Record
}

func newFakeRewardRepo() *fakeRewardRepo {
	return &fakeRewardRepo{records: make(map[string]*reward.Record)}
}

func (r *fakeRewardRepo) Upsert(_ context.Context, rec *reward.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Mirror the (competition_id, rank) uniqueness of the real store:
	// an existing record wins so re-distribution never resets a claim.
	for _, existing := range r.records {
		if existing.CompetitionID == rec.CompetitionID && existing.Rank == rec.Rank {
			return nil
		}
	}
	clone := *rec
	r.records[rec.ID] = &clone
	return nil
}

func (r *fakeRewardRepo) GetByID(_ context.Context, id string) (*reward.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, reward.ErrRewardNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *fakeRewardRepo) ListByPlayer(_ context.Context, playerID string, onlyUnclaimed bool) ([]*reward.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*reward.Record, 0)
	for _, rec := range r.records {
		if rec.PlayerID != playerID {
			continue
		}
		if onlyUnclaimed && rec.Claimed {
			continue
		}
		clone := *rec
		result = append(result, &clone)
	}
	return result, nil
}

func (r *fakeRewardRepo) Claim(_ context.Context, recordID, callerPlayerID string) (*reward.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[recordID]
	if !ok {
		return nil, reward.ErrRewardNotFound
	}
	if err := rec.Claim(callerPlayerID, time.Now()); err != nil {
		return nil, err
	}
	clone := *rec
	return &clone, nil
}

type rewardNotification struct {
	playerID string
	recordID string
}

type fakeRewardNotifier struct {
	mu   sync.Mutex
	sent []rewardNotification
}

func (n *fakeRewardNotifier) NotifyRewardGranted(_ context.Context, playerID string, rec *reward.Record) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, rewardNotification{playerID, rec.ID})
	return nil
}
