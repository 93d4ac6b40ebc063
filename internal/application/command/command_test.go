package command

import (
	"context"
	"sync"
	"time"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/reward"
)

// fakePlayerRepo is an in-memory player.Repository for handler tests.
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
	out := make([]*player.Player, 0, len(r.players))
	for _, p := range r.players {
		if p.IsRankable() {
			clone := *p
			out = append(out, &clone)
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
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

// fakeRewardRepo is an in-memory reward.Repository. Claim credits are
// tracked in credited so tests can assert the payout went through.
type fakeRewardRepo struct {
	mu       sync.Mutex
	records  map[string]*reward.Record
	credited map[string]reward.Payout
}

func newFakeRewardRepo(records ...*reward.Record) *fakeRewardRepo {
	repo := &fakeRewardRepo{
		records:  make(map[string]*reward.Record),
		credited: make(map[string]reward.Payout),
	}
	for _, rec := range records {
		repo.records[rec.ID] = rec
	}
	return repo
}

func (r *fakeRewardRepo) Upsert(_ context.Context, rec *reward.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = rec
	return nil
}

func (r *fakeRewardRepo) GetByID(_ context.Context, id string) (*reward.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, reward.ErrRewardNotFound
	}
	return rec, nil
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
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[recordID]
	if !ok {
		return nil, reward.ErrRewardNotFound
	}
	if err := rec.Claim(callerPlayerID, time.Now().UTC()); err != nil {
		return nil, err
	}
	total := r.credited[callerPlayerID]
	total.Diamonds += rec.Payout.Diamonds
	total.Emeralds += rec.Payout.Emeralds
	total.XP += rec.Payout.XP
	r.credited[callerPlayerID] = total
	return rec, nil
}
