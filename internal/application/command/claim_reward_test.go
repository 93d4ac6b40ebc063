package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/reward"
)

func dailyFirstPlace(t *testing.T, recordID, playerID string) *reward.Record {
	t.Helper()

	payout, ok := reward.RewardFor(1, leaderboard.PeriodDaily)
	require.True(t, ok)

	periodStart := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	rec, err := reward.NewRecord(recordID, playerID, "snap-1", leaderboard.PeriodDaily, periodStart, 1, payout, periodStart)
	require.NoError(t, err)
	return rec
}

func TestClaimReward_Success(t *testing.T) {
	repo := newFakeRewardRepo(dailyFirstPlace(t, "r1", "p1"))
	handler := NewClaimRewardHandler(repo)

	result, err := handler.Handle(context.Background(), ClaimRewardCommand{
		RecordID: "r1",
		PlayerID: "p1",
	})

	require.NoError(t, err)
	assert.Equal(t, reward.Payout{Diamonds: 50, Emeralds: 25, XP: 200}, result.Payout)
	assert.Equal(t, result.Payout, repo.credited["p1"], "payout credited to player balances")
}

func TestClaimReward_WrongOwner(t *testing.T) {
	repo := newFakeRewardRepo(dailyFirstPlace(t, "r1", "p1"))
	handler := NewClaimRewardHandler(repo)

	_, err := handler.Handle(context.Background(), ClaimRewardCommand{
		RecordID: "r1",
		PlayerID: "intruder",
	})

	assert.ErrorIs(t, err, reward.ErrNotOwner)
	assert.Empty(t, repo.credited, "nothing credited on failed claim")
}

func TestClaimReward_DoubleClaim(t *testing.T) {
	repo := newFakeRewardRepo(dailyFirstPlace(t, "r1", "p1"))
	handler := NewClaimRewardHandler(repo)

	cmd := ClaimRewardCommand{RecordID: "r1", PlayerID: "p1"}

	_, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, reward.ErrAlreadyClaimed)

	credited := repo.credited["p1"]
	assert.Equal(t, 50, credited.Diamonds, "credited exactly once")
}

func TestClaimReward_NotFound(t *testing.T) {
	handler := NewClaimRewardHandler(newFakeRewardRepo())

	_, err := handler.Handle(context.Background(), ClaimRewardCommand{
		RecordID: "missing",
		PlayerID: "p1",
	})

	assert.ErrorIs(t, err, reward.ErrRewardNotFound)
}
