package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"
)

func TestGetPlayerRank_RankedPlayer(t *testing.T) {
	snapshot := testSnapshot(leaderboard.PeriodWeekly, "",
		participant("a", 400), participant("b", 300), participant("c", 200), participant("d", 100))
	handler := NewGetPlayerRankHandler(newFakeLeaderboardRepo(snapshot))

	result, err := handler.Handle(context.Background(), GetPlayerRankQuery{
		PlayerID: "b",
		Period:   leaderboard.PeriodWeekly,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Player.Rank)
	assert.Equal(t, 4, result.Player.TotalPlayers)
	// two of four scores are strictly below 300
	assert.Equal(t, 50, result.Player.Percentile)
	require.Len(t, result.Neighbors, 4, "whole board fits in the neighbor window")
	assert.Equal(t, "a", result.Neighbors[0].PlayerID)
}

func TestGetPlayerRank_NotInSnapshot(t *testing.T) {
	snapshot := testSnapshot(leaderboard.PeriodWeekly, "", participant("a", 400))
	handler := NewGetPlayerRankHandler(newFakeLeaderboardRepo(snapshot))

	_, err := handler.Handle(context.Background(), GetPlayerRankQuery{
		PlayerID: "stranger",
		Period:   leaderboard.PeriodWeekly,
	})

	assert.ErrorIs(t, err, leaderboard.ErrPlayerNotRanked)
}

func TestGetPlayerRank_NoSnapshotYet(t *testing.T) {
	handler := NewGetPlayerRankHandler(newFakeLeaderboardRepo())

	_, err := handler.Handle(context.Background(), GetPlayerRankQuery{
		PlayerID: "a",
		Period:   leaderboard.PeriodDaily,
	})

	assert.ErrorIs(t, err, leaderboard.ErrPlayerNotRanked)
}

func TestGetPlayerRank_Validation(t *testing.T) {
	handler := NewGetPlayerRankHandler(newFakeLeaderboardRepo())

	_, err := handler.Handle(context.Background(), GetPlayerRankQuery{Period: leaderboard.PeriodDaily})
	assert.Error(t, err, "missing player id")

	_, err = handler.Handle(context.Background(), GetPlayerRankQuery{PlayerID: "a", Period: "bogus"})
	assert.ErrorIs(t, err, leaderboard.ErrInvalidPeriodType)
}
