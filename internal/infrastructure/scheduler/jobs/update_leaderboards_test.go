package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
)

func testPlayer(id, name string, birthYear int, normalized int) *player.Player {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	p := &player.Player{
		ID:          id,
		DisplayName: name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.CompleteProfile(birthYear, 3, player.LanguageKazakh, now); err != nil {
		panic(err)
	}
	p.CompetitionOptIn = true
	p.NormalizedScore = player.Score(normalized)
	return p
}

func TestUpdateLeaderboardsJob_ReplacesAllBoards(t *testing.T) {
	young := testPlayer("player-a", "Aruzhan", 2019, 900)
	older := testPlayer("player-b", "Dias", 2013, 700)

	repo := newFakeLeaderboardRepo()
	cache := newFakeCache()

	job := NewUpdateLeaderboardsJob(
		newFakePlayerRepo(young, older),
		repo, cache, nil, nil,
		DefaultUpdateLeaderboardsConfig(),
	)

	err := job.Run(context.Background())
	require.NoError(t, err)

	// 4 periods, each with a global board plus one per age group.
	assert.Equal(t, 16, repo.replaces)
	assert.Equal(t, 16, cache.sets)

	stats := job.LastStats()
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.TotalPlayers)
	assert.Equal(t, 16, stats.SnapshotsReplaced)
	assert.Empty(t, stats.Errors)

	global, err := repo.GetSnapshot(context.Background(), leaderboard.PeriodDaily, "")
	require.NoError(t, err)
	require.Equal(t, 2, global.Count())
	assert.Equal(t, "player-a", global.Entries[0].PlayerID)
	assert.Equal(t, leaderboard.Rank(1), global.Entries[0].Rank)

	youngBoard, err := repo.GetSnapshot(context.Background(), leaderboard.PeriodDaily, player.AgeGroup6to8)
	require.NoError(t, err)
	require.Equal(t, 1, youngBoard.Count())
	assert.Equal(t, "player-a", youngBoard.Entries[0].PlayerID)

	oldBoard, err := repo.GetSnapshot(context.Background(), leaderboard.PeriodDaily, player.AgeGroup12Plus)
	require.NoError(t, err)
	require.Equal(t, 1, oldBoard.Count())
	assert.Equal(t, "player-b", oldBoard.Entries[0].PlayerID)
}

func TestUpdateLeaderboardsJob_NotifiesSignificantClimbs(t *testing.T) {
	climber := testPlayer("player-b", "Dias", 2013, 950)
	rival := testPlayer("player-a", "Aruzhan", 2019, 600)

	repo := newFakeLeaderboardRepo()
	notifier := &fakeRankNotifier{}

	// Previous all-time board had the climber at rank 5.
	prevEntries := []leaderboard.Entry{
		{Rank: 1, PlayerID: "p1", NormalizedScore: 1000},
		{Rank: 2, PlayerID: "p2", NormalizedScore: 900},
		{Rank: 3, PlayerID: "player-a", NormalizedScore: 800},
		{Rank: 4, PlayerID: "p4", NormalizedScore: 700},
		{Rank: 5, PlayerID: "player-b", NormalizedScore: 600},
	}
	prev := leaderboard.NewSnapshot(
		"snap-prev", leaderboard.PeriodAllTime, "",
		prevEntries, time.Time{}, time.Now(), time.Now(),
	)
	require.NoError(t, repo.ReplaceSnapshot(context.Background(), prev))
	repo.replaces = 0

	job := NewUpdateLeaderboardsJob(
		newFakePlayerRepo(climber, rival),
		repo, nil, notifier, nil,
		DefaultUpdateLeaderboardsConfig(),
	)

	err := job.Run(context.Background())
	require.NoError(t, err)

	// The climber went from rank 5 to rank 1, a climb of 4 positions.
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "player-b", notifier.sent[0].playerID)
	assert.Equal(t, leaderboard.Rank(5), notifier.sent[0].oldRank)
	assert.Equal(t, leaderboard.Rank(1), notifier.sent[0].newRank)

	stats := job.LastStats()
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.NotificationsSent)
}

func TestUpdateLeaderboardsJob_NoNotificationsBelowThreshold(t *testing.T) {
	climber := testPlayer("player-b", "Dias", 2013, 950)
	rival := testPlayer("player-a", "Aruzhan", 2019, 600)

	repo := newFakeLeaderboardRepo()
	notifier := &fakeRankNotifier{}

	// Climber was already rank 2: a climb of one position stays quiet.
	prevEntries := []leaderboard.Entry{
		{Rank: 1, PlayerID: "player-a", NormalizedScore: 1000},
		{Rank: 2, PlayerID: "player-b", NormalizedScore: 900},
	}
	prev := leaderboard.NewSnapshot(
		"snap-prev", leaderboard.PeriodAllTime, "",
		prevEntries, time.Time{}, time.Now(), time.Now(),
	)
	require.NoError(t, repo.ReplaceSnapshot(context.Background(), prev))

	job := NewUpdateLeaderboardsJob(
		newFakePlayerRepo(climber, rival),
		repo, nil, notifier, nil,
		DefaultUpdateLeaderboardsConfig(),
	)

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, notifier.sent)

	stats := job.LastStats()
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.RankImprovements)
	assert.Equal(t, 0, stats.NotificationsSent)
}

func TestUpdateLeaderboardsJob_EmptyCohort(t *testing.T) {
	repo := newFakeLeaderboardRepo()

	job := NewUpdateLeaderboardsJob(
		newFakePlayerRepo(),
		repo, nil, nil, nil,
		DefaultUpdateLeaderboardsConfig(),
	)

	require.NoError(t, job.Run(context.Background()))

	// Empty boards are still written: an empty snapshot is a valid
	// state, not a skipped key.
	assert.Equal(t, 16, repo.replaces)

	global, err := repo.GetSnapshot(context.Background(), leaderboard.PeriodWeekly, "")
	require.NoError(t, err)
	assert.True(t, global.IsEmpty())
}
