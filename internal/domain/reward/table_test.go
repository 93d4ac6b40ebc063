package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"
)

func TestRewardFor_DailyExactValues(t *testing.T) {
	payout, ok := RewardFor(1, leaderboard.PeriodDaily)
	require.True(t, ok)
	assert.Equal(t, Payout{Diamonds: 50, Emeralds: 25, XP: 200}, payout)

	payout, ok = RewardFor(11, leaderboard.PeriodDaily)
	require.True(t, ok)
	assert.Equal(t, Payout{}, payout)
	assert.True(t, payout.IsZero())
}

func TestRewardFor_WeeklyTop10Bucket(t *testing.T) {
	// Ranks 4-10 all share the top10 bucket.
	expected := Payout{Diamonds: 50, Emeralds: 25, XP: 150}
	for rank := leaderboard.Rank(4); rank <= 10; rank++ {
		payout, ok := RewardFor(rank, leaderboard.PeriodWeekly)
		require.True(t, ok)
		assert.Equal(t, expected, payout, "rank %d", rank)
	}
}

func TestRewardFor_ScalesWithPeriodLength(t *testing.T) {
	daily, _ := RewardFor(1, leaderboard.PeriodDaily)
	weekly, _ := RewardFor(1, leaderboard.PeriodWeekly)
	monthly, _ := RewardFor(1, leaderboard.PeriodMonthly)

	assert.Less(t, daily.Diamonds, weekly.Diamonds)
	assert.Less(t, weekly.Diamonds, monthly.Diamonds)
	assert.Less(t, daily.XP, weekly.XP)
	assert.Less(t, weekly.XP, monthly.XP)
}

func TestRewardFor_PodiumOrdering(t *testing.T) {
	for _, period := range []leaderboard.PeriodType{leaderboard.PeriodDaily, leaderboard.PeriodWeekly, leaderboard.PeriodMonthly} {
		first, _ := RewardFor(1, period)
		second, _ := RewardFor(2, period)
		third, _ := RewardFor(3, period)
		top10, _ := RewardFor(7, period)

		assert.Greater(t, first.Diamonds, second.Diamonds, period)
		assert.Greater(t, second.Diamonds, third.Diamonds, period)
		assert.Greater(t, third.Diamonds, top10.Diamonds, period)
	}
}

func TestRewardFor_AllTimeUndefined(t *testing.T) {
	payout, ok := RewardFor(1, leaderboard.PeriodAllTime)

	assert.False(t, ok)
	assert.True(t, payout.IsZero())
}

func TestRewardFor_Deterministic(t *testing.T) {
	first, _ := RewardFor(3, leaderboard.PeriodMonthly)
	for i := 0; i < 10; i++ {
		got, _ := RewardFor(3, leaderboard.PeriodMonthly)
		assert.Equal(t, first, got)
	}
}
