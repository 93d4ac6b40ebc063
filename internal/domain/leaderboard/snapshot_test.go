package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
)

func buildSnapshot(t *testing.T, id string, entries []Entry) *Snapshot {
	t.Helper()
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	return NewSnapshot(id, PeriodDaily, "", entries, now, now.Add(24*time.Hour), now)
}

func TestNewSnapshot_CapsEntries(t *testing.T) {
	entries := make([]Entry, MaxEntries+50)
	for i := range entries {
		entries[i] = Entry{Rank: Rank(i + 1), PlayerID: string(rune('a' + i%26))}
	}

	s := buildSnapshot(t, "s1", entries)

	assert.Equal(t, MaxEntries, s.Count())
}

func TestSnapshot_GetByPlayer(t *testing.T) {
	s := buildSnapshot(t, "s1", []Entry{
		{Rank: 1, PlayerID: "a", NormalizedScore: 300},
		{Rank: 2, PlayerID: "b", NormalizedScore: 200},
	})

	entry, ok := s.GetByPlayer("b")
	require.True(t, ok)
	assert.Equal(t, Rank(2), entry.Rank)

	_, ok = s.GetByPlayer("missing")
	assert.False(t, ok)
}

func TestSnapshot_Neighbors(t *testing.T) {
	entries := make([]Entry, 10)
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	for i := range entries {
		entries[i] = Entry{Rank: Rank(i + 1), PlayerID: ids[i]}
	}
	s := buildSnapshot(t, "s1", entries)

	// Middle of the board: 3 above + self + 3 below.
	neighbors := s.Neighbors("e", 3)
	require.Len(t, neighbors, 7)
	assert.Equal(t, "b", neighbors[0].PlayerID)
	assert.Equal(t, "h", neighbors[6].PlayerID)

	// Top of the board: window is clipped.
	top := s.Neighbors("a", 3)
	require.Len(t, top, 4)
	assert.Equal(t, "a", top[0].PlayerID)

	assert.Nil(t, s.Neighbors("missing", 3))
}

func TestSnapshot_IsGlobal(t *testing.T) {
	global := buildSnapshot(t, "s1", nil)
	assert.True(t, global.IsGlobal())

	now := time.Now()
	scoped := NewSnapshot("s2", PeriodDaily, player.AgeGroup6to8, nil, now, now, now)
	assert.False(t, scoped.IsGlobal())
}

func TestCalculateDiff_FirstSnapshot(t *testing.T) {
	next := buildSnapshot(t, "s1", []Entry{
		{Rank: 1, PlayerID: "a"},
		{Rank: 2, PlayerID: "b"},
	})

	diff := CalculateDiff(nil, next)

	assert.Empty(t, diff.RankChanges)
	assert.ElementsMatch(t, []string{"a", "b"}, diff.NewPlayers)
}

func TestCalculateDiff_RankChanges(t *testing.T) {
	prev := buildSnapshot(t, "s1", []Entry{
		{Rank: 1, PlayerID: "a"},
		{Rank: 2, PlayerID: "b"},
		{Rank: 3, PlayerID: "c"},
	})
	next := buildSnapshot(t, "s2", []Entry{
		{Rank: 1, PlayerID: "b"},
		{Rank: 2, PlayerID: "a"},
		{Rank: 3, PlayerID: "d"},
	})

	diff := CalculateDiff(prev, next)

	assert.Equal(t, RankChange(1), diff.RankChanges["b"])  // 2 -> 1
	assert.Equal(t, RankChange(-1), diff.RankChanges["a"]) // 1 -> 2
	assert.ElementsMatch(t, []string{"d"}, diff.NewPlayers)
	assert.ElementsMatch(t, []string{"c"}, diff.DroppedPlayers)
}

func TestDiff_Improved(t *testing.T) {
	diff := &Diff{RankChanges: map[string]RankChange{
		"big_up":   10,
		"small_up": 1,
		"down":     -7,
	}}

	improved := diff.Improved(3)

	assert.ElementsMatch(t, []string{"big_up"}, improved)
}

func TestRebuildSnapshotIsByteIdentical(t *testing.T) {
	// Re-running aggregation over unchanged players must produce
	// identical entries in identical order.
	cohort := []Participant{
		{PlayerID: "c", DisplayName: "C", NormalizedScore: 150, RawScore: 100},
		{PlayerID: "a", DisplayName: "A", NormalizedScore: 432, RawScore: 200},
		{PlayerID: "b", DisplayName: "B", NormalizedScore: 150, RawScore: 120},
	}

	first := RankCohort(cohort)
	second := RankCohort(cohort)

	assert.Equal(t, first, second)
}
