package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
)

func challengePlayer(t *testing.T, id string, birthYear int) *player.Player {
	t.Helper()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	p := &player.Player{ID: id, DisplayName: "Player " + id, CreatedAt: now}
	require.NoError(t, p.CompleteProfile(birthYear, 3, player.LanguageKazakh, now))
	return p
}

func TestChallengeResult_YoungerWinsAtEqualRawScore(t *testing.T) {
	young := challengePlayer(t, "young", 2019) // 6-8
	older := challengePlayer(t, "older", 2012) // 12+
	handler := NewChallengeResultHandler(newFakePlayerRepo(young, older))

	result, err := handler.Handle(context.Background(), ChallengeResultQuery{
		Scores: []ChallengeScoreInput{
			{PlayerID: "young", RawScore: 500, CorrectAnswers: 8, QuestionsAnswered: 10, TotalTime: 40 * time.Second},
			{PlayerID: "older", RawScore: 500, CorrectAnswers: 8, QuestionsAnswered: 10, TotalTime: 40 * time.Second},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "young", result.Outcome.WinnerID)
	require.Len(t, result.Outcome.Scores, 2)
	assert.Greater(t, result.Outcome.Scores[0].NormalizedScore, result.Outcome.Scores[1].NormalizedScore)
}

func TestChallengeResult_TieBrokenByTime(t *testing.T) {
	a := challengePlayer(t, "a", 2012)
	b := challengePlayer(t, "b", 2012)
	handler := NewChallengeResultHandler(newFakePlayerRepo(a, b))

	result, err := handler.Handle(context.Background(), ChallengeResultQuery{
		Scores: []ChallengeScoreInput{
			{PlayerID: "a", RawScore: 500, CorrectAnswers: 10, QuestionsAnswered: 10, TotalTime: 50 * time.Second},
			{PlayerID: "b", RawScore: 500, CorrectAnswers: 10, QuestionsAnswered: 10, TotalTime: 30 * time.Second},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "b", result.Outcome.WinnerID, "faster player wins the tie")
}

func TestChallengeResult_UnknownPlayer(t *testing.T) {
	handler := NewChallengeResultHandler(newFakePlayerRepo())

	_, err := handler.Handle(context.Background(), ChallengeResultQuery{
		Scores: []ChallengeScoreInput{{PlayerID: "ghost", RawScore: 100}},
	})

	assert.ErrorIs(t, err, player.ErrPlayerNotFound)
}

func TestChallengeResult_IncompleteProfileRejected(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	incomplete := &player.Player{ID: "p1", DisplayName: "p1", CreatedAt: now}
	handler := NewChallengeResultHandler(newFakePlayerRepo(incomplete))

	_, err := handler.Handle(context.Background(), ChallengeResultQuery{
		Scores: []ChallengeScoreInput{{PlayerID: "p1", RawScore: 100}},
	})

	assert.ErrorIs(t, err, player.ErrProfileIncomplete)
}

func TestChallengeResult_EmptyChallenge(t *testing.T) {
	handler := NewChallengeResultHandler(newFakePlayerRepo())

	result, err := handler.Handle(context.Background(), ChallengeResultQuery{})

	require.NoError(t, err)
	assert.Empty(t, result.Outcome.WinnerID)
	assert.Empty(t, result.Outcome.Scores)
}

func TestChallengeResult_InconsistentCounters(t *testing.T) {
	handler := NewChallengeResultHandler(newFakePlayerRepo())

	_, err := handler.Handle(context.Background(), ChallengeResultQuery{
		Scores: []ChallengeScoreInput{
			{PlayerID: "p1", RawScore: 100, CorrectAnswers: 5, QuestionsAnswered: 3},
		},
	})

	assert.Error(t, err)
}
