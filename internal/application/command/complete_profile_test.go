package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
)

func TestCompleteProfile_NewPlayer(t *testing.T) {
	repo := newFakePlayerRepo()
	handler := NewCompleteProfileHandler(repo)

	result, err := handler.Handle(context.Background(), CompleteProfileCommand{
		DisplayName:      "Dias",
		BirthYear:        2018,
		Grade:            2,
		Language:         "kk",
		CompetitionOptIn: true,
		Timestamp:        time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.NotEmpty(t, result.PlayerID)
	assert.Equal(t, player.AgeGroup6to8, result.AgeGroup)
	assert.Len(t, result.ParentLinkCode, 8)

	stored, err := repo.GetByID(context.Background(), result.PlayerID)
	require.NoError(t, err)
	assert.True(t, stored.ProfileComplete)
	assert.True(t, stored.IsRankable())
	assert.NotEmpty(t, stored.ParentLinkHash)

	// Only the bcrypt hash is persisted; the plain code must verify against it.
	err = bcrypt.CompareHashAndPassword([]byte(stored.ParentLinkHash), []byte(result.ParentLinkCode))
	assert.NoError(t, err)
}

func TestCompleteProfile_ExistingPlayer(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	repo := newFakePlayerRepo(&player.Player{ID: "p1", DisplayName: "Old Name", CreatedAt: now})
	handler := NewCompleteProfileHandler(repo)

	result, err := handler.Handle(context.Background(), CompleteProfileCommand{
		PlayerID:  "p1",
		BirthYear: 2014,
		Grade:     6,
		Language:  "ru",
		Timestamp: now,
	})

	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, "p1", result.PlayerID)
	assert.Equal(t, player.AgeGroup12Plus, result.AgeGroup)

	stored, err := repo.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Old Name", stored.DisplayName, "name unchanged when not provided")
}

func TestCompleteProfile_InvalidGrade(t *testing.T) {
	handler := NewCompleteProfileHandler(newFakePlayerRepo())

	_, err := handler.Handle(context.Background(), CompleteProfileCommand{
		DisplayName: "Dias",
		BirthYear:   2018,
		Grade:       13,
		Language:    "kk",
	})

	assert.ErrorIs(t, err, player.ErrInvalidGrade)
}

func TestCompleteProfile_Validation(t *testing.T) {
	handler := NewCompleteProfileHandler(newFakePlayerRepo())

	_, err := handler.Handle(context.Background(), CompleteProfileCommand{BirthYear: 2018})
	assert.Error(t, err, "new player without display name")

	_, err = handler.Handle(context.Background(), CompleteProfileCommand{DisplayName: "Dias"})
	assert.Error(t, err, "missing birth year")
}

func TestLinkParent_Success(t *testing.T) {
	repo := newFakePlayerRepo()
	completeHandler := NewCompleteProfileHandler(repo)
	linkHandler := NewLinkParentHandler(repo)

	profile, err := completeHandler.Handle(context.Background(), CompleteProfileCommand{
		DisplayName: "Dias",
		BirthYear:   2016,
		Grade:       4,
		Language:    "en",
	})
	require.NoError(t, err)

	result, err := linkHandler.Handle(context.Background(), LinkParentCommand{
		PlayerID:     profile.PlayerID,
		Code:         profile.ParentLinkCode,
		ParentChatID: 987654321,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(987654321), result.ParentChatID)

	stored, err := repo.GetByID(context.Background(), profile.PlayerID)
	require.NoError(t, err)
	assert.True(t, stored.HasLinkedParent())
	assert.Empty(t, stored.ParentLinkHash, "code is one-time")
}

func TestLinkParent_WrongCode(t *testing.T) {
	repo := newFakePlayerRepo()
	completeHandler := NewCompleteProfileHandler(repo)
	linkHandler := NewLinkParentHandler(repo)

	profile, err := completeHandler.Handle(context.Background(), CompleteProfileCommand{
		DisplayName: "Dias",
		BirthYear:   2016,
		Grade:       4,
		Language:    "en",
	})
	require.NoError(t, err)

	_, err = linkHandler.Handle(context.Background(), LinkParentCommand{
		PlayerID:     profile.PlayerID,
		Code:         "WRONGCOD",
		ParentChatID: 987654321,
	})

	assert.ErrorIs(t, err, ErrInvalidLinkCode)
}

func TestLinkParent_CodeCannotBeReused(t *testing.T) {
	repo := newFakePlayerRepo()
	completeHandler := NewCompleteProfileHandler(repo)
	linkHandler := NewLinkParentHandler(repo)

	profile, err := completeHandler.Handle(context.Background(), CompleteProfileCommand{
		DisplayName: "Dias",
		BirthYear:   2016,
		Grade:       4,
		Language:    "en",
	})
	require.NoError(t, err)

	cmd := LinkParentCommand{
		PlayerID:     profile.PlayerID,
		Code:         profile.ParentLinkCode,
		ParentChatID: 111,
	}

	_, err = linkHandler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	_, err = linkHandler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, ErrInvalidLinkCode)
}
