package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE PROFILE COMMAND
// Finishes player onboarding: sets birth year, grade and learning language,
// derives the age group and issues a one-time parent link code. Until the
// profile is complete the player has no normalized score and is excluded
// from every leaderboard.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteProfileCommand contains the onboarding data for a player.
type CompleteProfileCommand struct {
	// PlayerID is the internal ID of the player. Empty means a new
	// player is being registered and an ID will be generated.
	PlayerID string

	// DisplayName is the player's visible name.
	DisplayName string

	// BirthYear is the player's year of birth.
	BirthYear int

	// Grade is the school grade (1-11).
	Grade int

	// Language is the learning language code ("kk", "ru", "en").
	Language string

	// CompetitionOptIn enables leaderboard participation.
	CompetitionOptIn bool

	// Timestamp defaults to now if zero.
	Timestamp time.Time
}

// Validate validates the command.
func (c CompleteProfileCommand) Validate() error {
	if c.PlayerID == "" && strings.TrimSpace(c.DisplayName) == "" {
		return errors.New("complete_profile: display_name is required for new players")
	}
	if c.BirthYear <= 0 {
		return errors.New("complete_profile: birth_year is required")
	}
	return nil
}

// CompleteProfileResult contains the result of completing a profile.
type CompleteProfileResult struct {
	// PlayerID is the internal ID (generated for new players).
	PlayerID string

	// AgeGroup is the derived age group.
	AgeGroup player.AgeGroup

	// ParentLinkCode is the one-time code a parent enters in the Telegram
	// bot to link their chat. Only the bcrypt hash is stored; the plain
	// code is returned exactly once, here.
	ParentLinkCode string

	// Created indicates whether a new player record was created.
	Created bool
}

// CompleteProfileHandler handles the CompleteProfileCommand.
type CompleteProfileHandler struct {
	playerRepo player.Repository
}

// NewCompleteProfileHandler creates a new CompleteProfileHandler.
func NewCompleteProfileHandler(playerRepo player.Repository) *CompleteProfileHandler {
	return &CompleteProfileHandler{playerRepo: playerRepo}
}

// Handle executes the complete profile command.
func (h *CompleteProfileHandler) Handle(ctx context.Context, cmd CompleteProfileCommand) (*CompleteProfileResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	timestamp := cmd.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	var p *player.Player
	created := false

	if cmd.PlayerID == "" {
		p = &player.Player{
			ID:          uuid.NewString(),
			DisplayName: strings.TrimSpace(cmd.DisplayName),
			CreatedAt:   timestamp,
			UpdatedAt:   timestamp,
		}
		created = true
	} else {
		existing, err := h.playerRepo.GetByID(ctx, cmd.PlayerID)
		if err != nil {
			return nil, fmt.Errorf("complete_profile: failed to get player: %w", err)
		}
		p = existing
		if name := strings.TrimSpace(cmd.DisplayName); name != "" {
			p.DisplayName = name
		}
	}

	if err := p.CompleteProfile(cmd.BirthYear, cmd.Grade, player.Language(cmd.Language), timestamp); err != nil {
		return nil, err
	}
	p.CompetitionOptIn = cmd.CompetitionOptIn

	linkCode, err := h.issueParentLinkCode(p)
	if err != nil {
		return nil, fmt.Errorf("complete_profile: failed to issue parent link code: %w", err)
	}

	if created {
		err = h.playerRepo.Create(ctx, p)
	} else {
		err = h.playerRepo.Update(ctx, p)
	}
	if err != nil {
		return nil, fmt.Errorf("complete_profile: failed to save player: %w", err)
	}

	return &CompleteProfileResult{
		PlayerID:       p.ID,
		AgeGroup:       p.AgeGroup,
		ParentLinkCode: linkCode,
		Created:        created,
	}, nil
}

// issueParentLinkCode generates a short one-time code and stores its
// bcrypt hash on the player. The plain code never touches the database.
func (h *CompleteProfileHandler) issueParentLinkCode(p *player.Player) (string, error) {
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	p.ParentLinkHash = string(hash)
	return code, nil
}
