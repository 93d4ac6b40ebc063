package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
)

// ══════════════════════════════════════════════════════════════════════════════
// LINK PARENT COMMAND
// Binds a parent's Telegram chat to a player using the one-time code issued
// at profile completion. Linked parents receive reward and rank notifications.
// ══════════════════════════════════════════════════════════════════════════════

// ErrInvalidLinkCode - код привязки не совпадает с выданным игроку.
var ErrInvalidLinkCode = errors.New("invalid parent link code")

// LinkParentCommand contains the data to link a parent chat.
type LinkParentCommand struct {
	// PlayerID is the internal ID of the player.
	PlayerID string

	// Code is the one-time link code entered by the parent.
	Code string

	// ParentChatID is the parent's Telegram chat ID.
	ParentChatID int64

	// Timestamp defaults to now if zero.
	Timestamp time.Time
}

// Validate validates the command.
func (c LinkParentCommand) Validate() error {
	if c.PlayerID == "" {
		return errors.New("link_parent: player_id is required")
	}
	if strings.TrimSpace(c.Code) == "" {
		return errors.New("link_parent: code is required")
	}
	if c.ParentChatID == 0 {
		return player.ErrInvalidParentChat
	}
	return nil
}

// LinkParentResult contains the result of linking a parent.
type LinkParentResult struct {
	PlayerID     string
	ParentChatID int64
	LinkedAt     time.Time
}

// LinkParentHandler handles the LinkParentCommand.
type LinkParentHandler struct {
	playerRepo player.Repository
}

// NewLinkParentHandler creates a new LinkParentHandler.
func NewLinkParentHandler(playerRepo player.Repository) *LinkParentHandler {
	return &LinkParentHandler{playerRepo: playerRepo}
}

// Handle executes the link parent command.
func (h *LinkParentHandler) Handle(ctx context.Context, cmd LinkParentCommand) (*LinkParentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	timestamp := cmd.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	p, err := h.playerRepo.GetByID(ctx, cmd.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("link_parent: failed to get player: %w", err)
	}

	if p.ParentLinkHash == "" {
		return nil, ErrInvalidLinkCode
	}

	code := strings.ToUpper(strings.TrimSpace(cmd.Code))
	if err := bcrypt.CompareHashAndPassword([]byte(p.ParentLinkHash), []byte(code)); err != nil {
		return nil, ErrInvalidLinkCode
	}

	if err := p.LinkParent(cmd.ParentChatID, timestamp); err != nil {
		return nil, err
	}

	// One-time code: invalidate the hash after a successful link.
	p.ParentLinkHash = ""

	if err := h.playerRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("link_parent: failed to update player: %w", err)
	}

	return &LinkParentResult{
		PlayerID:     p.ID,
		ParentChatID: cmd.ParentChatID,
		LinkedAt:     timestamp,
	}, nil
}
