package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/reward"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLAIM REWARD COMMAND
// Marks a competition reward as claimed and credits the payout to the
// player's balances. Claiming is atomic and terminal: a record can be
// claimed exactly once, only by its owner.
// ══════════════════════════════════════════════════════════════════════════════

// ClaimRewardCommand contains the data to claim a reward.
type ClaimRewardCommand struct {
	// RecordID is the ID of the reward record being claimed.
	RecordID string

	// PlayerID is the caller; must match the record's owner.
	PlayerID string
}

// Validate validates the command.
func (c ClaimRewardCommand) Validate() error {
	if c.RecordID == "" {
		return errors.New("claim_reward: record_id is required")
	}
	if c.PlayerID == "" {
		return errors.New("claim_reward: player_id is required")
	}
	return nil
}

// ClaimRewardResult contains the result of claiming a reward.
type ClaimRewardResult struct {
	RecordID string
	PlayerID string
	Payout   reward.Payout
}

// ClaimRewardHandler handles the ClaimRewardCommand.
type ClaimRewardHandler struct {
	rewardRepo reward.Repository
}

// NewClaimRewardHandler creates a new ClaimRewardHandler.
func NewClaimRewardHandler(rewardRepo reward.Repository) *ClaimRewardHandler {
	return &ClaimRewardHandler{rewardRepo: rewardRepo}
}

// Handle executes the claim reward command. The repository performs the
// claim and the balance credit in a single transaction, so a concurrent
// double-claim can never credit twice.
func (h *ClaimRewardHandler) Handle(ctx context.Context, cmd ClaimRewardCommand) (*ClaimRewardResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	record, err := h.rewardRepo.Claim(ctx, cmd.RecordID, cmd.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("claim_reward: %w", err)
	}

	return &ClaimRewardResult{
		RecordID: record.ID,
		PlayerID: record.PlayerID,
		Payout:   record.Payout,
	}, nil
}
