// Package service wires domain notification contracts to delivery
// infrastructure.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/reward"
	"github.com/wordquest-app/wordquest-rankings/internal/infrastructure/external/telegram"
)

// MessageSender is the outbound delivery surface the notifier needs.
// *telegram.Client satisfies it.
type MessageSender interface {
	SendText(ctx context.Context, chatID int64, text string) (*telegram.Message, error)
}

// ParentNotifier delivers leaderboard and reward notifications to the
// Telegram chat of a player's linked parent. Players without a linked
// parent are silently skipped: the mobile app shows its own in-app
// notifications, the Telegram channel is strictly opt-in via the
// parent link flow.
//
// Implements leaderboard.RankNotifier and reward.Notifier.
type ParentNotifier struct {
	playerRepo player.Repository
	sender     MessageSender
	logger     *slog.Logger
}

// NewParentNotifier creates a notifier backed by the given sender.
func NewParentNotifier(playerRepo player.Repository, sender MessageSender, logger *slog.Logger) *ParentNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParentNotifier{
		playerRepo: playerRepo,
		sender:     sender,
		logger:     logger,
	}
}

// NotifyRankImproved implements leaderboard.RankNotifier.
func (n *ParentNotifier) NotifyRankImproved(ctx context.Context, playerID string, oldRank, newRank leaderboard.Rank) error {
	p, chatID, err := n.resolveParentChat(ctx, playerID)
	if err != nil || chatID == 0 {
		return err
	}

	text := fmt.Sprintf(
		"🎉 %s climbed the WordQuest leaderboard: %s → %s!",
		p.DisplayName, oldRank, newRank,
	)
	if newRank.IsTop10() {
		text = fmt.Sprintf(
			"🏆 %s is now in the top 10 of the WordQuest leaderboard (%s, up from %s)!",
			p.DisplayName, newRank, oldRank,
		)
	}

	return n.deliver(ctx, playerID, chatID, text)
}

// NotifyRewardGranted implements reward.Notifier.
func (n *ParentNotifier) NotifyRewardGranted(ctx context.Context, playerID string, rec *reward.Record) error {
	p, chatID, err := n.resolveParentChat(ctx, playerID)
	if err != nil || chatID == 0 {
		return err
	}

	text := fmt.Sprintf(
		"🎁 %s finished %s in the %s and earned a reward: %d 💎, %d 💚, %d XP. Open WordQuest to claim it!",
		p.DisplayName, rec.Rank, competitionName(rec.CompetitionType),
		rec.Payout.Diamonds, rec.Payout.Emeralds, rec.Payout.XP,
	)

	return n.deliver(ctx, playerID, chatID, text)
}

// resolveParentChat loads the player and returns the linked parent
// chat, 0 when no parent is linked.
func (n *ParentNotifier) resolveParentChat(ctx context.Context, playerID string) (*player.Player, int64, error) {
	p, err := n.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, 0, fmt.Errorf("load player for notification: %w", err)
	}
	if !p.HasLinkedParent() {
		n.logger.Debug("no linked parent, skipping notification", "player_id", playerID)
		return p, 0, nil
	}
	return p, p.ParentChatID, nil
}

func (n *ParentNotifier) deliver(ctx context.Context, playerID string, chatID int64, text string) error {
	_, err := n.sender.SendText(ctx, chatID, text)
	if err != nil {
		// A blocked bot or deleted chat is a stale link, not a
		// delivery fault worth failing the caller over.
		if telegram.IsBotBlocked(err) || telegram.IsChatNotFound(err) {
			n.logger.Warn("parent chat unreachable, skipping notification",
				"player_id", playerID,
				"chat_id", chatID,
				"error", err,
			)
			return nil
		}
		return fmt.Errorf("deliver notification: %w", err)
	}

	n.logger.Debug("notification delivered", "player_id", playerID, "chat_id", chatID)
	return nil
}

// competitionName renders a competition type for a human message.
func competitionName(competitionType string) string {
	switch competitionType {
	case "daily_leaderboard":
		return "daily competition"
	case "weekly_leaderboard":
		return "weekly competition"
	case "monthly_leaderboard":
		return "monthly competition"
	default:
		return competitionType
	}
}
