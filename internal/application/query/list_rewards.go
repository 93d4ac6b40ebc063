package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/reward"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST REWARDS QUERY
// Возвращает записи наград игрока - экран "мои награды" с кнопкой claim.
// ══════════════════════════════════════════════════════════════════════════════

// ListRewardsQuery содержит параметры запроса наград игрока.
type ListRewardsQuery struct {
	// PlayerID - внутренний ID игрока.
	PlayerID string

	// OnlyUnclaimed - показывать только незабранные награды.
	OnlyUnclaimed bool
}

// Validate проверяет корректность параметров запроса.
func (q *ListRewardsQuery) Validate() error {
	if q.PlayerID == "" {
		return errors.New("list_rewards: player_id is required")
	}
	return nil
}

// ListRewardsResult содержит награды игрока.
type ListRewardsResult struct {
	// Rewards - записи наград, новые первыми.
	Rewards []*reward.Record `json:"rewards"`

	// UnclaimedTotal - суммарный незабранный выигрыш.
	UnclaimedTotal reward.Payout `json:"unclaimed_total"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// ListRewardsHandler обрабатывает запросы наград.
type ListRewardsHandler struct {
	rewardRepo reward.Repository
}

// NewListRewardsHandler создаёт новый обработчик.
func NewListRewardsHandler(rewardRepo reward.Repository) *ListRewardsHandler {
	return &ListRewardsHandler{rewardRepo: rewardRepo}
}

// Handle выполняет запрос наград игрока.
func (h *ListRewardsHandler) Handle(ctx context.Context, query ListRewardsQuery) (*ListRewardsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	records, err := h.rewardRepo.ListByPlayer(ctx, query.PlayerID, query.OnlyUnclaimed)
	if err != nil {
		return nil, fmt.Errorf("list_rewards: %w", err)
	}

	var unclaimed reward.Payout
	for _, r := range records {
		if !r.Claimed {
			unclaimed.Diamonds += r.Payout.Diamonds
			unclaimed.Emeralds += r.Payout.Emeralds
			unclaimed.XP += r.Payout.XP
		}
	}

	return &ListRewardsResult{
		Rewards:        records,
		UnclaimedTotal: unclaimed,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}
