package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PLAYER RANK QUERY
// Возвращает позицию игрока в рейтинге: ранг, процентиль и соседей
// (до трёх выше и трёх ниже). Это запрос экрана "где я нахожусь".
// ══════════════════════════════════════════════════════════════════════════════

// neighborRange - сколько соседей показывать с каждой стороны.
const neighborRange = 3

// GetPlayerRankQuery содержит параметры запроса позиции игрока.
type GetPlayerRankQuery struct {
	// PlayerID - внутренний ID игрока.
	PlayerID string

	// Period - период рейтинга.
	Period leaderboard.PeriodType

	// AgeGroup - возрастная группа (пустая = глобальный рейтинг).
	AgeGroup player.AgeGroup
}

// Validate проверяет корректность параметров запроса.
func (q *GetPlayerRankQuery) Validate() error {
	if q.PlayerID == "" {
		return errors.New("get_player_rank: player_id is required")
	}
	if !q.Period.IsValid() {
		return leaderboard.ErrInvalidPeriodType
	}
	if q.AgeGroup != "" && !q.AgeGroup.IsValid() {
		return fmt.Errorf("get_player_rank: unknown age group: %s", q.AgeGroup)
	}
	return nil
}

// PlayerRankDTO - позиция игрока в рейтинге.
type PlayerRankDTO struct {
	// PlayerID - внутренний ID игрока.
	PlayerID string `json:"player_id"`

	// DisplayName - отображаемое имя.
	DisplayName string `json:"display_name"`

	// Rank - текущая позиция в рейтинге.
	Rank int `json:"rank"`

	// TotalPlayers - общее количество игроков в снапшоте.
	TotalPlayers int `json:"total_players"`

	// Percentile - процентиль (100 = лучше всех).
	Percentile int `json:"percentile"`

	// NormalizedScore - нормализованные очки игрока.
	NormalizedScore int `json:"normalized_score"`

	// Streak - текущая серия правильных ответов.
	Streak int `json:"streak"`

	// WordsLearned - количество выученных слов.
	WordsLearned int `json:"words_learned"`
}

// GetPlayerRankResult содержит результат запроса позиции игрока.
type GetPlayerRankResult struct {
	// Player - позиция игрока.
	Player PlayerRankDTO `json:"player"`

	// Neighbors - окно соседей вокруг игрока (включая его самого),
	// отсортированное по рангу.
	Neighbors []leaderboard.Entry `json:"neighbors"`

	// Period - запрошенный период.
	Period leaderboard.PeriodType `json:"period"`

	// AgeGroup - запрошенная группа.
	AgeGroup string `json:"age_group,omitempty"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetPlayerRankHandler обрабатывает запросы позиции игрока.
type GetPlayerRankHandler struct {
	leaderboardRepo leaderboard.Repository
}

// NewGetPlayerRankHandler создаёт новый обработчик.
func NewGetPlayerRankHandler(leaderboardRepo leaderboard.Repository) *GetPlayerRankHandler {
	return &GetPlayerRankHandler{leaderboardRepo: leaderboardRepo}
}

// Handle выполняет запрос позиции игрока.
// Возвращает leaderboard.ErrPlayerNotRanked, если игрок не входит
// в снапшот (профиль не заполнен, opt-out или вне топа).
func (h *GetPlayerRankHandler) Handle(ctx context.Context, query GetPlayerRankQuery) (*GetPlayerRankResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	snapshot, err := h.leaderboardRepo.GetSnapshot(ctx, query.Period, query.AgeGroup)
	if err != nil {
		if errors.Is(err, leaderboard.ErrSnapshotNotFound) {
			return nil, leaderboard.ErrPlayerNotRanked
		}
		return nil, fmt.Errorf("get_player_rank: failed to load snapshot: %w", err)
	}

	entry, ok := snapshot.GetByPlayer(query.PlayerID)
	if !ok {
		return nil, leaderboard.ErrPlayerNotRanked
	}

	percentile := player.CalculatePercentile(entry.NormalizedScore, snapshot.Scores())

	return &GetPlayerRankResult{
		Player: PlayerRankDTO{
			PlayerID:        entry.PlayerID,
			DisplayName:     entry.DisplayName,
			Rank:            int(entry.Rank),
			TotalPlayers:    snapshot.Count(),
			Percentile:      percentile,
			NormalizedScore: entry.NormalizedScore,
			Streak:          entry.Streak,
			WordsLearned:    entry.WordsLearned,
		},
		Neighbors:   snapshot.Neighbors(query.PlayerID, neighborRange),
		Period:      query.Period,
		AgeGroup:    string(query.AgeGroup),
		GeneratedAt: time.Now().UTC(),
	}, nil
}
