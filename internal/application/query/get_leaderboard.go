// Package query contains read operations (CQRS - Queries).
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
// GET LEADERBOARD QUERY
// Возвращает топ лидерборда для комбинации (период, возрастная группа).
// Чтение идёт по цепочке: Redis-кеш → снапшот в PostgreSQL → пересчёт
// на лету из профилей игроков (холодный старт, пока фоновые задания
// ещё не построили ни одного снапшота).
// ══════════════════════════════════════════════════════════════════════════════

const (
	// DefaultLeaderboardLimit - размер топа по умолчанию.
	DefaultLeaderboardLimit = 50

	// cacheTTL - время жизни кеша топа.
	cacheTTL = 2 * time.Minute
)

// GetLeaderboardQuery содержит параметры запроса лидерборда.
type GetLeaderboardQuery struct {
	// Period - период рейтинга (daily, weekly, monthly, all_time).
	Period leaderboard.PeriodType

	// AgeGroup - возрастная группа (пустая = глобальный рейтинг).
	AgeGroup player.AgeGroup

	// Limit - размер топа (по умолчанию 50, максимум 100).
	Limit int
}

// Validate проверяет и нормализует параметры запроса.
func (q *GetLeaderboardQuery) Validate() error {
	if !q.Period.IsValid() {
		return leaderboard.ErrInvalidPeriodType
	}
	if q.AgeGroup != "" && !q.AgeGroup.IsValid() {
		return fmt.Errorf("get_leaderboard: unknown age group: %s", q.AgeGroup)
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLeaderboardLimit
	}
	if q.Limit > leaderboard.MaxEntries {
		q.Limit = leaderboard.MaxEntries
	}
	return nil
}

// GetLeaderboardResult содержит результат запроса лидерборда.
type GetLeaderboardResult struct {
	// Period - запрошенный период.
	Period leaderboard.PeriodType `json:"period"`

	// AgeGroup - запрошенная группа (пустая = глобальный).
	AgeGroup string `json:"age_group,omitempty"`

	// Entries - записи топа, отсортированные по рангу.
	Entries []leaderboard.Entry `json:"entries"`

	// TotalPlayers - количество игроков в снапшоте.
	TotalPlayers int `json:"total_players"`

	// Source - откуда взяты данные: "cache", "snapshot", "live".
	Source string `json:"source"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetLeaderboardHandler обрабатывает запросы лидерборда.
type GetLeaderboardHandler struct {
	leaderboardRepo leaderboard.Repository
	cache           leaderboard.Cache
	playerRepo      player.Repository
}

// NewGetLeaderboardHandler создаёт новый обработчик.
func NewGetLeaderboardHandler(
	leaderboardRepo leaderboard.Repository,
	cache leaderboard.Cache,
	playerRepo player.Repository,
) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{
		leaderboardRepo: leaderboardRepo,
		cache:           cache,
		playerRepo:      playerRepo,
	}
}

// Handle выполняет запрос лидерборда.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, query GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	// 1. Кеш
	if h.cache != nil {
		cached, err := h.cache.GetCachedTop(ctx, query.Period, query.AgeGroup, query.Limit)
		if err == nil && len(cached) > 0 {
			return &GetLeaderboardResult{
				Period:       query.Period,
				AgeGroup:     string(query.AgeGroup),
				Entries:      cached,
				TotalPlayers: len(cached),
				Source:       "cache",
				GeneratedAt:  now,
			}, nil
		}
	}

	// 2. Снапшот
	snapshot, err := h.leaderboardRepo.GetSnapshot(ctx, query.Period, query.AgeGroup)
	if err == nil {
		top := snapshot.Top(query.Limit)
		if h.cache != nil {
			_ = h.cache.SetCachedTop(ctx, query.Period, query.AgeGroup, top, cacheTTL)
		}
		return &GetLeaderboardResult{
			Period:       query.Period,
			AgeGroup:     string(query.AgeGroup),
			Entries:      top,
			TotalPlayers: snapshot.Count(),
			Source:       "snapshot",
			GeneratedAt:  now,
		}, nil
	}
	if !errors.Is(err, leaderboard.ErrSnapshotNotFound) {
		return nil, fmt.Errorf("get_leaderboard: failed to load snapshot: %w", err)
	}

	// 3. Пересчёт на лету
	entries, total, err := h.computeLive(ctx, query.AgeGroup)
	if err != nil {
		return nil, fmt.Errorf("get_leaderboard: live ranking failed: %w", err)
	}
	if len(entries) > query.Limit {
		entries = entries[:query.Limit]
	}

	return &GetLeaderboardResult{
		Period:       query.Period,
		AgeGroup:     string(query.AgeGroup),
		Entries:      entries,
		TotalPlayers: total,
		Source:       "live",
		GeneratedAt:  now,
	}, nil
}

// computeLive ранжирует игроков напрямую из профилей. Используется только
// до первого запуска фонового задания построения снапшотов.
func (h *GetLeaderboardHandler) computeLive(ctx context.Context, ageGroup player.AgeGroup) ([]leaderboard.Entry, int, error) {
	players, err := h.playerRepo.ListCompetitors(ctx)
	if err != nil {
		return nil, 0, err
	}

	participants := make([]leaderboard.Participant, 0, len(players))
	for _, p := range players {
		if ageGroup != "" && p.AgeGroup != ageGroup {
			continue
		}
		participants = append(participants, leaderboard.ParticipantFromPlayer(p))
	}

	entries := leaderboard.RankCohort(participants)
	return entries, len(entries), nil
}
