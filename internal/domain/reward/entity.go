// Package reward содержит доменную модель наград за лидерборд WordQuest.
// Награда создаётся шагом распределения по итогам периода и живёт по
// простому конечному автомату: unclaimed -> claimed (терминальное).
package reward

import (
	"errors"
	"fmt"
	"time"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"
)

// ══════════════════════════════════════════════════════════════════════════════
// PAYOUT
// ══════════════════════════════════════════════════════════════════════════════

// Payout - выплата награды в игровых валютах.
type Payout struct {
	Diamonds int `json:"diamonds"`
	Emeralds int `json:"emeralds"`
	XP       int `json:"xp"`
}

// IsZero возвращает true для пустой выплаты.
// Пустые выплаты не порождают записей наград.
func (p Payout) IsZero() bool {
	return p.Diamonds == 0 && p.Emeralds == 0 && p.XP == 0
}

// String возвращает строковое представление для логирования.
func (p Payout) String() string {
	return fmt.Sprintf("Payout{Diamonds: %d, Emeralds: %d, XP: %d}", p.Diamonds, p.Emeralds, p.XP)
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPETITION IDENTITY
// ══════════════════════════════════════════════════════════════════════════════

// CompetitionType возвращает тип соревнования для периода,
// например "daily_leaderboard".
func CompetitionType(period leaderboard.PeriodType) string {
	return string(period) + "_leaderboard"
}

// CompetitionID строит детерминированный идентификатор экземпляра
// соревнования из периода и начала окна агрегации. Один и тот же
// период даёт один и тот же идентификатор, что делает распределение
// наград идемпотентным: повторный прогон в пределах периода попадает
// в то же уникальное ограничение (competition_id, rank) и не создаёт
// дублей.
func CompetitionID(period leaderboard.PeriodType, periodStart time.Time) string {
	return fmt.Sprintf("%s_%s", CompetitionType(period), periodStart.UTC().Format("20060102"))
}

// ══════════════════════════════════════════════════════════════════════════════
// REWARD RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record - запись награды для одной пары (игрок, экземпляр соревнования).
// Создаётся распределением, мутируется только операцией получения,
// никогда не удаляется.
type Record struct {
	// ID - уникальный идентификатор записи.
	ID string

	// PlayerID - владелец награды.
	PlayerID string

	// CompetitionType - тип соревнования (например, "daily_leaderboard").
	CompetitionType string

	// CompetitionID - идентификатор экземпляра соревнования.
	CompetitionID string

	// SnapshotID - снапшот, породивший награду.
	SnapshotID string

	// Rank - позиция игрока в соревновании.
	Rank leaderboard.Rank

	// Payout - выплата награды.
	Payout Payout

	// Claimed - получена ли награда.
	Claimed bool

	// ClaimedAt - время получения (nil, пока не получена).
	ClaimedAt *time.Time

	// CreatedAt - время создания записи.
	CreatedAt time.Time
}

// NewRecord создаёт новую непогашенную запись награды.
func NewRecord(id, playerID, snapshotID string, period leaderboard.PeriodType, periodStart time.Time, rank leaderboard.Rank, payout Payout, now time.Time) (*Record, error) {
	if id == "" || playerID == "" {
		return nil, ErrInvalidRecord
	}
	if !rank.IsValid() {
		return nil, ErrInvalidRecord
	}
	if payout.IsZero() {
		return nil, ErrZeroPayout
	}

	return &Record{
		ID:              id,
		PlayerID:        playerID,
		CompetitionType: CompetitionType(period),
		CompetitionID:   CompetitionID(period, periodStart),
		SnapshotID:      snapshotID,
		Rank:            rank,
		Payout:          payout,
		Claimed:         false,
		CreatedAt:       now,
	}, nil
}

// Claim переводит запись в состояние claimed.
// Требования: вызывающий владеет наградой и награда ещё не получена.
// Любое нарушенное предусловие проваливает операцию без частичных
// изменений состояния.
func (r *Record) Claim(callerPlayerID string, now time.Time) error {
	if r.PlayerID != callerPlayerID {
		return ErrNotOwner
	}
	if r.Claimed {
		return ErrAlreadyClaimed
	}

	r.Claimed = true
	claimedAt := now
	r.ClaimedAt = &claimedAt
	return nil
}

// String возвращает строковое представление для логирования.
func (r *Record) String() string {
	return fmt.Sprintf(
		"Reward{ID: %s, Player: %s, Competition: %s, Rank: %d, Claimed: %v}",
		r.ID, r.PlayerID, r.CompetitionID, r.Rank, r.Claimed,
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrRewardNotFound - запись награды не найдена.
	ErrRewardNotFound = errors.New("reward record not found")

	// ErrNotOwner - награда принадлежит другому игроку.
	ErrNotOwner = errors.New("reward belongs to another player")

	// ErrAlreadyClaimed - награда уже получена.
	ErrAlreadyClaimed = errors.New("reward already claimed")

	// ErrInvalidRecord - некорректные данные записи награды.
	ErrInvalidRecord = errors.New("invalid reward record")

	// ErrZeroPayout - пустая выплата не порождает запись.
	ErrZeroPayout = errors.New("zero payout produces no reward record")

	// ErrPeriodHasNoRewards - для периода не определены награды (all_time).
	ErrPeriodHasNoRewards = errors.New("period type has no reward table")
)
