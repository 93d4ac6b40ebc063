// Package leaderboard содержит доменную модель рейтинга WordQuest.
package leaderboard

import (
	"context"
	"time"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
)

// Repository определяет контракт хранения снапшотов лидерборда.
// Реализация находится в infrastructure слое (PostgreSQL).
type Repository interface {
	// ReplaceSnapshot сохраняет снапшот, целиком заменяя существующий
	// снапшот той же комбинации (период, возрастная группа).
	// Операция идемпотентна: повторный вызов с теми же данными
	// оставляет хранилище в том же состоянии.
	ReplaceSnapshot(ctx context.Context, snapshot *Snapshot) error

	// GetSnapshot возвращает снапшот для комбинации (период, группа).
	// Пустая группа означает глобальный лидерборд.
	// Возвращает ErrSnapshotNotFound, если снапшот ещё не построен.
	GetSnapshot(ctx context.Context, period PeriodType, ageGroup player.AgeGroup) (*Snapshot, error)
}

// Cache определяет контракт кеширования топа лидерборда.
// Отделён от основного репозитория для гибкости (Redis, in-memory).
type Cache interface {
	// GetCachedTop возвращает закешированный топ-N.
	// Возвращает nil без ошибки, если кеш пуст или устарел.
	GetCachedTop(ctx context.Context, period PeriodType, ageGroup player.AgeGroup, limit int) ([]Entry, error)

	// SetCachedTop сохраняет топ в кеш с TTL.
	SetCachedTop(ctx context.Context, period PeriodType, ageGroup player.AgeGroup, entries []Entry, ttl time.Duration) error

	// Invalidate сбрасывает кеш для комбинации (период, группа).
	Invalidate(ctx context.Context, period PeriodType, ageGroup player.AgeGroup) error
}

// RankNotifier определяет контракт уведомлений об изменениях ранга.
// Реализация связывает лидерборд с доставкой уведомлений (Telegram).
type RankNotifier interface {
	// NotifyRankImproved уведомляет о значительном подъёме в рейтинге.
	NotifyRankImproved(ctx context.Context, playerID string, oldRank, newRank Rank) error
}
