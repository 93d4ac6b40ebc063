// Package reward содержит доменную модель наград за лидерборд WordQuest.
package reward

import "context"

// Repository определяет контракт хранения записей наград.
// Реализация находится в infrastructure слое (PostgreSQL).
type Repository interface {
	// Upsert сохраняет запись награды. Запись с существующей парой
	// (competition_id, rank) заменяется, а не дублируется - это
	// делает распределение наград идемпотентным в пределах периода.
	Upsert(ctx context.Context, record *Record) error

	// GetByID возвращает запись по идентификатору.
	// Возвращает ErrRewardNotFound, если запись отсутствует.
	GetByID(ctx context.Context, id string) (*Record, error)

	// ListByPlayer возвращает записи игрока, новые первыми.
	// При onlyUnclaimed возвращаются только непогашенные.
	ListByPlayer(ctx context.Context, playerID string, onlyUnclaimed bool) ([]*Record, error)

	// Claim атомарно переводит запись в состояние claimed и начисляет
	// выплату на профиль игрока в одной транзакции. Предусловия:
	// запись существует, принадлежит callerPlayerID и ещё не получена.
	// Возвращает обновлённую запись.
	Claim(ctx context.Context, recordID, callerPlayerID string) (*Record, error)
}

// Notifier определяет контракт уведомлений о выданных наградах.
// Реализация доставляет уведомление привязанному родителю (Telegram).
type Notifier interface {
	// NotifyRewardGranted уведомляет о новой награде игрока.
	NotifyRewardGranted(ctx context.Context, playerID string, record *Record) error
}
