// Package player содержит доменную модель игрока WordQuest.
package player

import "context"

// Repository определяет контракт хранения профилей игроков.
// Реализация находится в infrastructure слое (PostgreSQL).
type Repository interface {
	// GetByID возвращает игрока по идентификатору.
	// Возвращает ErrPlayerNotFound, если игрок отсутствует.
	GetByID(ctx context.Context, id string) (*Player, error)

	// Create сохраняет нового игрока.
	Create(ctx context.Context, p *Player) error

	// Update сохраняет изменённого игрока целиком.
	Update(ctx context.Context, p *Player) error

	// ListCompetitors возвращает всех игроков, участвующих в рейтинге:
	// competition opt-in включён и профиль заполнен.
	ListCompetitors(ctx context.Context) ([]*Player, error)

	// GetByIDs возвращает игроков по списку идентификаторов.
	// Отсутствующие идентификаторы молча пропускаются.
	GetByIDs(ctx context.Context, ids []string) ([]*Player, error)
}
