// Package leaderboard содержит доменную модель рейтинга WordQuest.
package leaderboard

import (
	"fmt"
	"time"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD SNAPSHOT
// ══════════════════════════════════════════════════════════════════════════════

// Snapshot представляет состояние лидерборда для одной комбинации
// (период, возрастная группа). Пустая группа означает глобальный
// лидерборд по всем возрастам.
//
// Снапшот существует в единственном экземпляре на ключ: при каждом
// прогоне агрегации он заменяется целиком, а не патчится по частям.
// Это даёт идемпотентность - повторный прогон с неизменными данными
// производит побайтово идентичные записи.
type Snapshot struct {
	// ID - уникальный идентификатор снапшота.
	ID string

	// Period - период агрегации.
	Period PeriodType

	// AgeGroup - возрастная группа (пустая = глобальный лидерборд).
	AgeGroup player.AgeGroup

	// Entries - записи лидерборда, отсортированы по рангу по
	// возрастанию, не более MaxEntries.
	Entries []Entry

	// PeriodStart и PeriodEnd ограничивают окно агрегации.
	PeriodStart time.Time
	PeriodEnd   time.Time

	// LastUpdated - время последнего пересчёта.
	LastUpdated time.Time

	// byPlayer - индекс позиции записи по ID игрока.
	byPlayer map[string]int
}

// NewSnapshot создаёт снапшот из уже ранжированных записей.
// Записи обрезаются до MaxEntries.
func NewSnapshot(id string, period PeriodType, ageGroup player.AgeGroup, entries []Entry, periodStart, periodEnd, updatedAt time.Time) *Snapshot {
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	s := &Snapshot{
		ID:          id,
		Period:      period,
		AgeGroup:    ageGroup,
		Entries:     entries,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		LastUpdated: updatedAt,
	}
	s.RebuildIndex()
	return s
}

// RebuildIndex перестраивает внутренний индекс byPlayer.
// Используется после десериализации из БД.
func (s *Snapshot) RebuildIndex() {
	s.byPlayer = make(map[string]int, len(s.Entries))
	for i, e := range s.Entries {
		s.byPlayer[e.PlayerID] = i
	}
}

// GetByPlayer возвращает запись игрока и признак её наличия.
func (s *Snapshot) GetByPlayer(playerID string) (Entry, bool) {
	if s.byPlayer == nil {
		s.RebuildIndex()
	}
	idx, ok := s.byPlayer[playerID]
	if !ok {
		return Entry{}, false
	}
	return s.Entries[idx], true
}

// Contains проверяет, есть ли игрок в снапшоте.
func (s *Snapshot) Contains(playerID string) bool {
	_, ok := s.GetByPlayer(playerID)
	return ok
}

// Top возвращает топ-N записей.
func (s *Snapshot) Top(n int) []Entry {
	if n <= 0 {
		return nil
	}
	if n > len(s.Entries) {
		n = len(s.Entries)
	}
	result := make([]Entry, n)
	copy(result, s.Entries[:n])
	return result
}

// Neighbors возвращает соседей игрока по рангу: до rangeSize записей
// выше и ниже, включая самого игрока в центре.
func (s *Snapshot) Neighbors(playerID string, rangeSize int) []Entry {
	if s.byPlayer == nil {
		s.RebuildIndex()
	}
	idx, ok := s.byPlayer[playerID]
	if !ok {
		return nil
	}

	from := idx - rangeSize
	to := idx + rangeSize + 1
	if from < 0 {
		from = 0
	}
	if to > len(s.Entries) {
		to = len(s.Entries)
	}

	result := make([]Entry, to-from)
	copy(result, s.Entries[from:to])
	return result
}

// Scores возвращает нормализованные очки всех записей (для перцентиля).
func (s *Snapshot) Scores() []int {
	scores := make([]int, len(s.Entries))
	for i, e := range s.Entries {
		scores[i] = e.NormalizedScore
	}
	return scores
}

// IsEmpty возвращает true, если снапшот пуст.
func (s *Snapshot) IsEmpty() bool {
	return len(s.Entries) == 0
}

// Count возвращает количество записей.
func (s *Snapshot) Count() int {
	return len(s.Entries)
}

// IsGlobal возвращает true для глобального лидерборда (все возрасты).
func (s *Snapshot) IsGlobal() bool {
	return s.AgeGroup == ""
}

// String возвращает строковое представление для логирования.
func (s *Snapshot) String() string {
	scope := "global"
	if !s.IsGlobal() {
		scope = s.AgeGroup.String()
	}
	return fmt.Sprintf(
		"Snapshot{ID: %s, Period: %s, Scope: %s, Entries: %d}",
		s.ID, s.Period, scope, len(s.Entries),
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT DIFF
// ══════════════════════════════════════════════════════════════════════════════

// RankChange представляет изменение позиции между снапшотами.
// Положительное значение = подъём (был #10, стал #5 = +5).
type RankChange int

// Abs возвращает абсолютное значение изменения.
func (rc RankChange) Abs() int {
	if rc < 0 {
		return int(-rc)
	}
	return int(rc)
}

// IsSignificant возвращает true при изменении на threshold и более позиций.
func (rc RankChange) IsSignificant(threshold int) bool {
	return rc.Abs() >= threshold
}

// Diff представляет различия между двумя снапшотами одного ключа.
// Используется для уведомлений об изменениях рангов.
type Diff struct {
	// RankChanges - карта изменений рангов (playerID -> RankChange).
	RankChanges map[string]RankChange

	// NewPlayers - игроки, появившиеся в новом снапшоте.
	NewPlayers []string

	// DroppedPlayers - игроки, выпавшие из снапшота.
	DroppedPlayers []string
}

// CalculateDiff вычисляет разницу между двумя снапшотами.
// prev может быть nil (первый прогон агрегации).
func CalculateDiff(prev, next *Snapshot) *Diff {
	diff := &Diff{
		RankChanges: make(map[string]RankChange),
	}
	if next == nil {
		return diff
	}

	if prev == nil || prev.IsEmpty() {
		for _, e := range next.Entries {
			diff.NewPlayers = append(diff.NewPlayers, e.PlayerID)
		}
		return diff
	}

	for _, e := range next.Entries {
		prevEntry, ok := prev.GetByPlayer(e.PlayerID)
		if !ok {
			diff.NewPlayers = append(diff.NewPlayers, e.PlayerID)
			continue
		}
		diff.RankChanges[e.PlayerID] = RankChange(int(prevEntry.Rank) - int(e.Rank))
	}

	for _, e := range prev.Entries {
		if !next.Contains(e.PlayerID) {
			diff.DroppedPlayers = append(diff.DroppedPlayers, e.PlayerID)
		}
	}

	return diff
}

// Improved возвращает игроков, поднявшихся не менее чем на threshold позиций.
func (d *Diff) Improved(threshold int) []string {
	result := make([]string, 0)
	for playerID, change := range d.RankChanges {
		if change > 0 && change.IsSignificant(threshold) {
			result = append(result, playerID)
		}
	}
	return result
}
