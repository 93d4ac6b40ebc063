// Package leaderboard содержит доменную модель рейтинга WordQuest.
// Рейтинг строится по нормализованным очкам, поэтому игроки разных
// возрастов соревнуются на равных условиях.
package leaderboard

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// PeriodType определяет период агрегации лидерборда.
type PeriodType string

const (
	// PeriodDaily - дневной лидерборд.
	PeriodDaily PeriodType = "daily"
	// PeriodWeekly - недельный лидерборд.
	PeriodWeekly PeriodType = "weekly"
	// PeriodMonthly - месячный лидерборд.
	PeriodMonthly PeriodType = "monthly"
	// PeriodAllTime - лидерборд за всё время.
	PeriodAllTime PeriodType = "all_time"
)

// PeriodTypes перечисляет все периоды агрегации.
var PeriodTypes = []PeriodType{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime}

// IsValid проверяет корректность периода.
func (p PeriodType) IsValid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime:
		return true
	default:
		return false
	}
}

// HasRewards возвращает true, если для периода определены награды.
// Для all_time награды не раздаются - распределение не должно вызываться.
func (p PeriodType) HasRewards() bool {
	return p == PeriodDaily || p == PeriodWeekly || p == PeriodMonthly
}

// String возвращает строковое представление периода.
func (p PeriodType) String() string {
	return string(p)
}

// Rank представляет позицию игрока в лидерборде (начинается с 1).
type Rank int

// IsValid проверяет, что ранг положительный.
func (r Rank) IsValid() bool {
	return r > 0
}

// IsTop10 возвращает true, если игрок в топ-10.
func (r Rank) IsTop10() bool {
	return r >= 1 && r <= 10
}

// String возвращает строковое представление ранга.
func (r Rank) String() string {
	return fmt.Sprintf("#%d", r)
}

// MaxEntries - максимальное количество записей в снапшоте лидерборда.
const MaxEntries = 100

// ══════════════════════════════════════════════════════════════════════════════
// PARTICIPANT & ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// Participant - входная запись для ранжирования: срез состояния игрока
// на момент агрегации.
type Participant struct {
	// PlayerID - идентификатор игрока.
	PlayerID string

	// DisplayName - отображаемое имя на момент снапшота.
	DisplayName string

	// NormalizedScore - нормализованные очки (ключ сортировки).
	NormalizedScore int

	// RawScore - сырые очки на момент снапшота.
	RawScore int

	// Streak - серия правильных ответов на момент снапшота.
	Streak int

	// WordsLearned - выученные слова на момент снапшота.
	WordsLearned int

	// TotalTime - суммарное время ответов. Заполняется только в режиме
	// челленджа и служит вторичным ключом (быстрее - выше). При
	// агрегации лидерборда равно нулю для всех участников.
	TotalTime time.Duration
}

// ParticipantFromPlayer строит участника из профиля игрока.
func ParticipantFromPlayer(p *player.Player) Participant {
	return Participant{
		PlayerID:        p.ID,
		DisplayName:     p.DisplayName,
		NormalizedScore: int(p.NormalizedScore),
		RawScore:        int(p.TotalRawScore),
		Streak:          p.Streak,
		WordsLearned:    p.WordsLearned,
	}
}

// Entry представляет одну запись в лидерборде: копия данных участника
// на момент времени. Записи не обновляются при последующих изменениях
// игрока.
type Entry struct {
	// Rank - позиция в рейтинге (1-based).
	Rank Rank

	// PlayerID - слабая ссылка на игрока.
	PlayerID string

	// DisplayName - имя на момент снапшота.
	DisplayName string

	// NormalizedScore - нормализованные очки на момент снапшота.
	NormalizedScore int

	// RawScore - сырые очки на момент снапшота.
	RawScore int

	// Streak - серия на момент снапшота.
	Streak int

	// WordsLearned - выученные слова на момент снапшота.
	WordsLearned int
}

// String возвращает строковое представление для логирования.
func (e Entry) String() string {
	return fmt.Sprintf("Entry{Rank: %d, Name: %s, Score: %d}", e.Rank, e.DisplayName, e.NormalizedScore)
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKING ENGINE
// ══════════════════════════════════════════════════════════════════════════════

// RankCohort сортирует когорту участников и присваивает ранги.
//
// Порядок сортировки:
//  1. NormalizedScore по убыванию.
//  2. TotalTime по возрастанию (быстрее - выше; работает в режиме
//     челленджа, где время заполнено).
//  3. PlayerID по возрастанию - явный стабильный вторичный ключ,
//     гарантирующий детерминированный порядок при равных очках.
//
// Rank присваивается как позиция + 1 после сортировки. Входной срез
// не мутируется.
func RankCohort(participants []Participant) []Entry {
	sorted := make([]Participant, len(participants))
	copy(sorted, participants)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].NormalizedScore != sorted[j].NormalizedScore {
			return sorted[i].NormalizedScore > sorted[j].NormalizedScore
		}
		if sorted[i].TotalTime != sorted[j].TotalTime {
			return sorted[i].TotalTime < sorted[j].TotalTime
		}
		return sorted[i].PlayerID < sorted[j].PlayerID
	})

	entries := make([]Entry, len(sorted))
	for i, p := range sorted {
		entries[i] = Entry{
			Rank:            Rank(i + 1),
			PlayerID:        p.PlayerID,
			DisplayName:     p.DisplayName,
			NormalizedScore: p.NormalizedScore,
			RawScore:        p.RawScore,
			Streak:          p.Streak,
			WordsLearned:    p.WordsLearned,
		}
	}
	return entries
}

// ══════════════════════════════════════════════════════════════════════════════
// CHALLENGE MODE
// ══════════════════════════════════════════════════════════════════════════════

// ChallengeParticipant - участник челленджа с сырым результатом,
// который нормализуется перед сравнением.
type ChallengeParticipant struct {
	PlayerID          string
	DisplayName       string
	AgeGroup          player.AgeGroup
	RawScore          int
	Accuracy          float64
	QuestionsAnswered int
	TotalTime         time.Duration
}

// ChallengeScore - результат участника для отображения (без поля
// времени, которое служит только для разрешения ничьих).
type ChallengeScore struct {
	PlayerID        string
	DisplayName     string
	NormalizedScore int
	Rank            Rank
}

// ChallengeOutcome - итог челленджа.
type ChallengeOutcome struct {
	// WinnerID - идентификатор победителя. Пустая строка для пустой
	// когорты (определённое значение, а не ошибка).
	WinnerID string

	// Scores - полный отсортированный список результатов.
	Scores []ChallengeScore
}

// DetermineChallengeWinner нормализует результат каждого участника,
// сортирует по нормализованным очкам (при равенстве - по меньшему
// суммарному времени) и возвращает победителя со списком результатов.
func DetermineChallengeWinner(participants []ChallengeParticipant) ChallengeOutcome {
	cohort := make([]Participant, len(participants))
	for i, cp := range participants {
		cohort[i] = Participant{
			PlayerID:    cp.PlayerID,
			DisplayName: cp.DisplayName,
			NormalizedScore: player.CalculateNormalizedScore(
				cp.RawScore, cp.AgeGroup, cp.Accuracy, cp.QuestionsAnswered,
			),
			RawScore:  cp.RawScore,
			TotalTime: cp.TotalTime,
		}
	}

	entries := RankCohort(cohort)

	outcome := ChallengeOutcome{
		Scores: make([]ChallengeScore, len(entries)),
	}
	for i, e := range entries {
		outcome.Scores[i] = ChallengeScore{
			PlayerID:        e.PlayerID,
			DisplayName:     e.DisplayName,
			NormalizedScore: e.NormalizedScore,
			Rank:            e.Rank,
		}
	}
	if len(entries) > 0 {
		outcome.WinnerID = entries[0].PlayerID
	}
	return outcome
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrSnapshotNotFound - снапшот лидерборда не найден.
	ErrSnapshotNotFound = errors.New("leaderboard snapshot not found")

	// ErrInvalidPeriodType - некорректный период агрегации.
	ErrInvalidPeriodType = errors.New("invalid leaderboard period type")

	// ErrPlayerNotRanked - игрок не участвует в рейтинге.
	ErrPlayerNotRanked = errors.New("player is not ranked")
)
