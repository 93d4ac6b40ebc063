// Package player содержит доменную модель игрока WordQuest.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
// Философия: "Честное соревнование для всех возрастов" - шестилетка и
// подросток должны соревноваться в одном рейтинге на равных условиях.
package player

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// AgeGroup представляет возрастную группу игрока.
// Группа определяется по году рождения и используется для нормализации очков.
type AgeGroup string

const (
	// AgeGroup6to8 - младшая группа (6-8 лет).
	AgeGroup6to8 AgeGroup = "6-8"
	// AgeGroup9to11 - средняя группа (9-11 лет).
	AgeGroup9to11 AgeGroup = "9-11"
	// AgeGroup12Plus - старшая группа (12 лет и старше).
	AgeGroup12Plus AgeGroup = "12+"
)

// AgeGroups перечисляет все возрастные группы в порядке возрастания.
var AgeGroups = []AgeGroup{AgeGroup6to8, AgeGroup9to11, AgeGroup12Plus}

// IsValid проверяет, что возрастная группа корректна.
func (g AgeGroup) IsValid() bool {
	switch g {
	case AgeGroup6to8, AgeGroup9to11, AgeGroup12Plus:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление группы.
func (g AgeGroup) String() string {
	return string(g)
}

// CalculateAgeGroup вычисляет возрастную группу по году рождения.
// Группа определяется для любого года рождения - валидация правдоподобности
// диапазона остаётся на вызывающей стороне.
func CalculateAgeGroup(birthYear int, now time.Time) AgeGroup {
	age := now.Year() - birthYear
	switch {
	case age <= 8:
		return AgeGroup6to8
	case age <= 11:
		return AgeGroup9to11
	default:
		return AgeGroup12Plus
	}
}

// Score представляет игровые очки (сырые или нормализованные).
type Score int

// IsValid проверяет, что очки неотрицательные.
func (s Score) IsValid() bool {
	return s >= 0
}

// Add складывает очки.
func (s Score) Add(delta Score) Score {
	return s + delta
}

// Language представляет язык обучения игрока.
type Language string

// Поддерживаемые языки обучения.
const (
	LanguageKazakh  Language = "kk"
	LanguageRussian Language = "ru"
	LanguageEnglish Language = "en"
)

// IsValid проверяет корректность кода языка.
func (l Language) IsValid() bool {
	s := string(l)
	return len(s) >= 2 && len(s) <= 8 && !strings.ContainsAny(s, " \t\n\r")
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: PLAYER
// ══════════════════════════════════════════════════════════════════════════════

// Player - центральная сущность системы: профиль очков игрока WordQuest.
// Профиль создаётся при завершении регистрации (год рождения + класс + язык)
// и мутируется после каждого оценённого игрового события. Профили никогда
// не удаляются.
type Player struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// DisplayName - отображаемое имя игрока.
	DisplayName string

	// BirthYear - год рождения, задаётся при завершении профиля.
	BirthYear int

	// AgeGroup - возрастная группа, выводится из BirthYear.
	// Неизменна после установки, кроме редактирования профиля.
	AgeGroup AgeGroup

	// Grade - класс обучения (1-11).
	Grade int

	// Language - язык обучения.
	Language Language

	// TotalRawScore - накопитель сырых очков, монотонно растёт
	// (кроме явных административных корректировок).
	TotalRawScore Score

	// NormalizedScore - нормализованные очки, сравнимые между возрастами.
	// Производное значение: пересчитывается при каждом изменении
	// TotalRawScore, точности или объёма вопросов. Не задаётся напрямую.
	NormalizedScore Score

	// WeeklyScore, MonthlyScore - накопители с периодическим сбросом.
	// Сброс - внешняя административная операция.
	WeeklyScore  Score
	MonthlyScore Score

	// CorrectAnswers и QuestionsAnswered образуют точность игрока.
	CorrectAnswers    int
	QuestionsAnswered int

	// Streak - текущая серия правильных ответов.
	Streak int

	// WordsLearned - количество выученных слов (витринный счётчик).
	WordsLearned int

	// QuestsCompleted - количество завершённых квестов (витринный счётчик).
	QuestsCompleted int

	// CompetitionOptIn - участвует ли игрок в соревновательном рейтинге.
	CompetitionOptIn bool

	// ProfileComplete - заполнен ли профиль (год рождения + класс + язык).
	// До завершения профиля NormalizedScore не определён и игрок
	// не попадает в рейтинг.
	ProfileComplete bool

	// Валюты, начисляемые наградами за рейтинг.
	Diamonds int
	Emeralds int
	XP       int

	// ParentChatID - Telegram-чат родителя для уведомлений (0 = не привязан).
	ParentChatID int64

	// ParentLinkHash - bcrypt-хеш кода привязки родителя.
	ParentLinkHash string

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// Accuracy возвращает точность ответов в процентах (0-100).
func (p *Player) Accuracy() float64 {
	if p.QuestionsAnswered == 0 {
		return 0
	}
	return 100 * float64(p.CorrectAnswers) / float64(p.QuestionsAnswered)
}

// IsRankable возвращает true, если игрок участвует в рейтинге:
// включён competition opt-in и нормализованные очки определены.
func (p *Player) IsRankable() bool {
	return p.CompetitionOptIn && p.ProfileComplete
}

// ApplyAnswer применяет результат одного ответа: начисляет очки во все
// накопители, обновляет счётчики точности и серию, и пересчитывает
// нормализованные очки.
func (p *Player) ApplyAnswer(points Score, correct bool, now time.Time) {
	p.QuestionsAnswered++
	if correct {
		p.CorrectAnswers++
		p.Streak++
		p.TotalRawScore = p.TotalRawScore.Add(points)
		p.WeeklyScore = p.WeeklyScore.Add(points)
		p.MonthlyScore = p.MonthlyScore.Add(points)
	} else {
		p.Streak = 0
	}
	p.Recalculate()
	p.UpdatedAt = now
}

// Recalculate пересчитывает NormalizedScore из текущего состояния.
// Вызывается после каждой мутации TotalRawScore.
func (p *Player) Recalculate() {
	p.NormalizedScore = Score(CalculateNormalizedScore(
		int(p.TotalRawScore), p.AgeGroup, p.Accuracy(), p.QuestionsAnswered,
	))
}

// CompleteProfile заполняет профиль и выводит возрастную группу.
func (p *Player) CompleteProfile(birthYear, grade int, language Language, now time.Time) error {
	if grade < 1 || grade > 11 {
		return ErrInvalidGrade
	}
	if !language.IsValid() {
		return ErrInvalidLanguage
	}

	p.BirthYear = birthYear
	p.Grade = grade
	p.Language = language
	p.AgeGroup = CalculateAgeGroup(birthYear, now)
	p.ProfileComplete = true
	p.Recalculate()
	p.UpdatedAt = now
	return nil
}

// Credit начисляет игроку валюты награды.
func (p *Player) Credit(diamonds, emeralds, xp int, now time.Time) {
	p.Diamonds += diamonds
	p.Emeralds += emeralds
	p.XP += xp
	p.UpdatedAt = now
}

// LinkParent привязывает Telegram-чат родителя.
func (p *Player) LinkParent(chatID int64, now time.Time) error {
	if chatID == 0 {
		return ErrInvalidParentChat
	}
	p.ParentChatID = chatID
	p.UpdatedAt = now
	return nil
}

// HasLinkedParent возвращает true, если родитель привязан.
func (p *Player) HasLinkedParent() bool {
	return p.ParentChatID != 0
}

// String возвращает строковое представление для логирования.
func (p *Player) String() string {
	return fmt.Sprintf(
		"Player{ID: %s, Name: %s, Group: %s, Raw: %d, Normalized: %d}",
		p.ID, p.DisplayName, p.AgeGroup, p.TotalRawScore, p.NormalizedScore,
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrPlayerNotFound - игрок не найден.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrInvalidGrade - класс вне диапазона 1-11.
	ErrInvalidGrade = errors.New("invalid grade: must be 1-11")

	// ErrInvalidLanguage - некорректный код языка.
	ErrInvalidLanguage = errors.New("invalid language code")

	// ErrInvalidParentChat - некорректный идентификатор чата родителя.
	ErrInvalidParentChat = errors.New("invalid parent chat id")

	// ErrProfileIncomplete - операция требует заполненного профиля.
	ErrProfileIncomplete = errors.New("player profile is incomplete")
)
