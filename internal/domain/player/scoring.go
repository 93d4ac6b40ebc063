// Package player содержит доменную модель игрока WordQuest.
package player

import (
	"math"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORE NORMALIZATION
// ══════════════════════════════════════════════════════════════════════════════

// ageMultipliers компенсируют разницу в скорости набора очков между
// возрастными группами. Младшие получают повышающий коэффициент, чтобы
// соревноваться со старшими на равных.
var ageMultipliers = map[AgeGroup]float64{
	AgeGroup6to8:   1.5,
	AgeGroup9to11:  1.2,
	AgeGroup12Plus: 1.0,
}

// AgeMultiplier возвращает коэффициент возрастной группы.
// Для неизвестной группы возвращает 1.0.
func AgeMultiplier(group AgeGroup) float64 {
	if m, ok := ageMultipliers[group]; ok {
		return m
	}
	return 1.0
}

// accuracyBonus возвращает бонус за точность: 1.2 при >= 90%,
// 1.1 при >= 80%, иначе 1.0. Точность ожидается в диапазоне 0-100,
// но не ограничивается здесь - это ответственность вызывающей стороны.
func accuracyBonus(accuracy float64) float64 {
	switch {
	case accuracy >= 90:
		return 1.2
	case accuracy >= 80:
		return 1.1
	default:
		return 1.0
	}
}

// volumeBonus поощряет объём: 1 + q/100 с насыщением на 1.5x
// (кап достигается при 50 и более отвеченных вопросах).
func volumeBonus(questionsAnswered int) float64 {
	bonus := 1.0 + float64(questionsAnswered)/100.0
	return math.Min(bonus, 1.5)
}

// CalculateNormalizedScore преобразует сырые очки в нормализованные,
// сравнимые между возрастными группами:
//
//	normalized = round(raw * ageMultiplier * accuracyBonus * volumeBonus)
//
// Чистая детерминированная функция без побочных эффектов. Результат
// всегда >= 0 при rawScore >= 0.
func CalculateNormalizedScore(rawScore int, group AgeGroup, accuracy float64, questionsAnswered int) int {
	normalized := float64(rawScore) * AgeMultiplier(group) * accuracyBonus(accuracy) * volumeBonus(questionsAnswered)
	return int(math.Round(normalized))
}

// ══════════════════════════════════════════════════════════════════════════════
// PER-ANSWER POINTS
// ══════════════════════════════════════════════════════════════════════════════

const (
	// baseAnswerPoints - базовые очки за правильный ответ.
	baseAnswerPoints = 100

	// maxSpeedBonus - максимальный бонус за скорость.
	maxSpeedBonus = 50

	// DefaultMaxAnswerTime - время ответа, после которого бонус
	// за скорость равен нулю.
	DefaultMaxAnswerTime = 30 * time.Second

	// MinDifficulty и MaxDifficulty ограничивают уровень сложности вопроса.
	MinDifficulty = 1
	MaxDifficulty = 3
)

// DifficultyMultiplier возвращает множитель сложности:
// 1.0, 1.2, 1.4 для сложности 1, 2, 3.
// Значения вне 1-3 здесь не валидируются - граница API обязана
// ограничить их заранее (см. ClampDifficulty).
func DifficultyMultiplier(difficulty int) float64 {
	return 0.8 + float64(difficulty)*0.2
}

// ClampDifficulty приводит сложность к допустимому диапазону 1-3.
// Применяется на границе API, а не в чистой формуле.
func ClampDifficulty(difficulty int) int {
	if difficulty < MinDifficulty {
		return MinDifficulty
	}
	if difficulty > MaxDifficulty {
		return MaxDifficulty
	}
	return difficulty
}

// CalculateAnswerPoints вычисляет очки за один ответ:
//
//	speedRatio = max(0, (maxTime - timeSpent) / maxTime)
//	speedBonus = floor(speedRatio * 50)
//	points     = round((100 + speedBonus) * difficultyMultiplier * streakBonus)
//
// При timeSpent >= maxTime бонус за скорость равен нулю (отрицательным
// он не бывает). Если maxTime <= 0, используется DefaultMaxAnswerTime.
func CalculateAnswerPoints(difficulty int, timeSpent, maxTime time.Duration, streakBonus float64) int {
	if maxTime <= 0 {
		maxTime = DefaultMaxAnswerTime
	}

	speedRatio := float64(maxTime-timeSpent) / float64(maxTime)
	if speedRatio < 0 {
		speedRatio = 0
	}
	speedBonus := math.Floor(speedRatio * maxSpeedBonus)

	points := (baseAnswerPoints + speedBonus) * DifficultyMultiplier(difficulty) * streakBonus
	return int(math.Round(points))
}

// ══════════════════════════════════════════════════════════════════════════════
// PERCENTILE
// ══════════════════════════════════════════════════════════════════════════════

// CalculatePercentile возвращает перцентиль игрока (0-100):
// доля очков в allScores, строго меньших playerScore.
// Для пустого списка возвращает 100 ("вершина пустого рейтинга") -
// это часть контракта, а не ошибка.
func CalculatePercentile(playerScore int, allScores []int) int {
	if len(allScores) == 0 {
		return 100
	}

	below := 0
	for _, s := range allScores {
		if s < playerScore {
			below++
		}
	}
	return int(math.Round(100 * float64(below) / float64(len(allScores))))
}
