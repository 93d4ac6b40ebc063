package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateAgeGroup(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		birthYear int
		expected  AgeGroup
	}{
		{"six years old", 2020, AgeGroup6to8},
		{"eight years old", 2018, AgeGroup6to8},
		{"nine years old", 2017, AgeGroup9to11},
		{"eleven years old", 2015, AgeGroup9to11},
		{"twelve years old", 2014, AgeGroup12Plus},
		{"teenager", 2012, AgeGroup12Plus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateAgeGroup(tt.birthYear, now))
		})
	}
}

func TestCalculateNormalizedScore_Determinism(t *testing.T) {
	first := CalculateNormalizedScore(200, AgeGroup6to8, 95, 20)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, CalculateNormalizedScore(200, AgeGroup6to8, 95, 20))
	}
}

func TestCalculateNormalizedScore_ExactValues(t *testing.T) {
	// round(200 * 1.5 * 1.2 * 1.2) = 432
	assert.Equal(t, 432, CalculateNormalizedScore(200, AgeGroup6to8, 95, 20))

	// round(200 * 1.0 * 1.2 * 1.2) = 288
	assert.Equal(t, 288, CalculateNormalizedScore(200, AgeGroup12Plus, 95, 20))

	// Unknown group falls back to 1.0 multiplier.
	assert.Equal(t, 288, CalculateNormalizedScore(200, AgeGroup("unknown"), 95, 20))
}

func TestCalculateNormalizedScore_AgeFairnessOrdering(t *testing.T) {
	young := CalculateNormalizedScore(500, AgeGroup6to8, 85, 30)
	middle := CalculateNormalizedScore(500, AgeGroup9to11, 85, 30)
	older := CalculateNormalizedScore(500, AgeGroup12Plus, 85, 30)

	assert.GreaterOrEqual(t, young, middle)
	assert.GreaterOrEqual(t, middle, older)
}

func TestCalculateNormalizedScore_MonotonicInRawScore(t *testing.T) {
	prev := -1
	for raw := 0; raw <= 1000; raw += 50 {
		got := CalculateNormalizedScore(raw, AgeGroup9to11, 75, 40)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestCalculateNormalizedScore_MonotonicInAccuracy(t *testing.T) {
	low := CalculateNormalizedScore(300, AgeGroup12Plus, 70, 10)
	mid := CalculateNormalizedScore(300, AgeGroup12Plus, 85, 10)
	high := CalculateNormalizedScore(300, AgeGroup12Plus, 95, 10)

	assert.LessOrEqual(t, low, mid)
	assert.LessOrEqual(t, mid, high)
}

func TestCalculateNormalizedScore_VolumeBonusCap(t *testing.T) {
	// Both saturate the 1.5x cap.
	atThousand := CalculateNormalizedScore(100, AgeGroup12Plus, 50, 1000)
	atTenThousand := CalculateNormalizedScore(100, AgeGroup12Plus, 50, 10000)

	assert.Equal(t, atThousand, atTenThousand)
	assert.Equal(t, 150, atThousand)
}

func TestCalculateAnswerPoints_ZeroSpeedBonusAtMaxTime(t *testing.T) {
	// Time spent equals max time exactly: no speed bonus.
	got := CalculateAnswerPoints(1, 30*time.Second, 30*time.Second, 1.0)
	assert.Equal(t, 100, got)
}

func TestCalculateAnswerPoints_NoNegativeBonus(t *testing.T) {
	// Overtime answers never subtract points.
	overtime := CalculateAnswerPoints(1, 45*time.Second, 30*time.Second, 1.0)
	atLimit := CalculateAnswerPoints(1, 30*time.Second, 30*time.Second, 1.0)
	assert.Equal(t, atLimit, overtime)
}

func TestCalculateAnswerPoints_InstantAnswer(t *testing.T) {
	// Full speed bonus: round((100+50) * 1.0) = 150.
	assert.Equal(t, 150, CalculateAnswerPoints(1, 0, 30*time.Second, 1.0))

	// Hardest difficulty: round(150 * 1.4) = 210.
	assert.Equal(t, 210, CalculateAnswerPoints(3, 0, 30*time.Second, 1.0))
}

func TestCalculateAnswerPoints_StreakBonus(t *testing.T) {
	base := CalculateAnswerPoints(2, 10*time.Second, 30*time.Second, 1.0)
	boosted := CalculateAnswerPoints(2, 10*time.Second, 30*time.Second, 1.5)
	assert.Equal(t, int(float64(base)*1.5+0.5), boosted)
}

func TestCalculateAnswerPoints_DefaultMaxTime(t *testing.T) {
	explicit := CalculateAnswerPoints(2, 15*time.Second, 30*time.Second, 1.0)
	defaulted := CalculateAnswerPoints(2, 15*time.Second, 0, 1.0)
	assert.Equal(t, explicit, defaulted)
}

func TestDifficultyMultiplier(t *testing.T) {
	assert.InDelta(t, 1.0, DifficultyMultiplier(1), 1e-9)
	assert.InDelta(t, 1.2, DifficultyMultiplier(2), 1e-9)
	assert.InDelta(t, 1.4, DifficultyMultiplier(3), 1e-9)
}

func TestClampDifficulty(t *testing.T) {
	assert.Equal(t, 1, ClampDifficulty(0))
	assert.Equal(t, 1, ClampDifficulty(-5))
	assert.Equal(t, 2, ClampDifficulty(2))
	assert.Equal(t, 3, ClampDifficulty(7))
}

func TestCalculatePercentile(t *testing.T) {
	// Empty cohort: top of nobody.
	assert.Equal(t, 100, CalculatePercentile(50, nil))
	assert.Equal(t, 100, CalculatePercentile(50, []int{}))

	// round(3/4 * 100) = 75
	assert.Equal(t, 75, CalculatePercentile(100, []int{50, 60, 70, 110}))

	// Lowest score: nothing below.
	assert.Equal(t, 0, CalculatePercentile(10, []int{10, 20, 30}))

	// Strictly greater than all.
	assert.Equal(t, 100, CalculatePercentile(40, []int{10, 20, 30}))
}
