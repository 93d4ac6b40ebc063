// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ANSWER COMMAND
// Records a single quiz answer: awards speed/difficulty-scaled points, updates
// the streak and recalculates the player's normalized score. This is the hot
// path of the scoring pipeline - every answered question flows through here.
// ══════════════════════════════════════════════════════════════════════════════

// RecordAnswerCommand contains the data of a single answered question.
type RecordAnswerCommand struct {
	// PlayerID is the internal ID of the player.
	PlayerID string

	// Correct indicates whether the answer was correct.
	Correct bool

	// Difficulty is the question difficulty (1-3). Out-of-range values
	// are clamped rather than rejected.
	Difficulty int

	// TimeSpent is how long the player took to answer.
	TimeSpent time.Duration

	// MaxTime is the maximum allowed answer time for the question.
	// Zero means the default question timer is used.
	MaxTime time.Duration

	// StreakBonus is the multiplier from the player's current answer streak.
	// Values below 1.0 are treated as 1.0 (no bonus).
	StreakBonus float64

	// Timestamp is when the answer was given (defaults to now if zero).
	Timestamp time.Time
}

// Validate validates the command.
func (c RecordAnswerCommand) Validate() error {
	if c.PlayerID == "" {
		return errors.New("record_answer: player_id is required")
	}
	if c.TimeSpent < 0 {
		return errors.New("record_answer: time_spent cannot be negative")
	}
	return nil
}

// RecordAnswerResult contains the result of recording an answer.
type RecordAnswerResult struct {
	// PlayerID is the internal ID of the player.
	PlayerID string

	// PointsAwarded is the raw points earned for this answer (0 if wrong).
	PointsAwarded int

	// Streak is the player's answer streak after this answer.
	Streak int

	// TotalRawScore is the accumulated raw score after this answer.
	TotalRawScore int

	// NormalizedScore is the recalculated age-fair score.
	NormalizedScore int

	// Accuracy is the player's accuracy percentage after this answer.
	Accuracy float64

	// RecordedAt is when the answer was recorded.
	RecordedAt time.Time
}

// RecordAnswerHandler handles the RecordAnswerCommand.
type RecordAnswerHandler struct {
	playerRepo player.Repository
}

// NewRecordAnswerHandler creates a new RecordAnswerHandler.
func NewRecordAnswerHandler(playerRepo player.Repository) *RecordAnswerHandler {
	return &RecordAnswerHandler{playerRepo: playerRepo}
}

// Handle executes the record answer command.
func (h *RecordAnswerHandler) Handle(ctx context.Context, cmd RecordAnswerCommand) (*RecordAnswerResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	timestamp := cmd.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	p, err := h.playerRepo.GetByID(ctx, cmd.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("record_answer: failed to get player: %w", err)
	}

	points := 0
	if cmd.Correct {
		streakBonus := cmd.StreakBonus
		if streakBonus < 1.0 {
			streakBonus = 1.0
		}

		points = player.CalculateAnswerPoints(
			player.ClampDifficulty(cmd.Difficulty),
			cmd.TimeSpent,
			cmd.MaxTime,
			streakBonus,
		)
	}

	p.ApplyAnswer(player.Score(points), cmd.Correct, timestamp)

	if err := h.playerRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("record_answer: failed to update player: %w", err)
	}

	return &RecordAnswerResult{
		PlayerID:        p.ID,
		PointsAwarded:   points,
		Streak:          p.Streak,
		TotalRawScore:   int(p.TotalRawScore),
		NormalizedScore: int(p.NormalizedScore),
		Accuracy:        p.Accuracy(),
		RecordedAt:      timestamp,
	}, nil
}
