package query

import (
	"context"
	"fmt"
	"time"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHALLENGE RESULT QUERY
// Определяет победителя челленджа между игроками разных возрастов.
// Сырые очки каждого участника нормализуются по его возрастной группе,
// поэтому восьмилетний игрок честно соревнуется с двенадцатилетним.
// ══════════════════════════════════════════════════════════════════════════════

// ChallengeScoreInput - результат одного участника в рамках челленджа.
type ChallengeScoreInput struct {
	// PlayerID - внутренний ID игрока.
	PlayerID string

	// RawScore - сырые очки, набранные в челлендже.
	RawScore int

	// CorrectAnswers и QuestionsAnswered - счётчики точности в челлендже.
	CorrectAnswers    int
	QuestionsAnswered int

	// TotalTime - суммарное время ответов (тай-брейк).
	TotalTime time.Duration
}

// ChallengeResultQuery содержит параметры запроса результата челленджа.
type ChallengeResultQuery struct {
	// Scores - результаты участников.
	Scores []ChallengeScoreInput
}

// Validate проверяет корректность параметров запроса.
func (q *ChallengeResultQuery) Validate() error {
	for i, s := range q.Scores {
		if s.PlayerID == "" {
			return fmt.Errorf("challenge_result: scores[%d]: player_id is required", i)
		}
		if s.QuestionsAnswered < 0 || s.CorrectAnswers < 0 || s.CorrectAnswers > s.QuestionsAnswered {
			return fmt.Errorf("challenge_result: scores[%d]: inconsistent accuracy counters", i)
		}
	}
	return nil
}

// ChallengeResultResult содержит исход челленджа.
type ChallengeResultResult struct {
	// Outcome - победитель и нормализованные очки участников.
	Outcome leaderboard.ChallengeOutcome `json:"outcome"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// ChallengeResultHandler обрабатывает запросы результата челленджа.
type ChallengeResultHandler struct {
	playerRepo player.Repository
}

// NewChallengeResultHandler создаёт новый обработчик.
func NewChallengeResultHandler(playerRepo player.Repository) *ChallengeResultHandler {
	return &ChallengeResultHandler{playerRepo: playerRepo}
}

// Handle выполняет запрос результата челленджа. Возрастная группа и имя
// каждого участника берутся из его профиля; игроки с незаполненным
// профилем не могут участвовать.
func (h *ChallengeResultHandler) Handle(ctx context.Context, query ChallengeResultQuery) (*ChallengeResultResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	ids := make([]string, len(query.Scores))
	for i, s := range query.Scores {
		ids[i] = s.PlayerID
	}

	players, err := h.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("challenge_result: failed to load players: %w", err)
	}

	byID := make(map[string]*player.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	participants := make([]leaderboard.ChallengeParticipant, 0, len(query.Scores))
	for _, s := range query.Scores {
		p, ok := byID[s.PlayerID]
		if !ok {
			return nil, fmt.Errorf("challenge_result: player %s: %w", s.PlayerID, player.ErrPlayerNotFound)
		}
		if !p.ProfileComplete {
			return nil, fmt.Errorf("challenge_result: player %s: %w", s.PlayerID, player.ErrProfileIncomplete)
		}
		accuracy := 0.0
		if s.QuestionsAnswered > 0 {
			accuracy = 100 * float64(s.CorrectAnswers) / float64(s.QuestionsAnswered)
		}

		participants = append(participants, leaderboard.ChallengeParticipant{
			PlayerID:          p.ID,
			DisplayName:       p.DisplayName,
			AgeGroup:          p.AgeGroup,
			RawScore:          s.RawScore,
			Accuracy:          accuracy,
			QuestionsAnswered: s.QuestionsAnswered,
			TotalTime:         s.TotalTime,
		})
	}

	return &ChallengeResultResult{
		Outcome:     leaderboard.DetermineChallengeWinner(participants),
		GeneratedAt: time.Now().UTC(),
	}, nil
}
