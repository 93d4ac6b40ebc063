package postgres

import (
	"context"
	"fmt"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLAYER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// PlayerRepository implements player.Repository for PostgreSQL.
type PlayerRepository struct {
	conn *Connection
}

// NewPlayerRepository creates a new PlayerRepository.
func NewPlayerRepository(conn *Connection) *PlayerRepository {
	return &PlayerRepository{conn: conn}
}

const playerColumns = `
	id, display_name, birth_year, age_group, grade, language,
	total_raw_score, normalized_score, weekly_score, monthly_score,
	correct_answers, questions_answered, streak, words_learned, quests_completed,
	competition_opt_in, profile_complete, diamonds, emeralds, xp,
	parent_chat_id, parent_link_hash, created_at, updated_at
`

// GetByID returns a single player by ID.
func (r *PlayerRepository) GetByID(ctx context.Context, id string) (*player.Player, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)

	p, err := scanPlayer(row)
	if IsNoRows(err) {
		return nil, player.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

// Create inserts a new player record.
func (r *PlayerRepository) Create(ctx context.Context, p *player.Player) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO players (`+playerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`, playerArgs(p)...)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

// Update saves the full state of an existing player.
func (r *PlayerRepository) Update(ctx context.Context, p *player.Player) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE players SET
			display_name = $2, birth_year = $3, age_group = $4, grade = $5, language = $6,
			total_raw_score = $7, normalized_score = $8, weekly_score = $9, monthly_score = $10,
			correct_answers = $11, questions_answered = $12, streak = $13,
			words_learned = $14, quests_completed = $15,
			competition_opt_in = $16, profile_complete = $17,
			diamonds = $18, emeralds = $19, xp = $20,
			parent_chat_id = $21, parent_link_hash = $22,
			created_at = $23, updated_at = $24
		WHERE id = $1
	`, playerArgs(p)...)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return player.ErrPlayerNotFound
	}
	return nil
}

// ListCompetitors returns all rankable players: opted in with a complete
// profile. The aggregation job ranks these in memory, so ordering here
// is only for determinism.
func (r *PlayerRepository) ListCompetitors(ctx context.Context) ([]*player.Player, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT `+playerColumns+`
		FROM players
		WHERE competition_opt_in AND profile_complete
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitors: %w", err)
	}
	defer rows.Close()

	var players []*player.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// GetByIDs returns the players with the given IDs. Missing IDs are
// silently skipped.
func (r *PlayerRepository) GetByIDs(ctx context.Context, ids []string) ([]*player.Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.conn.Query(ctx, `
		SELECT `+playerColumns+`
		FROM players
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get players by ids: %w", err)
	}
	defer rows.Close()

	var players []*player.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlayer(row rowScanner) (*player.Player, error) {
	var p player.Player
	var ageGroup, language string

	err := row.Scan(
		&p.ID, &p.DisplayName, &p.BirthYear, &ageGroup, &p.Grade, &language,
		&p.TotalRawScore, &p.NormalizedScore, &p.WeeklyScore, &p.MonthlyScore,
		&p.CorrectAnswers, &p.QuestionsAnswered, &p.Streak, &p.WordsLearned, &p.QuestsCompleted,
		&p.CompetitionOptIn, &p.ProfileComplete, &p.Diamonds, &p.Emeralds, &p.XP,
		&p.ParentChatID, &p.ParentLinkHash, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.AgeGroup = player.AgeGroup(ageGroup)
	p.Language = player.Language(language)
	return &p, nil
}

func playerArgs(p *player.Player) []interface{} {
	return []interface{}{
		p.ID, p.DisplayName, p.BirthYear, string(p.AgeGroup), p.Grade, string(p.Language),
		int(p.TotalRawScore), int(p.NormalizedScore), int(p.WeeklyScore), int(p.MonthlyScore),
		p.CorrectAnswers, p.QuestionsAnswered, p.Streak, p.WordsLearned, p.QuestsCompleted,
		p.CompetitionOptIn, p.ProfileComplete, p.Diamonds, p.Emeralds, p.XP,
		p.ParentChatID, p.ParentLinkHash, p.CreatedAt, p.UpdatedAt,
	}
}
