package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/reward"
)

// ══════════════════════════════════════════════════════════════════════════════
// REWARD REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// RewardRepository implements reward.Repository for PostgreSQL.
type RewardRepository struct {
	conn *Connection
}

// NewRewardRepository creates a new RewardRepository.
func NewRewardRepository(conn *Connection) *RewardRepository {
	return &RewardRepository{conn: conn}
}

const rewardColumns = `
	id, player_id, competition_type, competition_id, snapshot_id, rank,
	diamonds, emeralds, xp, claimed, claimed_at, created_at
`

// Upsert inserts a reward record. A record with the same
// (competition_id, rank) pair already exists when the distribution job
// re-runs after a crash; the existing record wins so an already-claimed
// reward is never reset.
func (r *RewardRepository) Upsert(ctx context.Context, rec *reward.Record) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO reward_records (`+rewardColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (competition_id, rank) DO NOTHING
	`,
		rec.ID, rec.PlayerID, rec.CompetitionType, rec.CompetitionID, rec.SnapshotID, int(rec.Rank),
		rec.Payout.Diamonds, rec.Payout.Emeralds, rec.Payout.XP,
		rec.Claimed, rec.ClaimedAt, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert reward record: %w", err)
	}
	return nil
}

// GetByID returns a reward record by ID.
func (r *RewardRepository) GetByID(ctx context.Context, id string) (*reward.Record, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+rewardColumns+` FROM reward_records WHERE id = $1`, id)

	rec, err := scanReward(row)
	if IsNoRows(err) {
		return nil, reward.ErrRewardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reward record: %w", err)
	}
	return rec, nil
}

// ListByPlayer returns a player's reward records, newest first.
func (r *RewardRepository) ListByPlayer(ctx context.Context, playerID string, onlyUnclaimed bool) ([]*reward.Record, error) {
	query := `SELECT ` + rewardColumns + ` FROM reward_records WHERE player_id = $1`
	if onlyUnclaimed {
		query += ` AND NOT claimed`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.conn.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reward records: %w", err)
	}
	defer rows.Close()

	var records []*reward.Record
	for rows.Next() {
		rec, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Claim atomically flips a record to claimed and credits the payout to
// the player's balances. The record row is locked for the duration of
// the transaction, so a concurrent double-claim serializes and the
// second caller sees ErrAlreadyClaimed.
func (r *RewardRepository) Claim(ctx context.Context, recordID, callerPlayerID string) (*reward.Record, error) {
	var claimed *reward.Record

	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT `+rewardColumns+`
			FROM reward_records
			WHERE id = $1
			FOR UPDATE
		`, recordID)

		rec, err := scanReward(row)
		if IsNoRows(err) {
			return reward.ErrRewardNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock reward record: %w", err)
		}

		now := time.Now().UTC()
		if err := rec.Claim(callerPlayerID, now); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE reward_records SET claimed = TRUE, claimed_at = $2 WHERE id = $1
		`, rec.ID, rec.ClaimedAt)
		if err != nil {
			return fmt.Errorf("failed to mark reward claimed: %w", err)
		}

		tag, err := tx.Exec(ctx, `
			UPDATE players SET
				diamonds = diamonds + $2,
				emeralds = emeralds + $3,
				xp = xp + $4,
				updated_at = $5
			WHERE id = $1
		`, rec.PlayerID, rec.Payout.Diamonds, rec.Payout.Emeralds, rec.Payout.XP, now)
		if err != nil {
			return fmt.Errorf("failed to credit payout: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("failed to credit payout: player %s not found", rec.PlayerID)
		}

		claimed = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func scanReward(row rowScanner) (*reward.Record, error) {
	var rec reward.Record
	var rank int

	err := row.Scan(
		&rec.ID, &rec.PlayerID, &rec.CompetitionType, &rec.CompetitionID, &rec.SnapshotID, &rank,
		&rec.Payout.Diamonds, &rec.Payout.Emeralds, &rec.Payout.XP,
		&rec.Claimed, &rec.ClaimedAt, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Rank = leaderboard.Rank(rank)
	return &rec, nil
}
