package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardRepository implements leaderboard.Repository for PostgreSQL.
type LeaderboardRepository struct {
	conn *Connection
}

// NewLeaderboardRepository creates a new LeaderboardRepository.
func NewLeaderboardRepository(conn *Connection) *LeaderboardRepository {
	return &LeaderboardRepository{conn: conn}
}

// ReplaceSnapshot saves a snapshot, wholesale replacing any existing
// snapshot for the same (period, age group) key. Delete plus insert in
// one transaction keeps the operation idempotent: re-running the
// aggregation job converges to the same stored state.
func (r *LeaderboardRepository) ReplaceSnapshot(ctx context.Context, snapshot *leaderboard.Snapshot) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			DELETE FROM leaderboard_snapshots
			WHERE period_type = $1 AND age_group = $2
		`, string(snapshot.Period), string(snapshot.AgeGroup))
		if err != nil {
			return fmt.Errorf("failed to delete previous snapshot: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO leaderboard_snapshots (id, period_type, age_group, period_start, period_end, last_updated)
			VALUES ($1, $2, $3, $4, $5, $6)
		`,
			snapshot.ID,
			string(snapshot.Period),
			string(snapshot.AgeGroup),
			snapshot.PeriodStart,
			snapshot.PeriodEnd,
			snapshot.LastUpdated,
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}

		if len(snapshot.Entries) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, entry := range snapshot.Entries {
			batch.Queue(`
				INSERT INTO leaderboard_entries
				(snapshot_id, rank, player_id, display_name, normalized_score, raw_score, streak, words_learned)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`,
				snapshot.ID,
				int(entry.Rank),
				entry.PlayerID,
				entry.DisplayName,
				entry.NormalizedScore,
				entry.RawScore,
				entry.Streak,
				entry.WordsLearned,
			)
		}

		br := tx.SendBatch(ctx, batch)
		defer br.Close()

		for range snapshot.Entries {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("failed to insert entry: %w", err)
			}
		}
		return nil
	})
}

// GetSnapshot returns the snapshot for the (period, age group) key.
// An empty age group means the global leaderboard.
func (r *LeaderboardRepository) GetSnapshot(ctx context.Context, period leaderboard.PeriodType, ageGroup player.AgeGroup) (*leaderboard.Snapshot, error) {
	var snapshot leaderboard.Snapshot
	var periodStr, groupStr string

	err := r.conn.QueryRow(ctx, `
		SELECT id, period_type, age_group, period_start, period_end, last_updated
		FROM leaderboard_snapshots
		WHERE period_type = $1 AND age_group = $2
	`, string(period), string(ageGroup)).Scan(
		&snapshot.ID,
		&periodStr,
		&groupStr,
		&snapshot.PeriodStart,
		&snapshot.PeriodEnd,
		&snapshot.LastUpdated,
	)

	if IsNoRows(err) {
		return nil, leaderboard.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	snapshot.Period = leaderboard.PeriodType(periodStr)
	snapshot.AgeGroup = player.AgeGroup(groupStr)

	entries, err := r.getSnapshotEntries(ctx, snapshot.ID)
	if err != nil {
		return nil, err
	}
	snapshot.Entries = entries
	snapshot.RebuildIndex()

	return &snapshot, nil
}

// getSnapshotEntries loads the entries of a snapshot ordered by rank.
func (r *LeaderboardRepository) getSnapshotEntries(ctx context.Context, snapshotID string) ([]leaderboard.Entry, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT rank, player_id, display_name, normalized_score, raw_score, streak, words_learned
		FROM leaderboard_entries
		WHERE snapshot_id = $1
		ORDER BY rank
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot entries: %w", err)
	}
	defer rows.Close()

	var entries []leaderboard.Entry
	for rows.Next() {
		var e leaderboard.Entry
		var rank int
		if err := rows.Scan(&rank, &e.PlayerID, &e.DisplayName, &e.NormalizedScore, &e.RawScore, &e.Streak, &e.WordsLearned); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Rank = leaderboard.Rank(rank)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
