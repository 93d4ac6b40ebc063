package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents a database migration.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
	IsApplied bool
}

// Migrator applies migrations and tracks them in schema_migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a new migrator with the embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: GetMigrations(),
		tableName:  "schema_migrations",
	}
}

// EnsureMigrationTable creates the migration tracking table if it doesn't exist.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)

	if _, err := m.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns all applied migration versions.
func (m *Migrator) GetAppliedMigrations(ctx context.Context) (map[int]time.Time, error) {
	query := fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName)

	rows, err := m.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}
	return applied, rows.Err()
}

// Migrate applies all pending migrations in order.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if _, isApplied := applied[mig.Version]; isApplied {
			continue
		}

		if mig.UpSQL == "" {
			return fmt.Errorf("%w: missing up SQL for migration %d", ErrMigrationFailed, mig.Version)
		}

		err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
			}

			insertQuery := fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName)
			_, err := tx.Exec(ctx, insertQuery, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}

	return nil
}

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_players",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_leaderboard_snapshots",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_reward_records",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATION SQL
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE players (
	id                 UUID PRIMARY KEY,
	display_name       TEXT NOT NULL,
	birth_year         INTEGER NOT NULL DEFAULT 0,
	age_group          TEXT NOT NULL DEFAULT '',
	grade              INTEGER NOT NULL DEFAULT 0,
	language           TEXT NOT NULL DEFAULT '',
	total_raw_score    BIGINT NOT NULL DEFAULT 0,
	normalized_score   BIGINT NOT NULL DEFAULT 0,
	weekly_score       BIGINT NOT NULL DEFAULT 0,
	monthly_score      BIGINT NOT NULL DEFAULT 0,
	correct_answers    INTEGER NOT NULL DEFAULT 0,
	questions_answered INTEGER NOT NULL DEFAULT 0,
	streak             INTEGER NOT NULL DEFAULT 0,
	words_learned      INTEGER NOT NULL DEFAULT 0,
	quests_completed   INTEGER NOT NULL DEFAULT 0,
	competition_opt_in BOOLEAN NOT NULL DEFAULT FALSE,
	profile_complete   BOOLEAN NOT NULL DEFAULT FALSE,
	diamonds           INTEGER NOT NULL DEFAULT 0,
	emeralds           INTEGER NOT NULL DEFAULT 0,
	xp                 INTEGER NOT NULL DEFAULT 0,
	parent_chat_id     BIGINT NOT NULL DEFAULT 0,
	parent_link_hash   TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at         TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX idx_players_age_group ON players (age_group) WHERE competition_opt_in AND profile_complete;
CREATE INDEX idx_players_normalized_score ON players (normalized_score DESC);
`

const migration001Down = `DROP TABLE players;`

const migration002Up = `
CREATE TABLE leaderboard_snapshots (
	id           UUID PRIMARY KEY,
	period_type  TEXT NOT NULL,
	age_group    TEXT NOT NULL DEFAULT '',
	period_start TIMESTAMP WITH TIME ZONE NOT NULL,
	period_end   TIMESTAMP WITH TIME ZONE NOT NULL,
	last_updated TIMESTAMP WITH TIME ZONE NOT NULL,
	UNIQUE (period_type, age_group)
);

CREATE TABLE leaderboard_entries (
	snapshot_id      UUID NOT NULL REFERENCES leaderboard_snapshots (id) ON DELETE CASCADE,
	rank             INTEGER NOT NULL,
	player_id        UUID NOT NULL,
	display_name     TEXT NOT NULL,
	normalized_score BIGINT NOT NULL,
	raw_score        BIGINT NOT NULL,
	streak           INTEGER NOT NULL DEFAULT 0,
	words_learned    INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (snapshot_id, rank)
);

CREATE INDEX idx_leaderboard_entries_player ON leaderboard_entries (player_id);
`

const migration002Down = `
DROP TABLE leaderboard_entries;
DROP TABLE leaderboard_snapshots;
`

const migration003Up = `
CREATE TABLE reward_records (
	id               UUID PRIMARY KEY,
	player_id        UUID NOT NULL,
	competition_type TEXT NOT NULL,
	competition_id   TEXT NOT NULL,
	snapshot_id      TEXT NOT NULL DEFAULT '',
	rank             INTEGER NOT NULL,
	diamonds         INTEGER NOT NULL DEFAULT 0,
	emeralds         INTEGER NOT NULL DEFAULT 0,
	xp               INTEGER NOT NULL DEFAULT 0,
	claimed          BOOLEAN NOT NULL DEFAULT FALSE,
	claimed_at       TIMESTAMP WITH TIME ZONE,
	created_at       TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	UNIQUE (competition_id, rank)
);

CREATE INDEX idx_reward_records_player ON reward_records (player_id, claimed);
`

const migration003Down = `DROP TABLE reward_records;`
