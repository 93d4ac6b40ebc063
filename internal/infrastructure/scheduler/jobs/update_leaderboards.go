// Package jobs contains implementations of scheduled jobs for WordQuest rankings.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
	"github.com/wordquest-app/wordquest-rankings/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE LEADERBOARDS JOB
// ══════════════════════════════════════════════════════════════════════════════

// UpdateLeaderboardsJob recomputes every leaderboard snapshot from the
// current player profiles: one snapshot per (period, age group) pair
// plus the global board for each period. Each snapshot wholesale
// replaces its predecessor, so re-running the job with unchanged data
// leaves storage identical.
type UpdateLeaderboardsJob struct {
	playerRepo      player.Repository
	leaderboardRepo leaderboard.Repository
	cache           leaderboard.Cache
	notifier        leaderboard.RankNotifier
	logger          *slog.Logger

	config UpdateLeaderboardsConfig

	lastStats atomic.Value // *UpdateStats
}

// UpdateLeaderboardsConfig contains configuration for the update job.
type UpdateLeaderboardsConfig struct {
	// NotifyRankImprovements enables notifications for players who
	// climbed the board since the previous snapshot.
	NotifyRankImprovements bool

	// MinRankImprovement is the minimum climb to trigger a notification.
	MinRankImprovement int

	// CacheTTL is the TTL for cached leaderboard tops.
	CacheTTL time.Duration

	// Timeout is the maximum duration for one full update run.
	Timeout time.Duration

	// Location is the timezone used for period window boundaries.
	Location *time.Location
}

// DefaultUpdateLeaderboardsConfig returns sensible defaults.
func DefaultUpdateLeaderboardsConfig() UpdateLeaderboardsConfig {
	return UpdateLeaderboardsConfig{
		NotifyRankImprovements: true,
		MinRankImprovement:     3,
		CacheTTL:               2 * time.Minute,
		Timeout:                5 * time.Minute,
		Location:               time.UTC,
	}
}

// UpdateStats contains statistics from one update run.
type UpdateStats struct {
	StartedAt         time.Time
	CompletedAt       time.Time
	Duration          time.Duration
	TotalPlayers      int
	SnapshotsReplaced int
	RankImprovements  int
	NotificationsSent int
	Errors            []error
}

// NewUpdateLeaderboardsJob creates the snapshot update job.
func NewUpdateLeaderboardsJob(
	playerRepo player.Repository,
	leaderboardRepo leaderboard.Repository,
	cache leaderboard.Cache,
	notifier leaderboard.RankNotifier,
	logger *slog.Logger,
	config UpdateLeaderboardsConfig,
) *UpdateLeaderboardsJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Location == nil {
		config.Location = time.UTC
	}

	return &UpdateLeaderboardsJob{
		playerRepo:      playerRepo,
		leaderboardRepo: leaderboardRepo,
		cache:           cache,
		notifier:        notifier,
		logger:          logger,
		config:          config,
	}
}

// Name returns the job name.
func (j *UpdateLeaderboardsJob) Name() string {
	return "update_leaderboards"
}

// Description returns a human-readable description.
func (j *UpdateLeaderboardsJob) Description() string {
	return "Recomputes leaderboard snapshots for every period and age group"
}

// Run executes the update job.
func (j *UpdateLeaderboardsJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &UpdateStats{
		StartedAt: startedAt,
		Errors:    make([]error, 0),
	}

	j.logger.Info("starting update_leaderboards job")

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	players, err := j.playerRepo.ListCompetitors(ctx)
	if err != nil {
		return fmt.Errorf("failed to list competitors: %w", err)
	}

	stats.TotalPlayers = len(players)
	j.logger.Info("found competitors for leaderboards", "count", stats.TotalPlayers)

	now := time.Now().In(j.config.Location)
	for _, period := range leaderboard.PeriodTypes {
		window := j.periodWindow(period, now)

		// Global board first, then one board per age group.
		if err := j.rebuildBoard(ctx, period, "", players, window, now, stats); err != nil {
			stats.Errors = append(stats.Errors, err)
			j.logger.Error("failed to rebuild global leaderboard",
				"period", period,
				"error", err,
			)
		}

		for _, group := range player.AgeGroups {
			if err := j.rebuildBoard(ctx, period, group, players, window, now, stats); err != nil {
				stats.Errors = append(stats.Errors, err)
				j.logger.Error("failed to rebuild leaderboard",
					"period", period,
					"age_group", group,
					"error", err,
				)
			}
		}
	}

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastStats.Store(stats)

	j.logger.Info("update_leaderboards job completed",
		"duration", stats.Duration.String(),
		"total_players", stats.TotalPlayers,
		"snapshots_replaced", stats.SnapshotsReplaced,
		"rank_improvements", stats.RankImprovements,
		"notifications", stats.NotificationsSent,
	)

	if len(stats.Errors) > 0 {
		return fmt.Errorf("update completed with %d errors", len(stats.Errors))
	}
	return nil
}

// rebuildBoard recomputes the snapshot for one (period, age group) key.
// An empty ageGroup means the global board.
func (j *UpdateLeaderboardsJob) rebuildBoard(
	ctx context.Context,
	period leaderboard.PeriodType,
	ageGroup player.AgeGroup,
	players []*player.Player,
	window timeutil.Window,
	now time.Time,
	stats *UpdateStats,
) error {
	participants := make([]leaderboard.Participant, 0, len(players))
	for _, p := range players {
		if ageGroup != "" && p.AgeGroup != ageGroup {
			continue
		}
		participants = append(participants, leaderboard.ParticipantFromPlayer(p))
	}

	entries := leaderboard.RankCohort(participants)
	next := leaderboard.NewSnapshot(
		uuid.NewString(), period, ageGroup, entries,
		window.Start, window.End, now,
	)

	prev, err := j.leaderboardRepo.GetSnapshot(ctx, period, ageGroup)
	if err != nil && !errors.Is(err, leaderboard.ErrSnapshotNotFound) {
		j.logger.Warn("failed to load previous snapshot",
			"period", period,
			"age_group", ageGroup,
			"error", err,
		)
		prev = nil
	}

	if err := j.leaderboardRepo.ReplaceSnapshot(ctx, next); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	stats.SnapshotsReplaced++

	// Improvement notifications only make sense on the global all-time
	// board: per-period boards reset their baseline at every boundary
	// and would spam climbs that are just the window rolling over.
	if period == leaderboard.PeriodAllTime && ageGroup == "" {
		j.notifyImprovements(ctx, prev, next, stats)
	}

	if j.cache != nil {
		top := next.Top(leaderboard.MaxEntries)
		if err := j.cache.SetCachedTop(ctx, period, ageGroup, top, j.config.CacheTTL); err != nil {
			j.logger.Warn("failed to cache leaderboard top",
				"period", period,
				"age_group", ageGroup,
				"error", err,
			)
		}
	}

	j.logger.Debug("leaderboard rebuilt",
		"period", period,
		"age_group", ageGroup.String(),
		"entries", next.Count(),
	)
	return nil
}

// notifyImprovements sends notifications for significant climbs
// between the previous and the new snapshot.
func (j *UpdateLeaderboardsJob) notifyImprovements(
	ctx context.Context,
	prev, next *leaderboard.Snapshot,
	stats *UpdateStats,
) {
	if prev == nil {
		return
	}

	diff := leaderboard.CalculateDiff(prev, next)
	for playerID, change := range diff.RankChanges {
		if change <= 0 {
			continue
		}
		stats.RankImprovements++

		if !j.config.NotifyRankImprovements || j.notifier == nil {
			continue
		}
		if !change.IsSignificant(j.config.MinRankImprovement) {
			continue
		}

		entry, ok := next.GetByPlayer(playerID)
		if !ok {
			continue
		}
		oldRank := leaderboard.Rank(int(entry.Rank) + change.Abs())

		if err := j.notifier.NotifyRankImproved(ctx, playerID, oldRank, entry.Rank); err != nil {
			j.logger.Warn("failed to send rank improvement notification",
				"player_id", playerID,
				"error", err,
			)
		} else {
			stats.NotificationsSent++
		}
	}
}

// periodWindow returns the aggregation window for a period at time t.
func (j *UpdateLeaderboardsJob) periodWindow(period leaderboard.PeriodType, t time.Time) timeutil.Window {
	switch period {
	case leaderboard.PeriodDaily:
		return timeutil.DailyWindow(t, j.config.Location)
	case leaderboard.PeriodWeekly:
		return timeutil.WeeklyWindow(t, j.config.Location)
	case leaderboard.PeriodMonthly:
		return timeutil.MonthlyWindow(t, j.config.Location)
	default:
		return timeutil.AllTimeWindow(t)
	}
}

// LastStats returns statistics from the last run.
func (j *UpdateLeaderboardsJob) LastStats() *UpdateStats {
	stats := j.lastStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*UpdateStats)
}
