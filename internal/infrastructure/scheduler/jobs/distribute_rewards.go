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
	"github.com/wordquest-app/wordquest-rankings/internal/domain/reward"
	"github.com/wordquest-app/wordquest-rankings/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DISTRIBUTE REWARDS JOB
// ══════════════════════════════════════════════════════════════════════════════

// DistributeRewardsJob grants rewards to the top 10 of the global
// leaderboard for a just-closed competition period. One job instance
// serves one period type and runs right after the period boundary.
//
// Distribution is idempotent: the competition identity is derived from
// the period window start, so a crashed run can be repeated and the
// unique (competition_id, rank) constraint swallows the duplicates.
type DistributeRewardsJob struct {
	period          leaderboard.PeriodType
	leaderboardRepo leaderboard.Repository
	rewardRepo      reward.Repository
	notifier        reward.Notifier
	logger          *slog.Logger

	config DistributeRewardsConfig

	lastStats atomic.Value // *DistributeStats
}

// DistributeRewardsConfig contains configuration for the distribution job.
type DistributeRewardsConfig struct {
	// TopN is how many leaderboard positions receive rewards.
	TopN int

	// NotifyParents enables notifications for granted rewards.
	NotifyParents bool

	// Timeout is the maximum duration for one distribution run.
	Timeout time.Duration

	// Location is the timezone used to resolve the closed period window.
	Location *time.Location
}

// DefaultDistributeRewardsConfig returns sensible defaults.
func DefaultDistributeRewardsConfig() DistributeRewardsConfig {
	return DistributeRewardsConfig{
		TopN:          10,
		NotifyParents: true,
		Timeout:       time.Minute,
		Location:      time.UTC,
	}
}

// DistributeStats contains statistics from one distribution run.
type DistributeStats struct {
	StartedAt         time.Time
	CompletedAt       time.Time
	Duration          time.Duration
	CompetitionID     string
	RewardsGranted    int
	NotificationsSent int
	Errors            []error
}

// NewDistributeRewardsJob creates a distribution job for one period type.
// Returns an error for periods without a reward table (all_time).
func NewDistributeRewardsJob(
	period leaderboard.PeriodType,
	leaderboardRepo leaderboard.Repository,
	rewardRepo reward.Repository,
	notifier reward.Notifier,
	logger *slog.Logger,
	config DistributeRewardsConfig,
) (*DistributeRewardsJob, error) {
	if !period.HasRewards() {
		return nil, reward.ErrPeriodHasNoRewards
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.TopN <= 0 {
		config.TopN = 10
	}
	if config.Location == nil {
		config.Location = time.UTC
	}

	return &DistributeRewardsJob{
		period:          period,
		leaderboardRepo: leaderboardRepo,
		rewardRepo:      rewardRepo,
		notifier:        notifier,
		logger:          logger,
		config:          config,
	}, nil
}

// Name returns the job name.
func (j *DistributeRewardsJob) Name() string {
	return fmt.Sprintf("distribute_rewards_%s", j.period)
}

// Description returns a human-readable description.
func (j *DistributeRewardsJob) Description() string {
	return fmt.Sprintf("Grants rewards to the top %d of the %s leaderboard", j.config.TopN, j.period)
}

// Run executes the distribution for the most recently closed period.
func (j *DistributeRewardsJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &DistributeStats{
		StartedAt: startedAt,
		Errors:    make([]error, 0),
	}

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	window := j.closedWindow(startedAt.In(j.config.Location))
	stats.CompetitionID = reward.CompetitionID(j.period, window.Start)

	j.logger.Info("starting reward distribution",
		"period", j.period,
		"competition_id", stats.CompetitionID,
	)

	snapshot, err := j.leaderboardRepo.GetSnapshot(ctx, j.period, "")
	if err != nil {
		if errors.Is(err, leaderboard.ErrSnapshotNotFound) {
			j.logger.Warn("no leaderboard snapshot for period, nothing to distribute",
				"period", j.period,
			)
			j.finish(stats)
			return nil
		}
		return fmt.Errorf("failed to load leaderboard snapshot: %w", err)
	}

	for _, entry := range snapshot.Top(j.config.TopN) {
		payout, ok := reward.RewardFor(entry.Rank, j.period)
		if !ok {
			return reward.ErrPeriodHasNoRewards
		}
		if payout.IsZero() {
			continue
		}

		rec, err := reward.NewRecord(
			uuid.NewString(), entry.PlayerID, snapshot.ID,
			j.period, window.Start, entry.Rank, payout, time.Now(),
		)
		if err != nil {
			stats.Errors = append(stats.Errors, err)
			j.logger.Error("failed to build reward record",
				"player_id", entry.PlayerID,
				"rank", entry.Rank,
				"error", err,
			)
			continue
		}

		if err := j.rewardRepo.Upsert(ctx, rec); err != nil {
			stats.Errors = append(stats.Errors, err)
			j.logger.Error("failed to persist reward record",
				"player_id", entry.PlayerID,
				"rank", entry.Rank,
				"error", err,
			)
			continue
		}
		stats.RewardsGranted++

		if j.config.NotifyParents && j.notifier != nil {
			if err := j.notifier.NotifyRewardGranted(ctx, entry.PlayerID, rec); err != nil {
				j.logger.Warn("failed to send reward notification",
					"player_id", entry.PlayerID,
					"error", err,
				)
			} else {
				stats.NotificationsSent++
			}
		}
	}

	j.finish(stats)

	j.logger.Info("reward distribution completed",
		"period", j.period,
		"competition_id", stats.CompetitionID,
		"duration", stats.Duration.String(),
		"rewards_granted", stats.RewardsGranted,
		"notifications", stats.NotificationsSent,
	)

	if len(stats.Errors) > 0 {
		return fmt.Errorf("distribution completed with %d errors", len(stats.Errors))
	}
	return nil
}

// closedWindow returns the window of the period that just ended before t.
func (j *DistributeRewardsJob) closedWindow(t time.Time) timeutil.Window {
	switch j.period {
	case leaderboard.PeriodWeekly:
		return timeutil.PreviousWeeklyWindow(t, j.config.Location)
	case leaderboard.PeriodMonthly:
		return timeutil.PreviousMonthlyWindow(t, j.config.Location)
	default:
		return timeutil.PreviousDailyWindow(t, j.config.Location)
	}
}

func (j *DistributeRewardsJob) finish(stats *DistributeStats) {
	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(stats.StartedAt)
	j.lastStats.Store(stats)
}

// LastStats returns statistics from the last run.
func (j *DistributeRewardsJob) LastStats() *DistributeStats {
	stats := j.lastStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*DistributeStats)
}
