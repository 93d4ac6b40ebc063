// Package main - точка входа фонового воркера WordQuest Rankings.
//
// Воркер отвечает за периодические задачи:
// - Пересчёт снапшотов лидерборда (все периоды, все возрастные группы)
// - Выдача наград по закрытым периодам (daily/weekly/monthly)
// - Уведомления родителей о значимых подъёмах в рейтинге
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wordquest-app/wordquest-rankings/config"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/reward"
	"github.com/wordquest-app/wordquest-rankings/internal/infrastructure/external/telegram"
	"github.com/wordquest-app/wordquest-rankings/internal/infrastructure/persistence/postgres"
	"github.com/wordquest-app/wordquest-rankings/internal/infrastructure/persistence/redis"
	"github.com/wordquest-app/wordquest-rankings/internal/infrastructure/scheduler"
	"github.com/wordquest-app/wordquest-rankings/internal/infrastructure/scheduler/jobs"
	"github.com/wordquest-app/wordquest-rankings/internal/infrastructure/service"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting WordQuest Rankings worker",
		"env", cfg.App.Environment,
		"timezone", cfg.App.Timezone,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. POSTGRESQL
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional — the worker degrades to snapshot-only without it)
	// ─────────────────────────────────────────────────────────────────────────
	var cache leaderboard.Cache
	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisClient, err := redis.NewClient(ctx, redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cache = redis.NewLeaderboardCache(redisClient)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	playerRepo := postgres.NewPlayerRepository(dbConn)
	leaderboardRepo := postgres.NewLeaderboardRepository(dbConn)
	rewardRepo := postgres.NewRewardRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. PARENT NOTIFICATIONS (Telegram, optional)
	// ─────────────────────────────────────────────────────────────────────────
	var rankNotifier leaderboard.RankNotifier
	var rewardNotifier reward.Notifier

	if cfg.Telegram.Enabled {
		log.Info("initializing Telegram client...")
		tgConfig := telegram.DefaultClientConfig(cfg.Telegram.Token)
		tgConfig.Timeout = cfg.Telegram.RequestTimeout
		tgConfig.Logger = log
		tgClient := telegram.NewClient(tgConfig)

		if !tgClient.IsHealthy(ctx) {
			log.Warn("Telegram bot is unreachable, notifications may fail")
		}

		notifier := service.NewParentNotifier(playerRepo, tgClient, log)
		rankNotifier = notifier
		rewardNotifier = notifier
	} else {
		log.Info("Telegram disabled, parent notifications are off")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. SCHEDULER & JOBS
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(scheduler.Config{
		Logger:   log,
		Timezone: cfg.App.Location,
	})

	updateCfg := jobs.DefaultUpdateLeaderboardsConfig()
	updateCfg.NotifyRankImprovements = rankNotifier != nil
	updateCfg.MinRankImprovement = cfg.Scheduler.MinRankImprovement
	updateCfg.CacheTTL = cfg.Scheduler.CacheTTL
	updateCfg.Timeout = cfg.Scheduler.JobTimeout
	updateCfg.Location = cfg.App.Location

	updateJob := jobs.NewUpdateLeaderboardsJob(
		playerRepo, leaderboardRepo, cache, rankNotifier, log, updateCfg,
	)
	if err := sched.Register(updateJob, scheduler.NewIntervalSchedule(cfg.Scheduler.LeaderboardInterval)); err != nil {
		return fmt.Errorf("failed to register leaderboard job: %w", err)
	}

	rewardPeriods := []struct {
		period   leaderboard.PeriodType
		schedule scheduler.Schedule
	}{
		{leaderboard.PeriodDaily, scheduler.NewDailySchedule(cfg.Scheduler.RewardOffset, cfg.App.Location)},
		{leaderboard.PeriodWeekly, scheduler.NewWeeklySchedule(cfg.Scheduler.RewardOffset, cfg.App.Location)},
		{leaderboard.PeriodMonthly, scheduler.NewMonthlySchedule(cfg.Scheduler.RewardOffset, cfg.App.Location)},
	}

	for _, rp := range rewardPeriods {
		rewardCfg := jobs.DefaultDistributeRewardsConfig()
		rewardCfg.NotifyParents = rewardNotifier != nil
		rewardCfg.Location = cfg.App.Location

		job, err := jobs.NewDistributeRewardsJob(
			rp.period, leaderboardRepo, rewardRepo, rewardNotifier, log, rewardCfg,
		)
		if err != nil {
			return fmt.Errorf("failed to create %s rewards job: %w", rp.period, err)
		}
		if err := sched.Register(job, rp.schedule); err != nil {
			return fmt.Errorf("failed to register %s rewards job: %w", rp.period, err)
		}
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer func() {
		log.Info("stopping scheduler...")
		_ = sched.Stop()
	}()

	// Первый пересчёт сразу после старта, чтобы API не отдавал пустые
	// лидерборды до первого тика.
	if _, err := sched.RunNow(ctx, updateJob.Name()); err != nil {
		log.Warn("initial leaderboard rebuild failed", "error", err)
	}

	for _, info := range sched.ListJobs() {
		log.Info("job registered",
			"job", info.Name,
			"schedule", info.Schedule,
			"next_run", info.NextRun,
		)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("WordQuest Rankings worker is running",
		"leaderboard_interval", cfg.Scheduler.LeaderboardInterval.String(),
		"reward_offset", cfg.Scheduler.RewardOffset.String(),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())
	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Observability.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
