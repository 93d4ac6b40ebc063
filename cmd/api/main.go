// Package main - точка входа REST API WordQuest Rankings.
//
// API обслуживает мобильное приложение: чтение лидербордов и позиций,
// запись ответов, заполнение профиля, привязка родителя и получение наград.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/wordquest-app/wordquest-rankings/config"
	"github.com/wordquest-app/wordquest-rankings/internal/application/command"
	"github.com/wordquest-app/wordquest-rankings/internal/application/query"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"
	httpiface "github.com/wordquest-app/wordquest-rankings/internal/interface/http"
	"github.com/wordquest-app/wordquest-rankings/internal/infrastructure/persistence/postgres"
	"github.com/wordquest-app/wordquest-rankings/internal/infrastructure/persistence/redis"
	"github.com/wordquest-app/wordquest-rankings/pkg/logger"
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
	logOpts := logger.DefaultOptions()
	logOpts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	log := logger.New(logOpts)

	log.Info("starting WordQuest Rankings API",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("timezone", cfg.App.Timezone),
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

	log.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (optional — leaderboard reads fall back to Postgres snapshots)
	// ─────────────────────────────────────────────────────────────────────────
	var cache leaderboard.Cache
	var redisClient *redis.Client

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

		redisClient, err = redis.NewClient(ctx, redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			cache = redis.NewLeaderboardCache(redisClient)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REPOSITORIES & APPLICATION HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	playerRepo := postgres.NewPlayerRepository(dbConn)
	leaderboardRepo := postgres.NewLeaderboardRepository(dbConn)
	rewardRepo := postgres.NewRewardRepository(dbConn)

	deps := httpiface.Dependencies{
		RecordAnswerHandler:    command.NewRecordAnswerHandler(playerRepo),
		CompleteProfileHandler: command.NewCompleteProfileHandler(playerRepo),
		LinkParentHandler:      command.NewLinkParentHandler(playerRepo),
		ClaimRewardHandler:     command.NewClaimRewardHandler(rewardRepo),
		GetLeaderboardHandler:  query.NewGetLeaderboardHandler(leaderboardRepo, cache, playerRepo),
		GetPlayerRankHandler:   query.NewGetPlayerRankHandler(leaderboardRepo),
		ListRewardsHandler:     query.NewListRewardsHandler(rewardRepo),
		ChallengeResultHandler: query.NewChallengeResultHandler(playerRepo),
		Logger:                 log,
		HealthChecker: &backendHealthChecker{
			db:    dbConn,
			redis: redisClient,
		},
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	serverCfg := httpiface.DefaultConfig()
	if host, port, err := splitAddr(cfg.HTTP.Addr); err == nil {
		serverCfg.Host = host
		serverCfg.Port = port
	}
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.IdleTimeout = cfg.HTTP.IdleTimeout

	server := httpiface.NewServer(serverCfg, deps)
	errCh := server.StartAsync()

	log.Info("WordQuest Rankings API is running",
		logger.String("address", serverCfg.Address()),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH CHECK
// ══════════════════════════════════════════════════════════════════════════════

// backendHealthChecker проверяет доступность Postgres и Redis.
// Redis опционален: его недоступность не снимает готовность API.
type backendHealthChecker struct {
	db    *postgres.Connection
	redis *redis.Client
}

func (h *backendHealthChecker) Check(ctx context.Context) httpiface.HealthStatus {
	if err := h.db.Ping(ctx); err != nil {
		return httpiface.HealthStatus{
			Healthy: false,
			Ready:   false,
			Message: "database unreachable: " + err.Error(),
		}
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			return httpiface.HealthStatus{
				Healthy: true,
				Ready:   true,
				Message: "cache degraded: " + err.Error(),
			}
		}
	}

	return httpiface.HealthStatus{Healthy: true, Ready: true}
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// splitAddr разбирает адрес вида ":8080" или "0.0.0.0:8080".
func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	if host == "" {
		host = "0.0.0.0"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}
