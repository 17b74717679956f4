// Package main - фоновый обновлятор Schedule Hub.
//
// Worker по cron-расписанию перечитывает ленты университета для всех
// зарегистрированных подгрупп: заново собирает объединённые расписания,
// сохраняет снимки в Postgres и обновляет Redis-кеш. Так пользовательские
// запросы почти всегда обслуживаются из кеша, а при недоступности API
// остаётся свежий снимок.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/szgmu-hub/schedule-hub/config"
	"github.com/szgmu-hub/schedule-hub/internal/application/command"
	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
	"github.com/szgmu-hub/schedule-hub/internal/infrastructure/external/szgmu"
	"github.com/szgmu-hub/schedule-hub/internal/infrastructure/persistence/postgres"
	"github.com/szgmu-hub/schedule-hub/internal/infrastructure/persistence/redis"
	"github.com/szgmu-hub/schedule-hub/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ И ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required for the worker")
	}

	log := setupLogger(cfg)
	log.Info("starting Schedule Hub worker",
		"env", string(cfg.App.Environment),
		"refresh_cron", cfg.Worker.RefreshCron,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. POSTGRES И МИГРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		conn.Close()
	}()

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	groupRepo := postgres.NewGroupRepository(conn)
	snapshotRepo := postgres.NewSnapshotRepository(conn)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var cache schedule.Cache
	if !cfg.Redis.Disabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
		} else {
			defer redisCache.Close()
			cache = redis.NewScheduleCache(redisCache, cfg.Redis.ScheduleTTL)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. КЛИЕНТ API И МЕРДЖЕР
	// ─────────────────────────────────────────────────────────────────────────
	rings, classifier, err := config.LoadRings(cfg.Export.RingsPath)
	if err != nil {
		return fmt.Errorf("failed to load ring registry: %w", err)
	}
	merger := schedule.NewMerger(schedule.NewNormalizer(rings, classifier))

	clientCfg := szgmu.DefaultClientConfig(cfg.SZGMU.BaseURL)
	clientCfg.Timeout = cfg.SZGMU.RequestTimeout
	clientCfg.MaxRetries = cfg.SZGMU.MaxRetries
	clientCfg.RetryBaseDelay = cfg.SZGMU.RetryBaseDelay
	clientCfg.RetryMaxDelay = cfg.SZGMU.RetryMaxDelay
	clientCfg.BreakerFailureThreshold = cfg.SZGMU.CircuitBreakerThreshold
	clientCfg.BreakerTimeout = cfg.SZGMU.CircuitBreakerTimeout
	clientCfg.BreakerHalfOpenMax = cfg.SZGMU.CircuitBreakerHalfOpenMax
	clientCfg.RateLimiterConfig.RequestsPerMinute = cfg.SZGMU.RateLimit
	clientCfg.RateLimiterConfig.BurstSize = cfg.SZGMU.RateLimitBurst
	clientCfg.Logger = log
	feedClient := szgmu.NewClient(clientCfg)

	refreshHandler := command.NewRefreshGroupHandler(
		groupRepo, feedClient, snapshotRepo, cache, merger, cfg.Redis.ScheduleTTL, log)
	bulkHandler := command.NewRefreshAllGroupsHandler(groupRepo, refreshHandler, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. CRON-РАСПИСАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	runRefresh := func() {
		refreshCtx, cancel := context.WithTimeout(ctx, cfg.Worker.RefreshTimeout)
		defer cancel()

		result, err := bulkHandler.Handle(refreshCtx, command.RefreshAllGroupsCommand{})
		if err != nil {
			log.Error("bulk refresh failed", "error", err)
			return
		}
		for subgroup, refreshErr := range result.Errors {
			log.Warn("subgroup refresh failed", "subgroup", subgroup, "error", refreshErr)
		}
	}

	cronLog := logger.New(logger.Options{
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: false,
	}).With(logger.Component("cron"))

	scheduler := cron.New(
		cron.WithLogger(cron.PrintfLogger(cronPrintf{cronLog})),
		cron.WithChain(cron.Recover(cron.PrintfLogger(cronPrintf{cronLog}))),
	)
	if _, err := scheduler.AddFunc(cfg.Worker.RefreshCron, runRefresh); err != nil {
		return fmt.Errorf("invalid refresh cron %q: %w", cfg.Worker.RefreshCron, err)
	}

	// Первый прогон сразу при старте: после деплоя кеш и снимки должны
	// наполниться, не дожидаясь первого срабатывания cron.
	go runRefresh()

	scheduler.Start()
	log.Info("Schedule Hub worker is running")

	// ─────────────────────────────────────────────────────────────────────────
	// 6. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// cronPrintf адаптирует pkg/logger к printf-логгеру robfig/cron.
type cronPrintf struct {
	log *logger.Logger
}

func (c cronPrintf) Printf(format string, args ...interface{}) {
	c.log.Infof(format, args...)
}

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.App.Environment == config.EnvProduction {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
