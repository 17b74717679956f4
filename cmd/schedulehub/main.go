// Package main - CLI-экспортёр Schedule Hub.
//
// Однократный прогон: собрать объединённое расписание подгруппы за активный
// (или заданный) семестр и выгрузить его в файлы .ics и .xlsx.
//
// Postgres и Redis опциональны: без базы профиль подгруппы строится из
// флагов, без Redis кеш просто не используется. Обязателен только доступ к
// API университета.
//
// Примеры:
//
//	schedulehub -subgroup 103а
//	schedulehub -subgroup 103а -speciality "лечебное дело" -course 1 -register
//	schedulehub -subgroup 103а -refresh -no-cache
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/szgmu-hub/schedule-hub/config"
	"github.com/szgmu-hub/schedule-hub/internal/application/command"
	"github.com/szgmu-hub/schedule-hub/internal/application/query"
	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
	"github.com/szgmu-hub/schedule-hub/internal/infrastructure/export"
	"github.com/szgmu-hub/schedule-hub/internal/infrastructure/external/szgmu"
	"github.com/szgmu-hub/schedule-hub/internal/infrastructure/persistence/postgres"
	"github.com/szgmu-hub/schedule-hub/internal/infrastructure/persistence/redis"
	"github.com/szgmu-hub/schedule-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ФЛАГИ
// ══════════════════════════════════════════════════════════════════════════════

type cliFlags struct {
	subgroup   string
	speciality string
	course     string
	stream     string
	season     string
	year       int
	outputDir  string
	ringsPath  string
	register   bool
	refresh    bool
	noCache    bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.subgroup, "subgroup", "", "подгруппа, например 103а (обязательно)")
	flag.StringVar(&f.speciality, "speciality", "", "специальность для поиска лент")
	flag.StringVar(&f.course, "course", "", "номер курса для поиска лент")
	flag.StringVar(&f.stream, "stream", "", "поток для поиска лент")
	flag.StringVar(&f.season, "season", "", "семестр: autumn или spring (по умолчанию - текущий)")
	flag.IntVar(&f.year, "year", 0, "год начала семестра (вместе с -season)")
	flag.StringVar(&f.outputDir, "output", "", "каталог выгрузки (по умолчанию из конфигурации)")
	flag.StringVar(&f.ringsPath, "rings", "", "путь к YAML-файлу сетки звонков")
	flag.BoolVar(&f.register, "register", false, "сохранить профиль подгруппы в базе")
	flag.BoolVar(&f.refresh, "refresh", false, "принудительно обновить и сохранить снимок")
	flag.BoolVar(&f.noCache, "no-cache", false, "не читать кеш")
	flag.Parse()
	return f
}

// semesterWindow строит окно семестра из флагов; nil - авто-определение.
func (f cliFlags) semesterWindow() (*schedule.SemesterWindow, error) {
	if f.season == "" {
		return nil, nil
	}
	if f.year == 0 {
		return nil, errors.New("флаг -season требует -year")
	}
	var w schedule.SemesterWindow
	switch schedule.Season(f.season) {
	case schedule.SeasonAutumn:
		w = schedule.AutumnWindow(f.year)
	case schedule.SeasonSpring:
		w = schedule.SpringWindow(f.year)
	default:
		return nil, fmt.Errorf("неизвестный семестр %q (autumn|spring)", f.season)
	}
	return &w, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "schedulehub: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	flags := parseFlags()
	if flags.subgroup == "" {
		flag.Usage()
		return errors.New("флаг -subgroup обязателен")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("загрузка конфигурации: %w", err)
	}
	if flags.outputDir != "" {
		cfg.Export.OutputDir = flags.outputDir
	}
	if flags.ringsPath != "" {
		cfg.Export.RingsPath = flags.ringsPath
	}

	slogger := setupSlog(cfg)
	log := logger.New(logger.Options{Level: logger.ParseLevel(cfg.Observability.LogLevel), AddCaller: false})
	log = log.With(logger.Component("cli"))

	window, err := flags.semesterWindow()
	if err != nil {
		return err
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Сетка звонков и мерджер
	// ─────────────────────────────────────────────────────────────────────────
	rings, classifier, err := config.LoadRings(cfg.Export.RingsPath)
	if err != nil {
		return fmt.Errorf("загрузка сетки звонков: %w", err)
	}
	merger := schedule.NewMerger(schedule.NewNormalizer(rings, classifier))

	// ─────────────────────────────────────────────────────────────────────────
	// Клиент API университета
	// ─────────────────────────────────────────────────────────────────────────
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
	clientCfg.Logger = slogger
	feedClient := szgmu.NewClient(clientCfg)

	// ─────────────────────────────────────────────────────────────────────────
	// Хранилища (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		groups    schedule.GroupRepository = localProfile{flags: flags}
		snapshots schedule.SnapshotRepository
	)
	if cfg.Database.URL != "" {
		conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("подключение к базе: %w", err)
		}
		defer conn.Close()
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			return fmt.Errorf("миграции: %w", err)
		}
		groups = postgres.NewGroupRepository(conn)
		snapshots = postgres.NewSnapshotRepository(conn)
	}

	var cache schedule.Cache
	if !cfg.Redis.Disabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("Redis недоступен, кеш отключён", logger.Err(err))
		} else {
			defer redisCache.Close()
			cache = redis.NewScheduleCache(redisCache, cfg.Redis.ScheduleTTL)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Сценарий запуска
	// ─────────────────────────────────────────────────────────────────────────
	if flags.register {
		if cfg.Database.URL == "" {
			return errors.New("флаг -register требует DATABASE_URL")
		}
		registerHandler := command.NewRegisterGroupHandler(groups, slogger)
		res, err := registerHandler.Handle(ctx, command.RegisterGroupCommand{
			Subgroup:     flags.subgroup,
			Speciality:   flags.speciality,
			CourseNumber: flags.course,
			GroupStream:  flags.stream,
		})
		if err != nil {
			return err
		}
		log.Info("профиль подгруппы сохранён",
			logger.Subgroup(res.Profile.Subgroup.String()),
			logger.Bool("created", res.Created))
	}

	if flags.refresh {
		if snapshots == nil {
			return errors.New("флаг -refresh требует DATABASE_URL")
		}
		refreshHandler := command.NewRefreshGroupHandler(
			groups, feedClient, snapshots, cache, merger, cfg.Redis.ScheduleTTL, slogger)
		res, err := refreshHandler.Handle(ctx, command.RefreshGroupCommand{
			Subgroup: flags.subgroup,
			Window:   window,
		})
		if err != nil {
			return err
		}
		log.Info("снимок обновлён",
			logger.LessonCount(res.LessonCount),
			logger.SkipCount(res.SkippedCount))
	}

	buildHandler := query.NewBuildScheduleHandler(
		groups, feedClient, snapshots, cache, merger, cfg.Redis.ScheduleTTL, slogger)

	started := time.Now()
	result, err := buildHandler.Handle(ctx, query.BuildScheduleQuery{
		Subgroup:  flags.subgroup,
		Window:    window,
		SkipCache: flags.noCache,
	})
	if err != nil {
		return err
	}

	log.Info("расписание собрано",
		logger.Subgroup(result.Schedule.Subgroup.String()),
		logger.Semester(result.Window.String()),
		logger.LessonCount(len(result.Schedule.Lessons)),
		logger.SkipCount(len(result.Schedule.Skips)),
		logger.Bool("from_cache", result.FromCache),
		logger.Bool("stale", result.Stale),
		logger.Latency(time.Since(started)))

	if result.Schedule.IsEmpty() {
		log.Warn("занятий не найдено, файлы не записаны")
		return nil
	}

	writer := export.NewFileWriter(cfg.Export.OutputDir, slogger)
	paths, err := writer.WriteAll(result.Schedule)
	if err != nil {
		return fmt.Errorf("выгрузка файлов: %w", err)
	}
	for _, path := range paths {
		fmt.Println(path)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// localProfile - профиль подгруппы из флагов для запуска без базы данных.
type localProfile struct {
	flags cliFlags
}

func (p localProfile) Save(context.Context, *schedule.GroupProfile) error {
	return shared.NewDomainError("cli", "Save", shared.ErrServiceUnavailable, "база данных не настроена")
}

func (p localProfile) GetBySubgroup(_ context.Context, subgroup string) (*schedule.GroupProfile, error) {
	canonical, err := shared.NewSubgroup(subgroup)
	if err != nil {
		return nil, err
	}
	return &schedule.GroupProfile{
		Subgroup:     canonical,
		Speciality:   p.flags.speciality,
		CourseNumber: p.flags.course,
		GroupStream:  p.flags.stream,
	}, nil
}

func (p localProfile) List(context.Context) ([]*schedule.GroupProfile, error) {
	return nil, nil
}

// setupSlog настраивает структурированное логирование инфраструктурных слоёв.
func setupSlog(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.App.Environment == config.EnvProduction {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
