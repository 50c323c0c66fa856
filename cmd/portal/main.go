// Package main - точка входа портала NextEdu.
//
// Процесс поднимает каталог пользователей поверх выбранного хранилища
// снимков (PostgreSQL, файл или память), HTTP API, планировщик фоновых
// задач и, если задан ключ, клиент ассистента NextEdu Helper.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nextedu/portal/config"
	"github.com/nextedu/portal/internal/application/command"
	"github.com/nextedu/portal/internal/application/eventhandler"
	"github.com/nextedu/portal/internal/application/query"
	"github.com/nextedu/portal/internal/domain/academic"
	"github.com/nextedu/portal/internal/domain/chatbot"
	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/internal/domain/shared"
	"github.com/nextedu/portal/internal/infrastructure/external/gemini"
	"github.com/nextedu/portal/internal/infrastructure/messaging"
	"github.com/nextedu/portal/internal/infrastructure/metrics"
	"github.com/nextedu/portal/internal/infrastructure/persistence/local"
	"github.com/nextedu/portal/internal/infrastructure/persistence/postgres"
	"github.com/nextedu/portal/internal/infrastructure/persistence/redis"
	"github.com/nextedu/portal/internal/infrastructure/scheduler"
	"github.com/nextedu/portal/internal/infrastructure/scheduler/jobs"
	"github.com/nextedu/portal/internal/infrastructure/security"
	httpapi "github.com/nextedu/portal/internal/interface/http"
	"github.com/nextedu/portal/internal/interface/http/health"
	"github.com/nextedu/portal/pkg/circuitbreaker"
	"github.com/nextedu/portal/pkg/logger"
	"github.com/nextedu/portal/pkg/timeutil"
)

// staleRegistrationAge - заявка старше этого считается забытой.
const staleRegistrationAge = 72 * time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ И ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	log.Info("starting NextEdu portal",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"timezone", timeutil.CampusTZ.String(),
	)

	m := metrics.New()

	// ─────────────────────────────────────────────────────────────────────────
	// 2. ХРАНИЛИЩЕ СНИМКОВ
	// ─────────────────────────────────────────────────────────────────────────
	checks := health.NewComposite(cfg.App.Version)

	snapshots, versions, cleanup, err := openSnapshotStore(ctx, cfg, log, checks)
	if err != nil {
		return err
	}
	defer cleanup()

	var cache *redis.Cache
	if !cfg.Redis.Disabled {
		cache, err = redis.NewCache(ctx, redisConfig(cfg.Redis))
		if err != nil {
			log.Warn("redis unavailable, caching disabled", "error", err)
			cache = nil
		} else {
			defer cache.Close()
			checks.AddOptional("redis", health.PingCheck(cache))
			log.Info("redis connection established")
		}
	}

	if cache != nil && cfg.Features.IsEnabled(config.FeatureSnapshotCache, nil) {
		snapshots = redis.NewSnapshotCache(snapshots, cache, postgres.DefaultSnapshotName, cfg.Redis.SnapshotTTL, log)
		log.Info("snapshot reads go through redis")
	}
	snapshots = observedSnapshots{SnapshotStore: snapshots, metrics: m}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. КАТАЛОГ
	// ─────────────────────────────────────────────────────────────────────────
	synthOpts := []academic.Option{academic.WithBaseYear(cfg.Academic.BaseYear)}
	var rnd academic.RandomSource
	if cfg.Academic.Seed != 0 {
		rnd = academic.NewRandomSource(cfg.Academic.Seed)
		synthOpts = append(synthOpts, academic.WithRandomSource(rnd))
	}

	store := directory.NewStore(directory.Config{
		Snapshots:    snapshots,
		Hasher:       security.NewBcryptHasher(cfg.Academic.BcryptCost),
		Synthesizer:  academic.NewSynthesizer(synthOpts...),
		Random:       rnd,
		NewID:        uuid.NewString,
		Clock:        timeutil.Now,
		WriteThrough: cfg.Scheduler.WriteThrough,
	})

	seeded, err := store.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open directory: %w", err)
	}
	stats := store.Stats()
	log.Info("directory loaded",
		"seeded", seeded,
		"students", stats.Students,
		"teachers", stats.Teachers,
		"pending_registrations", stats.Registrations,
	)
	checks.Add("directory", func(ctx context.Context) error {
		if st := store.Stats(); st.Students+st.Teachers == 0 {
			return errors.New("directory is empty")
		}
		return nil
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 4. СОБЫТИЯ
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultConfig()
	busCfg.Logger = log
	busCfg.Observer = m
	bus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		log.Info("closing event bus...")
		_ = bus.Close()
	}()

	if err := eventhandler.NewActivityRecorder(store, log).Register(bus); err != nil {
		return fmt.Errorf("failed to register activity recorder: %w", err)
	}
	if err := bus.Subscribe(shared.EventStudentEnrolled, func(shared.Event) error {
		m.IncHistoriesGenerated()
		return nil
	}); err != nil {
		return fmt.Errorf("failed to subscribe history counter: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. КЭШ ИСТОРИИ, ЛИМИТЫ, АССИСТЕНТ
	// ─────────────────────────────────────────────────────────────────────────
	var (
		recordCache query.RecordCache
		invalidator command.HistoryInvalidator
		limiter     httpapi.RateLimiter = httpapi.NewMemoryRateLimiter(cfg.HTTP.RateLimitRPS, time.Second)
	)
	if cache != nil {
		if cfg.Features.IsEnabled(config.FeatureHistoryCache, nil) {
			hc := redis.NewHistoryCache(cache, cfg.Redis.HistoryTTL)
			recordCache, invalidator = hc, hc
		}
		limiter = redis.NewRateLimiter(cache, cfg.HTTP.RateLimitRPS, time.Second)
	}

	var assistant chatbot.Assistant
	if cfg.ChatbotEnabled() {
		gcfg := gemini.DefaultConfig(cfg.Chatbot.APIKey)
		gcfg.BaseURL = cfg.Chatbot.BaseURL
		gcfg.Model = cfg.Chatbot.Model
		gcfg.SystemPrompt = cfg.Chatbot.SystemPrompt
		gcfg.Timeout = cfg.Chatbot.Timeout
		gcfg.Logger = log
		assistant = gemini.NewClient(gcfg, gemini.WithBreaker(circuitbreaker.ChatbotBreaker(breakerLogger(log))))
		log.Info("chatbot enabled", "model", gcfg.Model)
	} else {
		log.Warn("chatbot disabled, answers fall back to the apology message")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ПЛАНИРОВЩИК
	// ─────────────────────────────────────────────────────────────────────────
	var jobRunner httpapi.JobRunner
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(scheduler.Config{
			Logger:     log,
			Timezone:   timeutil.CampusTZ,
			JobTimeout: cfg.Scheduler.JobTimeout,
			Observer:   m,
		})
		if err := registerJobs(sched, cfg, store, bus, m, log); err != nil {
			return err
		}
		jobRunner = sched
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HTTP
	// ─────────────────────────────────────────────────────────────────────────
	fees := query.NewFeesHandler(store, timeutil.Now)
	server := httpapi.NewServer(httpapi.Config{
		Host:           cfg.HTTP.Host,
		Port:           cfg.HTTP.Port,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    60 * time.Second,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		AdminAPIKey:    cfg.Admin.APIKey,
	}, httpapi.Dependencies{
		Login: command.NewLoginHandler(store, command.AdminAccount{
			Username: cfg.Admin.Username,
			Password: cfg.Admin.Password,
		}, m),
		SubmitRegistration: command.NewSubmitRegistrationHandler(store, bus, log),
		DecideRegistration: command.NewDecideRegistrationHandler(store, bus, log),
		People:             command.NewPeopleHandler(store, invalidator, bus, log),
		Faculty:            command.NewFacultyHandler(store, bus, log),
		Assistant:          command.NewAskAssistantHandler(assistant, m, log),

		StudentDashboard: query.NewStudentDashboardHandler(store, fees, timeutil.Now),
		SemesterRecord:   query.NewSemesterRecordHandler(store, recordCache, m, log),
		Fees:             fees,
		TeacherDashboard: query.NewTeacherDashboardHandler(store, timeutil.Now),
		Admin:            query.NewAdminHandler(store, versions, log, timeutil.Now),

		Snapshots:     store,
		Jobs:          jobRunner,
		HealthChecker: checks,
		Features:      cfg.Features,
		RateLimiter:   limiter,
		Metrics:       metricsOrNil(cfg, m),
		Logger:        newRequestLogger(cfg),
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ЗАПУСК И GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	if sched != nil {
		if err := sched.Start(gctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if sched != nil {
			if err := sched.Stop(); err != nil && !errors.Is(err, scheduler.ErrSchedulerNotRunning) {
				errs = append(errs, fmt.Errorf("scheduler stop: %w", err))
			}
		}
		if saved, err := store.Flush(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("final flush: %w", err))
		} else if saved {
			log.Info("unsaved changes flushed")
		}
		return errors.Join(errs...)
	})

	log.Info("NextEdu portal is running", "address", cfg.HTTP.Address())
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// WIRING HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// openSnapshotStore выбирает хранилище: PostgreSQL, если задан URL,
// иначе файл, иначе память. versions != nil только для PostgreSQL.
func openSnapshotStore(ctx context.Context, cfg *config.Config, log *slog.Logger, checks *health.Composite) (directory.SnapshotStore, query.SnapshotVersions, func(), error) {
	switch {
	case cfg.Database.URL != "":
		log.Info("connecting to database...")
		conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL, postgres.PoolOptions{
			MaxConns:        int32(cfg.Database.MaxConns),
			MinConns:        int32(cfg.Database.MinConns),
			MaxConnLifetime: cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		log.Info("checking database migrations...")
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			conn.Close()
			return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database schema is up to date")

		checks.Add("postgres", health.PingCheck(conn))
		repo := postgres.NewSnapshotRepository(conn,
			postgres.WithBreaker(circuitbreaker.DatabaseBreaker(breakerLogger(log))),
		)
		cleanup := func() {
			log.Info("closing database connection...")
			conn.Close()
		}
		return repo, repo, cleanup, nil

	case cfg.Database.SnapshotFile != "":
		log.Info("using snapshot file", "path", cfg.Database.SnapshotFile)
		fs := local.NewFileStore(cfg.Database.SnapshotFile)
		checks.Add("snapshot_file", func(ctx context.Context) error {
			_, err := fs.Load(ctx)
			if errors.Is(err, shared.ErrSnapshotNotFound) {
				return nil
			}
			return err
		})
		return fs, nil, func() {}, nil

	default:
		log.Warn("no DATABASE_URL or SNAPSHOT_FILE, directory lives in memory only")
		return local.NewMemoryStore(), nil, func() {}, nil
	}
}

func registerJobs(sched *scheduler.Scheduler, cfg *config.Config, store *directory.Store, bus shared.EventPublisher, m *metrics.Metrics, log *slog.Logger) error {
	if !cfg.Scheduler.WriteThrough {
		if err := sched.Register(jobs.NewAutosaveSnapshotJob(store, bus, log), scheduler.Every(cfg.Scheduler.AutosaveInterval)); err != nil {
			return fmt.Errorf("failed to register autosave job: %w", err)
		}
	}
	if err := sched.Register(jobs.NewDirectoryGaugesJob(store, m), scheduler.Every(15*time.Second)); err != nil {
		return fmt.Errorf("failed to register gauges job: %w", err)
	}
	digest := jobs.NewRegistrationDigestJob(store, staleRegistrationAge, log)
	if err := sched.Register(digest, scheduler.MustParseCronExpression(scheduler.DailyMorning, timeutil.CampusTZ)); err != nil {
		return fmt.Errorf("failed to register digest job: %w", err)
	}
	return nil
}

func redisConfig(rc config.RedisConfig) redis.Config {
	c := redis.DefaultConfig()
	c.URL = rc.URL
	c.Host = rc.Host
	c.Port = rc.Port
	c.Password = rc.Password
	c.DB = rc.DB
	c.PoolSize = rc.PoolSize
	c.MinIdleConns = rc.MinIdleConns
	c.DialTimeout = rc.DialTimeout
	c.ReadTimeout = rc.ReadTimeout
	c.WriteTimeout = rc.WriteTimeout
	return c
}

func breakerLogger(log *slog.Logger) circuitbreaker.StateChangeFunc {
	return func(name string, from, to circuitbreaker.State) {
		log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
	}
}

func metricsOrNil(cfg *config.Config, m *metrics.Metrics) httpapi.Metrics {
	if !cfg.Observability.MetricsEnabled {
		return nil
	}
	return m
}

// observedSnapshots считает сохранения снимка для /metrics.
type observedSnapshots struct {
	directory.SnapshotStore
	metrics *metrics.Metrics
}

func (o observedSnapshots) Save(ctx context.Context, snap *directory.Snapshot) error {
	err := o.SnapshotStore.Save(ctx, snap)
	o.metrics.ObserveSnapshotSave(err)
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// LOGGING
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает slog для инфраструктуры.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch logger.ParseLevel(cfg.Observability.LogLevel) {
	case logger.LevelDebug:
		opts.Level = slog.LevelDebug
	case logger.LevelWarn:
		opts.Level = slog.LevelWarn
	case logger.LevelError:
		opts.Level = slog.LevelError
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler).With("service", cfg.App.Name)
	slog.SetDefault(log)
	return log
}

// newRequestLogger создаёт логгер HTTP-слоя.
func newRequestLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	opts.Service = cfg.App.Name
	return logger.New(opts)
}
