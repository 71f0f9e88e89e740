package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"habitboard/internal/clock"
	"habitboard/internal/config"
	"habitboard/internal/domain/repository"
	"habitboard/internal/infrastructure/cron"
	"habitboard/internal/infrastructure/db"
	"habitboard/internal/infrastructure/memory"
	"habitboard/internal/infrastructure/postgres"
	"habitboard/internal/infrastructure/sqlite"
	"habitboard/internal/service"
	"habitboard/internal/session"
	"habitboard/internal/syncqueue"
	transporthttp "habitboard/internal/transport/http"
	"habitboard/internal/transport/http/middleware"
	"habitboard/pkg/jwt"
)

// App represents the application
type App struct {
	cfg             *config.Config
	pool            *pgxpool.Pool
	sqliteStore     *sqlite.Store
	queue           *syncqueue.Queue
	sessions        *session.Manager
	server          *transporthttp.Server
	rolloverChecker *cron.RolloverChecker
	limiterStop     chan struct{}
}

// New creates a new application instance
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log.Printf("Starting %s (env: %s, storage: %s)",
		cfg.Service.Name, cfg.Service.Environment, cfg.Storage.Driver)

	app := &App{cfg: cfg}

	habits, history, streaks, rollovers, err := app.buildRepositories()
	if err != nil {
		return nil, err
	}

	clk := clock.System{}

	app.queue = syncqueue.New(habits, syncqueue.Options{
		BufferSize:     cfg.Sync.BufferSize,
		MaxAttempts:    cfg.Sync.MaxAttempts,
		RetryBaseDelay: cfg.Sync.RetryBaseDelay,
	})

	app.sessions = session.NewManager(habits, history, streaks)

	rolloverService := service.NewRolloverService(rollovers, clk)
	habitService := service.NewHabitService(app.queue, clk)
	statsService := service.NewStatsService(clk)

	// Archiving the previous day happens before any caller sees the
	// session. A failed rollover is logged but does not block login;
	// the checker retries on its next tick.
	app.sessions.SetOpenHook(func(ctx context.Context, sess *session.Session) error {
		if _, err := rolloverService.Run(ctx, sess); err != nil {
			log.Printf("Rollover on session open failed for user %s: %v", sess.UserID(), err)
		}
		return nil
	})

	if cfg.Scheduler.Enabled {
		app.rolloverChecker = cron.NewRolloverChecker(app.sessions, rolloverService, cfg.Scheduler.CheckInterval)
	}

	tokens := jwt.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer)
	authMiddleware := middleware.NewAuthMiddleware(tokens)
	rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RequestsPerMinute)
	app.limiterStop = make(chan struct{})
	rateLimiter.StartCleanup(app.limiterStop)

	habitHandler := transporthttp.NewHabitHandler(app.sessions, habitService)
	statsHandler := transporthttp.NewStatsHandler(app.sessions, statsService, clk)

	router := transporthttp.NewRouter(habitHandler, statsHandler, authMiddleware, rateLimiter)
	app.server = transporthttp.NewServer(&cfg.HTTP, router.Setup())

	return app, nil
}

// buildRepositories wires the persistence layer for the configured driver.
func (a *App) buildRepositories() (repository.HabitRepository, repository.HistoryRepository, repository.StreakRepository, repository.RolloverRepository, error) {
	switch a.cfg.Storage.Driver {
	case "postgres":
		pool, err := db.NewPostgresPool(context.Background(), &a.cfg.Database)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.pool = pool
		return postgres.NewHabitRepository(pool),
			postgres.NewHistoryRepository(pool),
			postgres.NewStreakRepository(pool),
			postgres.NewRolloverRepository(pool),
			nil

	case "sqlite":
		store := sqlite.NewStore(a.cfg.Storage.SQLitePath)
		if err := store.Init(); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to init sqlite store: %w", err)
		}
		a.sqliteStore = store
		return sqlite.NewHabitRepository(store),
			sqlite.NewHistoryRepository(store),
			sqlite.NewStreakRepository(store),
			sqlite.NewRolloverRepository(store),
			nil

	case "memory":
		store := memory.NewStore()
		return memory.NewHabitRepository(store),
			memory.NewHistoryRepository(store),
			memory.NewStreakRepository(store),
			memory.NewRolloverRepository(store),
			nil

	default:
		return nil, nil, nil, nil, fmt.Errorf("unknown storage driver: %q", a.cfg.Storage.Driver)
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	a.queue.Start()

	if a.rolloverChecker != nil {
		if err := a.rolloverChecker.Start(); err != nil {
			return fmt.Errorf("failed to start rollover checker: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on port %d", a.cfg.HTTP.Port)
		errCh <- a.server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Printf("Received signal: %v, shutting down...", sig)
	}

	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx := context.Background()

	if err := a.server.Stop(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	if a.rolloverChecker != nil {
		a.rolloverChecker.Stop()
	}

	// Drains pending write intents before the stores go away.
	a.queue.Stop()

	close(a.limiterStop)

	if a.pool != nil {
		a.pool.Close()
	}
	if a.sqliteStore != nil {
		if err := a.sqliteStore.Close(); err != nil {
			log.Printf("SQLite close error: %v", err)
		}
	}

	log.Println("Shutdown complete")
	return nil
}
