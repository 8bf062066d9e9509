package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/events"
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/phrazzld/tasks-api/internal/platform/redis"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/phrazzld/tasks-api/internal/worker"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *goredis.Client

	userStore store.UserStore
	taskStore store.TaskStore

	hashPool   *worker.Pool
	hasher     auth.PasswordHasher
	jwtService auth.JWTService
	revoker    auth.TokenRevoker

	eventEmitter events.EventEmitter

	accountService service.AccountService
	taskService    service.TaskService
}

// newApplication creates a new application instance with all dependencies initialized.
// The database and redis connections must already be established.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB, rdb *goredis.Client) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		redis:  rdb,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	app.hashPool = worker.NewPool(worker.PoolConfig{
		WorkerCount: cfg.Worker.HashWorkers,
		QueueSize:   cfg.Worker.QueueSize,
	}, logger)
	app.hashPool.Start()

	app.hasher, err = auth.NewBcryptHasher(cfg.Auth.BcryptCost, app.hashPool)
	if err != nil {
		app.hashPool.Stop()
		return nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}

	app.revoker = redis.NewTokenRevoker(rdb, logger)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewLogHandler(logger))
	app.eventEmitter = emitter

	app.accountService = service.NewAccountService(app.userStore, app.hasher, app.eventEmitter, logger)
	app.taskService = service.NewTaskService(app.taskStore, db, app.eventEmitter, logger)

	logger.Info("Application initialized successfully",
		"hash_workers", app.hashPool.WorkerCount(),
		"bcrypt_cost", cfg.Auth.BcryptCost)
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns once ctx is cancelled and the server has shut down.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.hashPool != nil {
		app.hashPool.Stop()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing redis connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
