package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskpulse-api/internal/config"
	"github.com/phrazzld/taskpulse-api/internal/events"
	"github.com/phrazzld/taskpulse-api/internal/platform/postgres"
	"github.com/phrazzld/taskpulse-api/internal/platform/redisstore"
	"github.com/phrazzld/taskpulse-api/internal/realtime"
	"github.com/phrazzld/taskpulse-api/internal/service"
	"github.com/phrazzld/taskpulse-api/internal/service/auth"
	"github.com/phrazzld/taskpulse-api/internal/store"
	"github.com/redis/go-redis/v9"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	userStore store.UserStore
	taskStore store.TaskStore

	jwtService auth.JWTService
	verifier   *auth.IdentityVerifier

	// Live notification layer
	registry *events.Registry
	hub      *realtime.Hub
	notifier *events.Router

	userService service.UserService
	taskService service.TaskService
}

// newApplication creates a new application instance with all dependencies initialized.
// The database connection must already be established. When redis.url is
// configured the token denylist is shared through Redis; otherwise it is
// kept in process.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	var denylist auth.Denylist = auth.NewMemoryDenylist()
	if cfg.Redis.URL != "" {
		app.redis, err = redisstore.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		denylist = redisstore.NewTokenDenylist(app.redis, logger)
		logger.Info("Token denylist backed by redis")
	}
	app.verifier = auth.NewIdentityVerifier(app.jwtService, denylist, logger)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	app.registry = events.NewRegistry()
	app.hub = realtime.NewHub(cfg.Realtime, logger)
	app.notifier = events.NewRouter(app.registry, app.hub, logger)

	app.userService = service.NewUserService(
		app.userStore,
		db,
		auth.NewBcryptHasher(cfg.Auth.BCryptCost),
		auth.NewBcryptVerifier(),
		logger,
	)

	app.taskService, err = service.NewTaskService(app.taskStore, app.userStore, db, app.notifier, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server and blocks until ctx is canceled or the
// server fails.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// sessionRevoker ends a session on logout: the token is denylisted and any
// live connection opened with it is closed.
type sessionRevoker struct {
	verifier *auth.IdentityVerifier
	hub      *realtime.Hub
}

// Revoke implements api.TokenRevoker.
func (s sessionRevoker) Revoke(ctx context.Context, token string) error {
	if err := s.verifier.Revoke(ctx, token); err != nil {
		return err
	}
	s.hub.DisconnectToken(token)
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Live connections are closed with a going-away frame.
	if app.hub != nil {
		app.hub.Close()
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
