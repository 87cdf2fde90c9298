package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/silabas-api/internal/config"
	"github.com/phrazzld/silabas-api/internal/platform/sqlstore"
	"github.com/phrazzld/silabas-api/internal/platform/telemetry"
	"github.com/phrazzld/silabas-api/internal/service"
	"github.com/phrazzld/silabas-api/internal/service/activity"
	"github.com/phrazzld/silabas-api/internal/service/auth"
	"github.com/phrazzld/silabas-api/internal/service/wordengine"
	"github.com/phrazzld/silabas-api/internal/store"
)

// application holds the wired dependencies of the server.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sqlstore.DB

	// Stores
	userStore      store.UserStore
	consonantStore store.ConsonantStore
	wordStore      store.WordStore
	progressStore  store.ProgressStore
	activityStore  store.ActivityStore
	sessionStore   store.ActivitySessionStore

	// Service interfaces
	jwtService       auth.JWTService
	userService      service.UserService
	consonantService service.ConsonantService
	progressService  service.ProgressService
	activityService  activity.Service
	generator        wordengine.Generator

	shutdownTelemetry telemetry.ShutdownFunc
}

// newApplication wires stores and services on top of an open database.
// The application takes ownership of db and closes it in cleanup.
func newApplication(cfg *config.Config, db *sqlstore.DB, logger *slog.Logger) (*application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	app := &application{
		config:         cfg,
		logger:         logger,
		db:             db,
		userStore:      sqlstore.NewUserStore(db, logger),
		consonantStore: sqlstore.NewConsonantStore(db, logger),
		wordStore:      sqlstore.NewWordStore(db, logger),
		progressStore:  sqlstore.NewProgressStore(db, logger),
		activityStore:  sqlstore.NewActivityStore(db, logger),
		sessionStore:   sqlstore.NewActivitySessionStore(db, logger),
		jwtService:     jwtService,
	}

	app.userService = service.NewUserService(
		app.userStore,
		auth.NewBcryptHasher(cfg.Auth.BCryptCost),
		db,
		logger,
	)
	app.consonantService = service.NewConsonantService(app.consonantStore, db, logger)
	app.progressService = service.NewProgressService(
		app.progressStore,
		app.sessionStore,
		app.consonantStore,
		app.userStore,
		db,
		logger,
	)
	app.activityService = activity.NewService(
		app.consonantStore,
		app.activityStore,
		app.sessionStore,
		app.progressStore,
		db,
		logger,
	)
	app.generator = wordengine.NewGenerator(app.consonantStore, app.wordStore, logger)

	return app, nil
}

// bootstrap loads everything a command needs: logger, database and services.
func bootstrap(ctx context.Context, cfg *config.Config) (*application, error) {
	logger, err := setupAppLogger(cfg)
	if err != nil {
		return nil, err
	}
	logConfigSummary(cfg, logger)

	db, err := setupAppDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	app, err := newApplication(cfg, db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

// enableTelemetry installs the tracer provider; cleanup flushes it.
func (app *application) enableTelemetry(ctx context.Context) error {
	shutdown, err := telemetry.Setup(ctx, app.config.Telemetry)
	if err != nil {
		return err
	}
	app.shutdownTelemetry = shutdown
	return nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.shutdownTelemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout())
		if err := app.shutdownTelemetry(ctx); err != nil {
			app.logger.Error("failed to flush traces", slog.String("error", err.Error()))
		}
		cancel()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
