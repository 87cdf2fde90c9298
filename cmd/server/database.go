package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/silabas-api/internal/config"
	"github.com/phrazzld/silabas-api/internal/platform/sqlstore"
	"github.com/phrazzld/silabas-api/internal/redact"
)

// setupAppDatabase opens and pings the configured database.
func setupAppDatabase(
	ctx context.Context,
	cfg config.DatabaseConfig,
	logger *slog.Logger,
) (*sqlstore.DB, error) {
	dialect, err := sqlstore.ParseDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlstore.Open(ctx, sqlstore.Options{
		Dialect:      dialect,
		URL:          cfg.URL,
		MaxOpenConns: cfg.MaxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("database %s: %w", redact.String(cfg.URL), err)
	}

	logger.Info("database connection established", slog.String("driver", string(dialect)))
	return db, nil
}

// newMigrator returns a goose-backed migrator for db.
func newMigrator(db *sqlstore.DB, logger *slog.Logger) (*sqlstore.Migrator, error) {
	migrator, err := sqlstore.NewMigrator(db, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return migrator, nil
}

// applyMigrations brings the schema up to date.
func applyMigrations(ctx context.Context, db *sqlstore.DB, logger *slog.Logger) error {
	migrator, err := newMigrator(db, logger)
	if err != nil {
		return err
	}
	return migrator.Up(ctx)
}
