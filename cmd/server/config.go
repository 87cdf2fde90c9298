package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/silabas-api/internal/config"
	"github.com/phrazzld/silabas-api/internal/platform/logger"
)

// loadAppConfig loads the configuration from configPath (or config.yaml and
// the environment) and applies a non-empty logLevel override.
func loadAppConfig(configPath, logLevel string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if logLevel != "" {
		if _, ok := logger.ParseLevel(logLevel); !ok {
			return nil, fmt.Errorf("invalid log level %q", logLevel)
		}
		cfg.Server.LogLevel = logLevel
	}

	return cfg, nil
}

// logConfigSummary records which settings are active without exposing secrets.
func logConfigSummary(cfg *config.Config, log *slog.Logger) {
	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("static_frontend", cfg.Server.StaticDir != ""),
		slog.Bool("telemetry_enabled", cfg.Telemetry.Enabled))

	log.Debug("auth configuration",
		slog.Bool("jwt_secret_present", cfg.Auth.JWTSecret != ""),
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes),
		slog.Bool("cookie_secure", cfg.Auth.CookieSecure))
}
