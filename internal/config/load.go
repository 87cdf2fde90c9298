package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. SILABAS_SERVER_PORT.
const EnvPrefix = "SILABAS"

// defaults are applied before files and environment variables.
var defaults = map[string]any{
	"server.port":                     8080,
	"server.log_level":                "info",
	"server.static_dir":               "",
	"server.shutdown_timeout_seconds": 10,
	"database.driver":                 "sqlite",
	"database.url":                    "file:silabas.db",
	"database.max_open_conns":         25,
	"auth.token_lifetime_minutes":     60 * 24 * 7,
	"auth.bcrypt_cost":                10,
	"auth.cookie_name":                "silabas_session",
	"auth.cookie_secure":              false,
	"telemetry.enabled":               false,
	"telemetry.endpoint":              "",
	"telemetry.service_name":          "silabas-api",
}

// Keys without defaults must be bound explicitly so AutomaticEnv picks them
// up during Unmarshal.
var envOnlyKeys = []string{
	"auth.jwt_secret",
}

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// When configPath is empty, config.yaml in the working directory is read if present.
// Returns a populated Config struct or an error if loading/validation fails.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
