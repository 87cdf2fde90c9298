package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/silabas-api/internal/config"
	"github.com/phrazzld/silabas-api/internal/platform/logger"
)

// setupAppLogger installs the process-wide JSON logger for cfg.Server.LogLevel.
func setupAppLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return l, nil
}
