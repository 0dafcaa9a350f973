package main

import (
	"context"
	"os"

	"ProxyPool/internal/app"
	"ProxyPool/internal/config"
	"ProxyPool/internal/logging"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
