package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ProxyPool/internal/config"
	"ProxyPool/internal/ports"
)

// New selects and initializes a storage backend from the configured driver
// string. An unsupported driver is a startup error; nothing is retried here.
func New(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (ports.ProxyStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		return NewSQLite(ctx, cfg, logger)
	case "postgres":
		return NewPostgres(ctx, cfg, logger)
	case "mysql":
		return NewMySQL(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
