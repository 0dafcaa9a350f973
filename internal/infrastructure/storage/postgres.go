package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"ProxyPool/internal/config"
)

var postgresDialect = dialect{
	name:        "postgres",
	placeholder: sq.Dollar,
	createTable: `
		CREATE TABLE IF NOT EXISTS %s (
			id SERIAL PRIMARY KEY,
			ip TEXT NOT NULL,
			port TEXT NOT NULL,
			speed DOUBLE PRECISION DEFAULT 0.0,
			success_rate DOUBLE PRECISION DEFAULT 0.0,
			stability DOUBLE PRECISION DEFAULT 0.0,
			score DOUBLE PRECISION DEFAULT 0.0,
			last_checked TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(ip, port)
		)`,
	insertBasic: "INSERT INTO %s (ip, port) VALUES ($1, $2) ON CONFLICT DO NOTHING",
	upsertQuality: `
		INSERT INTO %s (ip, port, speed, success_rate, stability, score, last_checked)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT(ip, port) DO UPDATE SET
			speed=EXCLUDED.speed,
			success_rate=EXCLUDED.success_rate,
			stability=EXCLUDED.stability,
			score=EXCLUDED.score,
			last_checked=EXCLUDED.last_checked`,
}

// NewPostgres opens a PostgreSQL-backed store.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*SQLStore, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)

	return newSQLStore(ctx, db, cfg.Table, postgresDialect, logger)
}
