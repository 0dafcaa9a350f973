package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"ProxyPool/internal/config"
)

var sqliteDialect = dialect{
	name:        "sqlite",
	placeholder: sq.Question,
	createTable: `
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ip TEXT NOT NULL,
			port TEXT NOT NULL,
			speed REAL DEFAULT 0.0,
			success_rate REAL DEFAULT 0.0,
			stability REAL DEFAULT 0.0,
			score REAL DEFAULT 0.0,
			last_checked DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(ip, port)
		)`,
	insertBasic: "INSERT OR IGNORE INTO %s (ip, port) VALUES (?, ?)",
	upsertQuality: `
		INSERT INTO %s (ip, port, speed, success_rate, stability, score, last_checked)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ip, port) DO UPDATE SET
			speed=excluded.speed,
			success_rate=excluded.success_rate,
			stability=excluded.stability,
			score=excluded.score,
			last_checked=excluded.last_checked`,
}

// NewSQLite opens a file-backed SQLite store, the default lightweight
// single-node backend.
func NewSQLite(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)

	return newSQLStore(ctx, db, cfg.Table, sqliteDialect, logger)
}
