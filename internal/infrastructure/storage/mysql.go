package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"

	"ProxyPool/internal/config"
)

var mysqlDialect = dialect{
	name:        "mysql",
	placeholder: sq.Question,
	createTable: `
		CREATE TABLE IF NOT EXISTS %s (
			id INT PRIMARY KEY AUTO_INCREMENT,
			ip VARCHAR(255) NOT NULL,
			port VARCHAR(10) NOT NULL,
			speed DOUBLE DEFAULT 0.0,
			success_rate DOUBLE DEFAULT 0.0,
			stability DOUBLE DEFAULT 0.0,
			score DOUBLE DEFAULT 0.0,
			last_checked DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(ip, port)
		)`,
	insertBasic: "INSERT IGNORE INTO %s (ip, port) VALUES (?, ?)",
	upsertQuality: `
		INSERT INTO %s (ip, port, speed, success_rate, stability, score, last_checked)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			speed=VALUES(speed),
			success_rate=VALUES(success_rate),
			stability=VALUES(stability),
			score=VALUES(score),
			last_checked=VALUES(last_checked)`,
}

// NewMySQL opens a MySQL-backed store. The DSN must include parseTime=true
// so last_checked scans into time.Time.
func NewMySQL(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*SQLStore, error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)

	return newSQLStore(ctx, db, cfg.Table, mysqlDialect, logger)
}
