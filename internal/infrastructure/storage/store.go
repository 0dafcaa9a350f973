package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	sq "github.com/Masterminds/squirrel"

	"ProxyPool/internal/domain"
	"ProxyPool/internal/ports"
)

// identifierExpr guards the table name a second time at the storage
// boundary; the value is interpolated into DDL and cannot be a placeholder.
var identifierExpr = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

var proxyColumns = []string{"ip", "port", "speed", "success_rate", "stability", "score", "last_checked"}

// dialect captures everything that differs between the SQL backends: the
// placeholder style and the statements with no portable form.
type dialect struct {
	name          string
	placeholder   sq.PlaceholderFormat
	createTable   string // fmt template, %s = table name
	insertBasic   string
	upsertQuality string
}

// SQLStore implements ports.ProxyStore on top of database/sql. Reads and
// deletes are built with squirrel against the dialect's placeholder format;
// inserts and upserts use the dialect's native conflict syntax.
type SQLStore struct {
	db      *sql.DB
	table   string
	dialect dialect
	builder sq.StatementBuilderType
	logger  *slog.Logger
}

var _ ports.ProxyStore = (*SQLStore)(nil)

func newSQLStore(ctx context.Context, db *sql.DB, table string, d dialect, logger *slog.Logger) (*SQLStore, error) {
	if !identifierExpr.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	store := &SQLStore{
		db:      db,
		table:   table,
		dialect: d,
		builder: sq.StatementBuilder.PlaceholderFormat(d.placeholder),
		logger:  logger,
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connect %s: %w", d.name, err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(d.createTable, table)); err != nil {
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}

	logger.Info("storage ready", "driver", d.name, "table", table)
	return store, nil
}

// InsertBasic records the bare (ip, port) identity, ignoring duplicates.
func (s *SQLStore) InsertBasic(ctx context.Context, candidate domain.Candidate) error {
	query := fmt.Sprintf(s.dialect.insertBasic, s.table)
	if _, err := s.db.ExecContext(ctx, query, candidate.Address, candidate.Port); err != nil {
		return fmt.Errorf("insert basic %s: %w", candidate.Key(), err)
	}
	return nil
}

// UpsertQuality inserts the proxy or replaces all quality fields in place.
func (s *SQLStore) UpsertQuality(ctx context.Context, proxy domain.Proxy) error {
	query := fmt.Sprintf(s.dialect.upsertQuality, s.table)
	_, err := s.db.ExecContext(ctx, query,
		proxy.Candidate.Address,
		proxy.Candidate.Port,
		proxy.Quality.AverageSpeed,
		proxy.Quality.SuccessRate,
		proxy.Quality.Stability,
		proxy.Quality.Score,
		proxy.Quality.LastChecked,
	)
	if err != nil {
		return fmt.Errorf("upsert quality %s: %w", proxy.Candidate.Key(), err)
	}
	return nil
}

// FindByKey returns the stored proxy for (address, port), or nil when absent.
func (s *SQLStore) FindByKey(ctx context.Context, address, port string) (*domain.Proxy, error) {
	query, args, err := s.builder.
		Select(proxyColumns...).
		From(s.table).
		Where(sq.Eq{"ip": address, "port": port}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find query: %w", err)
	}

	proxy, err := scanProxy(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s:%s: %w", address, port, err)
	}
	return &proxy, nil
}

// ListAll returns every stored proxy ordered by score descending.
func (s *SQLStore) ListAll(ctx context.Context) ([]domain.Proxy, error) {
	query, args, err := s.builder.
		Select(proxyColumns...).
		From(s.table).
		OrderBy("score DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list proxies: %w", err)
	}
	defer rows.Close()

	var proxies []domain.Proxy
	for rows.Next() {
		proxy, err := scanProxy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proxy: %w", err)
		}
		proxies = append(proxies, proxy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return proxies, nil
}

// Remove deletes every record for the address, reporting whether any existed.
func (s *SQLStore) Remove(ctx context.Context, address string) (bool, error) {
	query, args, err := s.builder.
		Delete(s.table).
		Where(sq.Eq{"ip": address}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("remove %s: %w", address, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Close releases the connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProxy(row rowScanner) (domain.Proxy, error) {
	var (
		proxy     domain.Proxy
		speed     sql.NullFloat64
		rate      sql.NullFloat64
		stability sql.NullFloat64
		score     sql.NullFloat64
		checked   sql.NullTime
	)

	err := row.Scan(
		&proxy.Candidate.Address,
		&proxy.Candidate.Port,
		&speed, &rate, &stability, &score, &checked,
	)
	if err != nil {
		return domain.Proxy{}, err
	}

	proxy.Quality = domain.QualityRecord{
		AverageSpeed: speed.Float64,
		SuccessRate:  rate.Float64,
		Stability:    stability.Float64,
		Score:        score.Float64,
		LastChecked:  checked.Time,
	}
	return proxy, nil
}
