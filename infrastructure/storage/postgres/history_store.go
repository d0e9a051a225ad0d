package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/checkwise/domain/history"
)

// HistoryStore is a PostgreSQL-backed implementation of history.Store.
type HistoryStore struct {
	pool   *pgxpool.Pool
	schema string
}

// NewHistoryStore creates a history store on an existing pool.
func NewHistoryStore(pool *pgxpool.Pool, schema string) *HistoryStore {
	if schema == "" {
		schema = "public"
	}
	return &HistoryStore{
		pool:   pool,
		schema: schema,
	}
}

// Open connects with the given configuration and ensures the history
// table exists.
func Open(ctx context.Context, cfg Config, opts ...ConfigOption) (*HistoryStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	pool, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := NewHistoryStore(pool, cfg.Schema)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// OpenDSN connects with a connection string in either URL or
// keyword/value form and ensures the history table exists.
func OpenDSN(ctx context.Context, dsn, schema string) (*HistoryStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Join(history.ErrConnectionFailed, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Join(history.ErrConnectionFailed, err)
	}

	s := NewHistoryStore(pool, schema)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// tableName returns the fully qualified table name.
func (s *HistoryStore) tableName() string {
	return fmt.Sprintf("%s.parameter_history", s.schema)
}

// EnsureSchema creates the history table and its time index when they
// do not exist yet.
func (s *HistoryStore) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id            TEXT PRIMARY KEY,
			recorded_at   TIMESTAMPTZ NOT NULL,
			host          TEXT NOT NULL DEFAULT '',
			service       TEXT NOT NULL,
			handler       TEXT NOT NULL,
			action        TEXT NOT NULL,
			valid         BOOLEAN NOT NULL,
			error_count   INTEGER NOT NULL DEFAULT 0,
			warning_count INTEGER NOT NULL DEFAULT 0,
			rule_id       TEXT NOT NULL DEFAULT ''
		)
	`, s.tableName())

	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return s.wrapError(err)
	}

	idx := fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS parameter_history_recorded_at_idx ON %s (recorded_at DESC)`,
		s.tableName())

	if _, err := s.pool.Exec(ctx, idx); err != nil {
		return s.wrapError(err)
	}

	return nil
}

// Append persists a record.
func (s *HistoryStore) Append(ctx context.Context, rec *history.Record) error {
	if rec == nil || rec.ID == "" {
		return history.ErrInvalidRecord
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, recorded_at, host, service, handler, action, valid, error_count, warning_count, rule_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, s.tableName())

	_, err := s.pool.Exec(ctx, query,
		rec.ID,
		rec.Time,
		rec.Host,
		rec.Service,
		rec.Handler,
		string(rec.Action),
		rec.Valid,
		rec.ErrorCount,
		rec.WarningCount,
		rec.RuleID,
	)
	if err != nil {
		return s.wrapError(err)
	}

	return nil
}

// List returns records matching the filter, newest first.
func (s *HistoryStore) List(ctx context.Context, filter history.Filter) ([]*history.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	whereClause, args := s.buildWhereClause(filter)

	query := fmt.Sprintf(`
		SELECT id, recorded_at, host, service, handler, action, valid, error_count, warning_count, rule_id
		FROM %s
		%s
		ORDER BY recorded_at DESC, id DESC
	`, s.tableName(), whereClause)

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, s.wrapError(err)
	}
	defer rows.Close()

	var records []*history.Record
	for rows.Next() {
		rec, err := s.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, s.wrapError(err)
	}

	return records, nil
}

// Prune removes records older than the given time.
func (s *HistoryStore) Prune(ctx context.Context, before time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE recorded_at < $1`, s.tableName())

	result, err := s.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, s.wrapError(err)
	}

	return int(result.RowsAffected()), nil
}

// Close releases the connection pool.
func (s *HistoryStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// buildWhereClause constructs the WHERE clause from the filter.
func (s *HistoryStore) buildWhereClause(filter history.Filter) (string, []any) {
	var conditions []string
	var args []any

	if filter.Service != "" {
		args = append(args, filter.Service)
		conditions = append(conditions, fmt.Sprintf("service = $%d", len(args)))
	}

	if filter.Handler != "" {
		args = append(args, filter.Handler)
		conditions = append(conditions, fmt.Sprintf("handler = $%d", len(args)))
	}

	if filter.Action != "" {
		args = append(args, string(filter.Action))
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)))
	}

	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		conditions = append(conditions, fmt.Sprintf("recorded_at >= $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// scanRecord scans a row into a Record.
func (s *HistoryStore) scanRecord(rows pgx.Rows) (*history.Record, error) {
	var rec history.Record
	var action string

	err := rows.Scan(
		&rec.ID,
		&rec.Time,
		&rec.Host,
		&rec.Service,
		&rec.Handler,
		&action,
		&rec.Valid,
		&rec.ErrorCount,
		&rec.WarningCount,
		&rec.RuleID,
	)
	if err != nil {
		return nil, err
	}

	rec.Action = history.Action(action)
	return &rec, nil
}

// wrapError maps database errors to domain errors.
func (s *HistoryStore) wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(history.ErrOperationTimeout, err)
	}

	return errors.Join(history.ErrConnectionFailed, err)
}

// Ensure HistoryStore implements history.Store
var _ history.Store = (*HistoryStore)(nil)
