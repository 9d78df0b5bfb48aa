// Package relationaldb keeps the operation journal, one row per operation
// the engine finishes, applied or not, and the off-ledger registry of
// company applications. Both live in PostgreSQL or SQLite.
package relationaldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/adipundir/donatrade/internal/log"
	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

// Entry is one journaled operation.
type Entry struct {
	ID         int64
	Hash       string
	Type       string
	Account    string
	Result     string
	ResultCode int
	Applied    bool
	Message    string
	Metadata   string // JSON encoded affected nodes, empty when not applied
	CreatedAt  time.Time
}

// Journal records operation outcomes.
type Journal struct {
	mu     sync.RWMutex
	db     *sql.DB
	config *Config
	logger log.Logger
}

// Open connects, configures the pool and creates the schema if needed.
func Open(ctx context.Context, config *Config, logger log.Logger) (*Journal, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigurationError("open", "invalid configuration", err)
	}
	if logger == nil {
		logger = log.Nop()
	}

	connStr, err := config.BuildConnectionString()
	if err != nil {
		return nil, NewConfigurationError("open", "failed to build connection string", err)
	}

	db, err := sql.Open(config.Driver, connStr)
	if err != nil {
		return nil, NewConnectionError("open", "failed to open database connection", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, config.DefaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, NewConnectionError("open", "failed to ping database", err)
	}

	j := &Journal{
		db:     db,
		config: config,
		logger: logger.With("component", "journal", "driver", config.Driver),
	}
	if err := j.initSchema(ctx); err != nil {
		db.Close()
		return nil, NewSchemaError("open", "failed to initialize schema", err)
	}
	j.logger.Info("journal opened")
	return j, nil
}

func (j *Journal) initSchema(ctx context.Context) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if j.config.Driver == DriverPostgres {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}
	statements := []string{
		`CREATE TABLE IF NOT EXISTS operations (
			` + idColumn + `,
			hash        TEXT NOT NULL,
			type        TEXT NOT NULL,
			account     TEXT NOT NULL,
			result      TEXT NOT NULL,
			result_code INTEGER NOT NULL,
			applied     BOOLEAN NOT NULL,
			message     TEXT NOT NULL,
			metadata    TEXT NOT NULL,
			created_at  BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS operations_account_idx ON operations (account, id)`,
		`CREATE INDEX IF NOT EXISTS operations_hash_idx ON operations (hash)`,
	}
	statements = append(statements, applicationSchema(idColumn)...)
	for _, stmt := range statements {
		if _, err := j.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $N for PostgreSQL.
func (j *Journal) rebind(query string) string {
	if j.config.Driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (j *Journal) handle() (*sql.DB, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.db == nil {
		return nil, ErrDatabaseClosed
	}
	return j.db, nil
}

func (j *Journal) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, j.config.DefaultTimeout)
}

// Record appends an entry and fills in its ID.
func (j *Journal) Record(ctx context.Context, e *Entry) error {
	db, err := j.handle()
	if err != nil {
		return err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	ctx, cancel := j.withTimeout(ctx)
	defer cancel()

	query := j.rebind(`INSERT INTO operations
		(hash, type, account, result, result_code, applied, message, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err = db.QueryRowContext(ctx, query,
		e.Hash, e.Type, e.Account, e.Result, e.ResultCode, e.Applied,
		e.Message, e.Metadata, e.CreatedAt.UnixNano(),
	).Scan(&e.ID)
	if err != nil {
		return NewQueryError("record", "failed to insert operation", err)
	}
	return nil
}

const selectColumns = `SELECT id, hash, type, account, result, result_code, applied, message, metadata, created_at FROM operations`

// ListByAccount returns the newest entries signed by account, newest first.
func (j *Journal) ListByAccount(ctx context.Context, account string, limit int) ([]*Entry, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	db, err := j.handle()
	if err != nil {
		return nil, err
	}
	ctx, cancel := j.withTimeout(ctx)
	defer cancel()

	rows, err := db.QueryContext(ctx, j.rebind(selectColumns+` WHERE account = ? ORDER BY id DESC LIMIT ?`), account, limit)
	if err != nil {
		return nil, NewQueryError("list_by_account", "failed to query operations", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, NewDataError("list_by_account", "failed to scan operation", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, NewQueryError("list_by_account", "failed to iterate operations", err)
	}
	return entries, nil
}

// GetByHash returns the entry for an applied operation hash.
func (j *Journal) GetByHash(ctx context.Context, hash string) (*Entry, error) {
	db, err := j.handle()
	if err != nil {
		return nil, err
	}
	ctx, cancel := j.withTimeout(ctx)
	defer cancel()

	row := db.QueryRowContext(ctx, j.rebind(selectColumns+` WHERE hash = ? ORDER BY id DESC LIMIT 1`), strings.ToUpper(hash))
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, NewQueryError("get_by_hash", "failed to query operation", err)
	}
	return e, nil
}

// Count returns the number of journaled operations.
func (j *Journal) Count(ctx context.Context) (int64, error) {
	db, err := j.handle()
	if err != nil {
		return 0, err
	}
	ctx, cancel := j.withTimeout(ctx)
	defer cancel()

	var n int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM operations`).Scan(&n); err != nil {
		return 0, NewQueryError("count", "failed to count operations", err)
	}
	return n, nil
}

// Close closes the connection pool. Further calls return ErrDatabaseClosed.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	if err != nil {
		return NewConnectionError("close", "failed to close database connection", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e       Entry
		created int64
	)
	err := s.Scan(&e.ID, &e.Hash, &e.Type, &e.Account, &e.Result, &e.ResultCode,
		&e.Applied, &e.Message, &e.Metadata, &created)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = time.Unix(0, created).UTC()
	return &e, nil
}
