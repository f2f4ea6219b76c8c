// Package sqlite implements the embedded relational store behind the
// content-research platform: schema and migrations, connection discipline,
// transactional CRUD and the full-text shadow index over documents.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/contentpulse/backend/internal/storage"
	"github.com/contentpulse/backend/pkg/logger"
)

// Mode selects how the database is opened. A memory database lives only as
// long as its single connection, so it is modeled as its own mode rather
// than a special path string.
type Mode int

const (
	// ModeFile opens (or creates) a database file on disk. Readers may open
	// any number of concurrent connections; WAL keeps them unblocked by the
	// single writer.
	ModeFile Mode = iota
	// ModeMemory keeps the whole database in process memory behind one
	// persistent connection. Intended for tests and ephemeral use.
	ModeMemory
)

// Options configures NewClient.
type Options struct {
	Mode Mode
	// Path is the database file location. Ignored for ModeMemory.
	Path string
}

type Client struct {
	db   *sql.DB
	mode Mode
}

// busyTimeoutMS bounds how long a writer waits for the database lock before
// the operation fails with LockTimeoutError.
const busyTimeoutMS = 5000

// NewClient opens the database in the given mode and applies the engine
// tuning the rest of the platform depends on: WAL journaling, bounded lock
// wait, relaxed synchronous commit, ~20MB page cache, engine-level foreign
// keys and in-memory temp tables.
func NewClient(opts Options) (*Client, error) {
	// Connection-scoped settings go in the DSN so every pooled connection
	// gets them, not just the one that ran the PRAGMA.
	params := fmt.Sprintf("_txlock=immediate&_foreign_keys=1&_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL", busyTimeoutMS)

	dsn := fmt.Sprintf("file:%s?%s", opts.Path, params)
	if opts.Mode == ModeMemory {
		dsn = fmt.Sprintf("file::memory:?%s", params)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if opts.Mode == ModeMemory {
		// A memory database cannot be reopened by a second connection, so
		// the pool is pinned to the one connection that owns it.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA cache_size = -20000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	logger.Info("SQLite client initialized",
		zap.String("path", opts.Path),
		zap.Bool("in_memory", opts.Mode == ModeMemory),
	)

	return &Client{db: db, mode: opts.Mode}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

// DB exposes the underlying handle for read-only callers that need raw
// queries (reports, ad-hoc tooling).
func (c *Client) DB() *sql.DB {
	return c.db
}

// withTx runs fn inside a single immediate transaction. The write lock is
// taken upfront at BEGIN; if it cannot be acquired inside the busy-timeout
// window the operation fails with LockTimeoutError and is never retried
// here. Rollback is guaranteed on every error path.
func (c *Client) withTx(op string, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.Begin()
	if err != nil {
		return mapLockErr(op, fmt.Errorf("failed to begin transaction: %w", err))
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return mapLockErr(op, err)
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return mapLockErr(op, fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}

// mapLockErr converts an expired busy wait into the typed LockTimeoutError.
// Every other error surfaces unmodified.
func mapLockErr(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked {
			return &storage.LockTimeoutError{Operation: op, Err: err}
		}
	}
	return err
}
