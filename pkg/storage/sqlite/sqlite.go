// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/papercomputeco/verde/pkg/exchange"
	"github.com/papercomputeco/verde/pkg/storage"
)

const defaultBusyTimeout = 5000

// Driver implements storage.Driver using SQLite.
type Driver struct {
	db *sql.DB
}

// NewDriver opens (creating if needed) the SQLite database at dbPath and
// migrates the exchanges table.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serialises writes, and ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", defaultBusyTimeout)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}

	d := &Driver{db: db}
	if err := d.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return d, nil
}

// migrate creates the exchanges table if it doesn't exist.
func (d *Driver) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question_hash TEXT NOT NULL UNIQUE,
		question_text TEXT NOT NULL,
		answer_text TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL
	);
	`

	_, err := d.db.ExecContext(ctx, schema)
	return err
}

// Upsert writes ex, replacing any previous row with the same question hash.
// REPLACE deletes the old row, so the new one receives a fresh id.
func (d *Driver) Upsert(ctx context.Context, ex *exchange.Exchange) error {
	if ex == nil {
		return storage.ErrNilExchange
	}

	query := `INSERT OR REPLACE INTO exchanges
		(question_hash, question_text, answer_text, timestamp, category)
		VALUES (?, ?, ?, ?, ?)`

	res, err := d.db.ExecContext(ctx, query,
		ex.QuestionHash,
		ex.Question,
		ex.Answer,
		ex.Created.UTC().Format(time.RFC3339Nano),
		string(ex.Category),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert exchange: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read exchange id: %w", err)
	}
	ex.ID = id

	return nil
}

// Recent returns up to limit exchanges, newest first.
func (d *Driver) Recent(ctx context.Context, limit int) ([]*exchange.Exchange, error) {
	query := `SELECT id, question_hash, question_text, answer_text, timestamp, category
		FROM exchanges ORDER BY id DESC LIMIT ?`

	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent exchanges: %w", err)
	}
	defer rows.Close()

	return scanExchanges(rows)
}

// Get retrieves an exchange by its question hash.
func (d *Driver) Get(ctx context.Context, hash string) (*exchange.Exchange, error) {
	query := `SELECT id, question_hash, question_text, answer_text, timestamp, category
		FROM exchanges WHERE question_hash = ?`

	ex, err := scanExchange(d.db.QueryRowContext(ctx, query, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{Hash: hash}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}

	return ex, nil
}

// List returns all exchanges, newest first.
func (d *Driver) List(ctx context.Context) ([]*exchange.Exchange, error) {
	query := `SELECT id, question_hash, question_text, answer_text, timestamp, category
		FROM exchanges ORDER BY id DESC`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	defer rows.Close()

	return scanExchanges(rows)
}

// Count returns the number of stored exchanges.
func (d *Driver) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exchanges`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count exchanges: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (d *Driver) Close() error {
	return d.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExchange(row rowScanner) (*exchange.Exchange, error) {
	var (
		ex       exchange.Exchange
		ts       string
		category string
	)

	if err := row.Scan(&ex.ID, &ex.QuestionHash, &ex.Question, &ex.Answer, &ts, &category); err != nil {
		return nil, err
	}

	created, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp %q: %w", ts, err)
	}
	ex.Created = created
	ex.Category = exchange.Category(category)

	return &ex, nil
}

func scanExchanges(rows *sql.Rows) ([]*exchange.Exchange, error) {
	out := []*exchange.Exchange{}
	for rows.Next() {
		ex, err := scanExchange(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		out = append(out, ex)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exchanges: %w", err)
	}

	return out, nil
}
