// Package sqlite provides a SQLite-backed persistent cookie jar.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// migrations upgrade the jar schema. Entry i moves the database from
// user_version i to i+1; applied entries must never change.
var migrations = []string{
	`CREATE TABLE cookies (
		id TEXT PRIMARY KEY,
		host TEXT NOT NULL,
		path TEXT NOT NULL DEFAULT '/',
		name TEXT NOT NULL,
		value TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (host, path, name)
	)`,
	`CREATE INDEX idx_cookies_host ON cookies(host)`,
}

// DB is the SQLite database holding a cookie jar.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB returns a DB for the jar file at path.
// Use ":memory:" for a jar that lives only as long as the DB.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the jar, creating its directory and file if needed, and brings
// the schema up to date.
func (db *DB) Open(ctx context.Context) (err error) {
	inMemory := db.path == ":memory:"

	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(db.path), 0700); err != nil {
			return fmt.Errorf("failed to create jar directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			conn.Close()
		}
	}()

	// One connection: writers serialize and ":memory:" stays a single database.
	conn.SetMaxOpenConns(1)

	pragmas := []string{"busy_timeout = 5000"}
	if !inMemory {
		pragmas = append(pragmas, "journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := conn.ExecContext(ctx, "PRAGMA "+p); err != nil {
			return fmt.Errorf("failed to set %s: %w", p, err)
		}
	}

	if err := migrate(ctx, conn); err != nil {
		return err
	}

	db.db = conn
	return nil
}

// migrate applies the migrations the database has not seen yet, in one
// transaction.
func migrate(ctx context.Context, conn *sql.DB) error {
	var version int
	if err := conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("cookie jar schema version %d is newer than supported version %d", version, len(migrations))
	}
	if version == len(migrations) {
		return nil
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, stmt := range migrations[version:] {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", version+i+1, err)
		}
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", len(migrations))); err != nil {
		return fmt.Errorf("failed to write schema version: %w", err)
	}
	return tx.Commit()
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// Path returns the jar file path.
func (db *DB) Path() string {
	return db.path
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}
