// Package database persists alias records and processed receipts in SQLite.
// The DB type wraps database/sql with the schema, migrations and the typed
// queries the rest of the application uses; no SQL leaks out of this package.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Config carries the connection pool settings.
type Config struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the database at path and brings the schema up to
// date.
func Open(path string) (*DB, error) {
	cfg := Config{}

	// An in-memory SQLite database exists per connection; anything but a
	// single connection would hand each caller an empty schema.
	if isInMemory(path) {
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
	}

	return OpenWithConfig(path, cfg)
}

func isInMemory(path string) bool {
	if path == ":memory:" {
		return true
	}
	return strings.HasPrefix(path, "file:") && strings.Contains(path, "mode=memory")
}

// OpenWithConfig opens the database with explicit pool settings.
func OpenWithConfig(path string, cfg Config) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	} else {
		// SQLite degrades under many concurrent writers; keep the pool
		// small to avoid lock contention.
		conn.SetMaxOpenConns(10)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	} else {
		conn.SetMaxIdleConns(3)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// WAL lets readers run concurrently with the writer. Not critical, so
	// a failure only logs.
	if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
		log.Printf("[Database] Warning: failed to enable WAL mode: %v", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		log.Printf("[Database] Warning: failed to set busy timeout: %v", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the connection.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// initSchema creates the tables and indexes and then runs the additive
// migrations for databases created by older versions.
func (db *DB) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS aliases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			raw_name TEXT NOT NULL,
			canonical_name TEXT NOT NULL,
			store TEXT NOT NULL DEFAULT '',
			confidence REAL NOT NULL DEFAULT 0.0,
			origin TEXT NOT NULL DEFAULT '',
			seen_count INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(raw_name, store)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_aliases_store ON aliases(store)`,
		`CREATE INDEX IF NOT EXISTS idx_aliases_confidence ON aliases(confidence)`,
		`CREATE INDEX IF NOT EXISTS idx_aliases_origin ON aliases(origin)`,

		`CREATE TABLE IF NOT EXISTS receipts (
			id TEXT PRIMARY KEY,
			store TEXT NOT NULL,
			store_hint TEXT NOT NULL DEFAULT '',
			purchased_at TEXT NOT NULL DEFAULT '',
			diagnostics TEXT NOT NULL DEFAULT '[]',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_receipts_store ON receipts(store)`,
		`CREATE INDEX IF NOT EXISTS idx_receipts_created_at ON receipts(created_at)`,

		`CREATE TABLE IF NOT EXISTS receipt_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			receipt_id TEXT NOT NULL,
			line_index INTEGER NOT NULL,
			raw_name TEXT NOT NULL,
			quantity TEXT NOT NULL,
			unit_price TEXT NOT NULL,
			line_total TEXT NOT NULL,
			discount TEXT NOT NULL DEFAULT '0',
			corrected BOOLEAN NOT NULL DEFAULT FALSE,
			inconsistent BOOLEAN NOT NULL DEFAULT FALSE,
			canonical_name TEXT NOT NULL,
			confidence REAL NOT NULL DEFAULT 0.0,
			stage TEXT NOT NULL DEFAULT '',
			warning TEXT NOT NULL DEFAULT '',
			FOREIGN KEY(receipt_id) REFERENCES receipts(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_receipt_items_receipt_id ON receipt_items(receipt_id)`,
		`CREATE INDEX IF NOT EXISTS idx_receipt_items_stage ON receipt_items(stage)`,
		`CREATE INDEX IF NOT EXISTS idx_receipt_items_canonical ON receipt_items(canonical_name)`,
	}

	for _, statement := range statements {
		if _, err := db.conn.Exec(statement); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}

	return db.runMigrations()
}

// runMigrations applies additive schema changes. Errors caused by a change
// that already happened (duplicate column, existing index) are ignored so the
// list stays append-only and re-runnable.
func (db *DB) runMigrations() error {
	migrations := []string{
		`ALTER TABLE receipt_items ADD COLUMN model_suggestion_raw TEXT NOT NULL DEFAULT ''`,
	}

	for _, migration := range migrations {
		if _, err := db.conn.Exec(migration); err != nil {
			errStr := strings.ToLower(err.Error())
			if !strings.Contains(errStr, "duplicate column") &&
				!strings.Contains(errStr, "already exists") &&
				!strings.Contains(errStr, "duplicate index") {
				return fmt.Errorf("migration failed: %s, error: %w", migration, err)
			}
		}
	}

	return nil
}
