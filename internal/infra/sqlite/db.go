// Package sqlite provides SQLite-based persistent storage for deukgeun.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Progression blobs, one JSON document per key
		`CREATE TABLE IF NOT EXISTS progression (
			key        TEXT PRIMARY KEY,
			blob       TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,

		// Advisory scalar flags (boss HP, last weight/reps, daily markers)
		`CREATE TABLE IF NOT EXISTS flags (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Finished and abandoned battle sessions
		`CREATE TABLE IF NOT EXISTS session_history (
			id              TEXT PRIMARY KEY,
			day             TEXT NOT NULL,
			kind            INTEGER NOT NULL,
			outcome         TEXT NOT NULL,
			exercises       INTEGER NOT NULL,
			completed_sets  INTEGER NOT NULL,
			total_sets      INTEGER NOT NULL,
			bosses_defeated INTEGER NOT NULL DEFAULT 0,
			xp_granted      INTEGER NOT NULL DEFAULT 0,
			points_granted  INTEGER NOT NULL DEFAULT 0,
			finished_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_session_finished ON session_history(finished_at)`,
		`CREATE INDEX IF NOT EXISTS idx_session_day ON session_history(day)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
