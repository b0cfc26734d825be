package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Serialize writers; the session manager saves from a ticker goroutine.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return &DB{db}, nil
}

// RunMigrations creates the session, project, and asset collections.
func (db *DB) RunMigrations() error {
	migration := `
-- Sessions: one row per editing session, newest-first listings
CREATE TABLE IF NOT EXISTS sessions (
    session_id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    name TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    last_modified TIMESTAMP NOT NULL,
    thumbnail BLOB
);
CREATE INDEX IF NOT EXISTS idx_sessions_last_modified ON sessions(last_modified);

-- Serialized project documents
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    data BLOB NOT NULL
);

-- Asset payloads, keyed by (asset id, session id)
CREATE TABLE IF NOT EXISTS assets (
    id TEXT NOT NULL,
    session_id TEXT NOT NULL,
    type TEXT NOT NULL,
    name TEXT NOT NULL,
    mime_type TEXT NOT NULL,
    data BLOB NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    PRIMARY KEY (id, session_id)
);
CREATE INDEX IF NOT EXISTS idx_assets_session ON assets(session_id);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
