package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS habits (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	group_id TEXT,
	day_of_week INTEGER NOT NULL,
	name TEXT NOT NULL,
	time TEXT NOT NULL,
	description TEXT,
	completed INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_habits_user ON habits(user_id);

CREATE TABLE IF NOT EXISTS habit_history (
	user_id TEXT NOT NULL,
	date TEXT NOT NULL,
	entries TEXT NOT NULL,
	PRIMARY KEY (user_id, date)
);

CREATE TABLE IF NOT EXISTS streak_state (
	user_id TEXT PRIMARY KEY,
	streak INTEGER NOT NULL,
	best_streak INTEGER NOT NULL,
	last_date TEXT NOT NULL
);
`

// Store owns the SQLite database behind the "sqlite" storage driver, a
// single-node alternative to PostgreSQL. The repository types in this
// package share its handle the way the postgres ones share a pool.
type Store struct {
	path string
	db   *sql.DB
}

// NewStore creates a store for the given database file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Init opens the database, creating the file and schema as needed.
func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
