package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens a SQLite database connection at the given path.
// It enables foreign keys and sets connection pool settings.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys (disabled by default in SQLite)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS museums (
			id TEXT PRIMARY KEY,
			name TEXT,
			former_name TEXT,
			founded_year INTEGER,
			address TEXT,
			city TEXT,
			state TEXT,
			postal_code TEXT,
			country TEXT,
			website TEXT,
			mission TEXT,
			director TEXT,
			phone TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS passages (
			id TEXT PRIMARY KEY,
			museum_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			content TEXT NOT NULL,
			source_url TEXT,
			metadata TEXT NOT NULL DEFAULT '{}',
			FOREIGN KEY (museum_id) REFERENCES museums(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_passages_museum ON passages(museum_id, position);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
