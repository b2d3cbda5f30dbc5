package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNoAuth is returned when no authentication is stored
var ErrNoAuth = errors.New("no authentication stored")

// ErrActivityNotFound is returned when an activity doesn't exist
var ErrActivityNotFound = errors.New("activity not found")

// ErrNoThresholds is returned when no thresholds have been stored yet
var ErrNoThresholds = errors.New("no thresholds stored")

// DB wraps the SQLite connection with typed accessors.
type DB struct {
	*sql.DB
}

// Open opens the SQLite database, creating it if necessary.
// The database is stored at ~/.trainload/data.db
func Open() (*DB, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("getting db path: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return openAt(dbPath)
}

func openAt(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Run migrations
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &DB{DB: db}, nil
}

// getDBPath returns the path to the SQLite database file
func getDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".trainload", "data.db"), nil
}
