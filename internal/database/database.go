// Package database persists custom patterns, memoized detections, scan
// history and the rename audit log in SQLite.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Nomadcxx/stampwatch/internal/paths"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the main database handle for stampwatch
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens or creates the database at the default location
func Open() (*Store, error) {
	dbPath, err := paths.DatabasePath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	return OpenPath(dbPath)
}

// OpenPath opens or creates the database at a specific path
func OpenPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL lets the daemon and the CLI share the file
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// OpenInMemory opens an in-memory database for testing
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// Every pooled connection would otherwise get its own empty database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping in-memory database: %w", err)
	}

	s := &Store{
		db:   db,
		path: ":memory:",
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate in-memory database: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path to the database file
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	return applyMigrations(s.db)
}

// DB returns the underlying sql.DB for advanced operations
func (s *Store) DB() *sql.DB {
	return s.db
}
