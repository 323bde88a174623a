package database

import (
	"database/sql"
	"fmt"
)

// Schema version for migrations
const currentSchemaVersion = 2

var migrations = []migration{
	{
		version: 1,
		up: []string{
			`CREATE TABLE schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,

			// User-defined patterns, loaded into the registry at startup
			`CREATE TABLE custom_patterns (
				name TEXT PRIMARY KEY,
				expr TEXT NOT NULL,
				layout TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				priority INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,

			// Memoized Detect results; result is NULL when nothing was found
			`CREATE TABLE detections (
				filename TEXT NOT NULL,
				date_format TEXT NOT NULL,
				result TEXT,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (filename, date_format)
			)`,

			`CREATE TABLE scans (
				id TEXT PRIMARY KEY,
				root TEXT NOT NULL,
				files INTEGER NOT NULL DEFAULT 0,
				detected INTEGER NOT NULL DEFAULT 0,
				needs_review INTEGER NOT NULL DEFAULT 0,
				recommendation TEXT NOT NULL DEFAULT '',
				confidence REAL NOT NULL DEFAULT 0,
				started_at DATETIME NOT NULL,
				duration_ms INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_scans_root ON scans(root)`,

			`INSERT INTO schema_version (version) VALUES (1)`,
		},
	},
	{
		version: 2,
		up: []string{
			// Audit log of renames, used for undo
			`CREATE TABLE operations_log (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				operation_type TEXT NOT NULL,
				plan_id TEXT,
				source_path TEXT NOT NULL,
				target_path TEXT,
				reason TEXT,
				executed_by TEXT NOT NULL,
				executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_operations_plan ON operations_log(plan_id)`,

			// Files that need a human decision
			`CREATE TABLE skipped_items (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				path TEXT NOT NULL UNIQUE,
				skip_reason TEXT NOT NULL,
				error_details TEXT NOT NULL DEFAULT '',
				attempts INTEGER NOT NULL DEFAULT 1,
				status TEXT NOT NULL DEFAULT 'pending',
				resolution TEXT,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_skipped_status ON skipped_items(status)`,

			`INSERT INTO schema_version (version) VALUES (2)`,
		},
	},
}

type migration struct {
	version int
	up      []string
}

// applyMigrations applies any pending schema migrations
func applyMigrations(db *sql.DB) error {
	var currentVersion int
	err := db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&currentVersion)
	if err != nil {
		// schema_version doesn't exist yet - this is a fresh database
		currentVersion = 0
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}

		for _, stmt := range m.up {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d: %w", m.version, err)
			}
		}

		// each migration inserts its own schema_version row
		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

// SchemaVersion returns the applied schema version
func (s *Store) SchemaVersion() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v int
	err := s.db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&v)
	return v, err
}
