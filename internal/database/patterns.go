package database

import (
	"github.com/Nomadcxx/stampwatch/internal/patterns"
)

// Store satisfies the registry's persistence interface.
var _ patterns.Store = (*Store)(nil)

// SavePattern inserts or replaces a custom pattern. Memoized detections are
// dropped since they may no longer reflect the registry.
func (s *Store) SavePattern(p patterns.Pattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO custom_patterns (name, expr, layout, description, priority)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			expr = excluded.expr,
			layout = excluded.layout,
			description = excluded.description,
			priority = excluded.priority,
			updated_at = CURRENT_TIMESTAMP
	`, p.Name, p.Expr, p.Layout, p.Description, p.Priority)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM detections`); err != nil {
		return err
	}
	return tx.Commit()
}

// DeletePattern removes a custom pattern by name.
func (s *Store) DeletePattern(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM custom_patterns WHERE name = ?`, name); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM detections`); err != nil {
		return err
	}
	return tx.Commit()
}

// ClearPatterns removes every custom pattern.
func (s *Store) ClearPatterns() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM custom_patterns`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM detections`); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadPatterns returns every stored pattern.
func (s *Store) LoadPatterns() ([]patterns.Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT name, expr, layout, description, priority
		FROM custom_patterns
		ORDER BY priority DESC, name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []patterns.Pattern
	for rows.Next() {
		var p patterns.Pattern
		if err := rows.Scan(&p.Name, &p.Expr, &p.Layout, &p.Description, &p.Priority); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
