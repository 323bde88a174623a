package database

import (
	"database/sql"
	"time"
)

// SkipReason defines why a file was left for review
type SkipReason string

const (
	SkipReasonNoTimestamp   SkipReason = "no_timestamp"
	SkipReasonAmbiguousDate SkipReason = "ambiguous_date"
	SkipReasonTargetExists  SkipReason = "target_exists"
)

// SkippedItem represents a file that couldn't be processed automatically
type SkippedItem struct {
	ID           int64
	Path         string
	SkipReason   SkipReason
	ErrorDetails string
	Attempts     int
	Status       string
	Resolution   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InsertSkippedItem adds a file to the review queue, or bumps its attempt
// count if it is already queued.
func (s *Store) InsertSkippedItem(path string, reason SkipReason, errorDetails string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO skipped_items (path, skip_reason, error_details)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			skip_reason = excluded.skip_reason,
			error_details = excluded.error_details,
			attempts = attempts + 1,
			status = 'pending',
			updated_at = CURRENT_TIMESTAMP
	`, path, reason, errorDetails)

	return err
}

const skippedColumns = `id, path, skip_reason, error_details, attempts, status,
	COALESCE(resolution, ''), created_at, updated_at`

// GetPendingSkippedItems returns all items awaiting review
func (s *Store) GetPendingSkippedItems() ([]SkippedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT ` + skippedColumns + `
		FROM skipped_items
		WHERE status = 'pending'
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSkippedItems(rows)
}

// GetSkippedItemsByReason returns pending items filtered by skip reason
func (s *Store) GetSkippedItemsByReason(reason SkipReason) ([]SkippedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT `+skippedColumns+`
		FROM skipped_items
		WHERE skip_reason = ? AND status = 'pending'
		ORDER BY id ASC
	`, reason)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSkippedItems(rows)
}

// ResolveSkippedItem marks an item as resolved
func (s *Store) ResolveSkippedItem(id int64, resolution string) error {
	return s.setSkippedStatus(id, "resolved", resolution)
}

// IgnoreSkippedItem marks an item as ignored
func (s *Store) IgnoreSkippedItem(id int64) error {
	return s.setSkippedStatus(id, "ignored", "")
}

func (s *Store) setSkippedStatus(id int64, status, resolution string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE skipped_items
		SET status = ?, resolution = NULLIF(?, ''), updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, status, resolution, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountSkippedByReason returns counts grouped by skip reason (pending only)
func (s *Store) CountSkippedByReason() (map[SkipReason]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT skip_reason, COUNT(*) FROM skipped_items
		WHERE status = 'pending'
		GROUP BY skip_reason
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[SkipReason]int)
	for rows.Next() {
		var reason string
		var count int
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, err
		}
		counts[SkipReason(reason)] = count
	}

	return counts, rows.Err()
}

func scanSkippedItems(rows *sql.Rows) ([]SkippedItem, error) {
	var items []SkippedItem
	for rows.Next() {
		var item SkippedItem
		var reason string
		err := rows.Scan(
			&item.ID, &item.Path, &reason, &item.ErrorDetails,
			&item.Attempts, &item.Status, &item.Resolution,
			&item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		item.SkipReason = SkipReason(reason)
		items = append(items, item)
	}
	return items, rows.Err()
}
