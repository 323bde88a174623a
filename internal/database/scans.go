package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ScanRecord summarizes one directory scan.
type ScanRecord struct {
	ID             string
	Root           string
	Files          int
	Detected       int
	NeedsReview    int
	Recommendation string
	Confidence     float64
	StartedAt      time.Time
	Duration       time.Duration
	CreatedAt      time.Time
}

// RecordScan stores a scan summary.
func (s *Store) RecordScan(r ScanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO scans (
			id, root, files, detected, needs_review,
			recommendation, confidence, started_at, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Root, r.Files, r.Detected, r.NeedsReview,
		r.Recommendation, r.Confidence, r.StartedAt.UTC(), r.Duration.Milliseconds())
	return err
}

const scanColumns = `id, root, files, detected, needs_review,
	recommendation, confidence, started_at, duration_ms, created_at`

// GetScan returns a scan by id.
func (s *Store) GetScan(id string) (*ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+scanColumns+` FROM scans WHERE id = ?`, id)
	r, err := scanScanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: scan %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListScans returns the most recent scans, newest first.
func (s *Store) ListScans(limit int) ([]ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT `+scanColumns+`
		FROM scans
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScanRecord
	for rows.Next() {
		r, err := scanScanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScanRecord(row rowScanner) (*ScanRecord, error) {
	var r ScanRecord
	var durationMS int64
	err := row.Scan(
		&r.ID, &r.Root, &r.Files, &r.Detected, &r.NeedsReview,
		&r.Recommendation, &r.Confidence, &r.StartedAt, &durationMS, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return &r, nil
}
