package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Nomadcxx/stampwatch/internal/timestamp"
)

// GetDetection returns a memoized detection. found is false when the
// filename has not been detected under this convention; ts is nil when it
// was detected and nothing was found.
func (s *Store) GetDetection(filename string, conv timestamp.Convention) (ts *timestamp.Timestamp, found bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result sql.NullString
	err = s.db.QueryRow(`
		SELECT result FROM detections WHERE filename = ? AND date_format = ?
	`, filename, string(conv)).Scan(&result)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !result.Valid {
		return nil, true, nil
	}

	var out timestamp.Timestamp
	if err := json.Unmarshal([]byte(result.String), &out); err != nil {
		return nil, false, fmt.Errorf("corrupt detection for %s: %w", filename, err)
	}
	return &out, true, nil
}

// PutDetection memoizes the result of detecting filename under conv.
func (s *Store) PutDetection(filename string, conv timestamp.Convention, ts *timestamp.Timestamp) error {
	var result sql.NullString
	if ts != nil {
		data, err := json.Marshal(ts)
		if err != nil {
			return fmt.Errorf("failed to encode detection: %w", err)
		}
		result = sql.NullString{String: string(data), Valid: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO detections (filename, date_format, result)
		VALUES (?, ?, ?)
		ON CONFLICT(filename, date_format) DO UPDATE SET
			result = excluded.result,
			created_at = CURRENT_TIMESTAMP
	`, filename, string(conv), result)
	return err
}

// ClearDetections drops every memoized detection and returns how many were
// removed.
func (s *Store) ClearDetections() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM detections`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
