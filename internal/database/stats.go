package database

// Stats represents database statistics
type Stats struct {
	Patterns      int `json:"patterns"`
	Detections    int `json:"detections"`
	Scans         int `json:"scans"`
	Operations    int `json:"operations"`
	PendingReview int `json:"pending_review"`
}

// GetStats returns database statistics
func (s *Store) GetStats() (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats Stats
	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM custom_patterns`, &stats.Patterns},
		{`SELECT COUNT(*) FROM detections`, &stats.Detections},
		{`SELECT COUNT(*) FROM scans`, &stats.Scans},
		{`SELECT COUNT(*) FROM operations_log`, &stats.Operations},
		{`SELECT COUNT(*) FROM skipped_items WHERE status = 'pending'`, &stats.PendingReview},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dst); err != nil {
			return nil, err
		}
	}

	return &stats, nil
}
