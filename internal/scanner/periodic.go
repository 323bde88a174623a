package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Nomadcxx/stampwatch/internal/logging"
)

// PeriodicConfig holds configuration for the periodic scanner
type PeriodicConfig struct {
	Interval time.Duration
	Roots    []string
	Scanner  *Scanner
	Logger   *logging.Logger
	// OnReport, when set, receives every completed report.
	OnReport func(*Report)
}

// PeriodicScanner re-scans the watched roots on an interval so files the
// watcher missed still get detected.
type PeriodicScanner struct {
	interval time.Duration
	roots    []string
	scanner  *Scanner
	logger   *logging.Logger
	onReport func(*Report)

	mu           sync.Mutex
	scanning     bool
	lastScan     time.Time
	lastSuccess  time.Time
	lastError    error
	skippedTicks int64
	healthy      bool
	last         passTotals
}

// passTotals sums the reports of one pass over every root.
type passTotals struct {
	files       int
	detected    int
	needsReview int
}

// NewPeriodicScanner creates a new scanner with the given config
func NewPeriodicScanner(cfg PeriodicConfig) *PeriodicScanner {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &PeriodicScanner{
		interval: cfg.Interval,
		roots:    cfg.Roots,
		scanner:  cfg.Scanner,
		logger:   logger,
		onReport: cfg.OnReport,
		healthy:  true,
	}
}

// IsHealthy returns whether the last scan succeeded
func (s *PeriodicScanner) IsHealthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.healthy
}

// Status returns the current scanner status for health reporting
func (s *PeriodicScanner) Status() ScannerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := ScannerStatus{
		Healthy:      s.healthy,
		LastScan:     s.lastScan,
		LastSuccess:  s.lastSuccess,
		SkippedTicks: s.skippedTicks,
		Scanning:     s.scanning,
		Files:        s.last.files,
		Detected:     s.last.detected,
		NeedsReview:  s.last.needsReview,
	}
	if s.lastError != nil {
		status.LastError = s.lastError.Error()
	}
	return status
}

// Start begins the periodic scanning loop. Blocks until context is cancelled.
func (s *PeriodicScanner) Start(ctx context.Context) error {
	s.logger.Info("scanner", "Periodic scanner starting",
		logging.F("interval", s.interval.String()),
		logging.F("roots", len(s.roots)))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scanner", "Periodic scanner stopped")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *PeriodicScanner) tick(ctx context.Context) {
	s.mu.Lock()
	if s.scanning {
		s.skippedTicks++
		s.mu.Unlock()
		s.logger.Warn("scanner", "Periodic scan skipped - previous scan still running",
			logging.F("skipped_ticks", s.skippedTicks))
		return
	}
	s.scanning = true
	s.mu.Unlock()

	totals, err := s.runScan(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanning = false
	s.lastScan = time.Now()
	s.last = totals
	if err != nil {
		s.lastError = err
		s.healthy = false
		s.logger.Error("scanner", "Periodic scan failed", err)
		return
	}
	s.lastSuccess = s.lastScan
	s.lastError = nil
	s.healthy = true
	s.logger.Debug("scanner", "Periodic scan complete",
		logging.F("files", totals.files),
		logging.F("detected", totals.detected),
		logging.F("needs_review", totals.needsReview))
}

func (s *PeriodicScanner) runScan(ctx context.Context) (totals passTotals, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan panic: %v", r)
		}
	}()

	var failed int
	var lastErr error
	for _, root := range s.roots {
		report, scanErr := s.scanner.Scan(ctx, root)
		if scanErr != nil {
			s.logger.Warn("scanner", "Error scanning root",
				logging.F("root", root),
				logging.F("error", scanErr.Error()))
			failed++
			lastErr = scanErr
			continue
		}
		totals.files += report.Files
		totals.detected += report.Detected
		totals.needsReview += report.NeedsReview()
		if s.onReport != nil {
			s.onReport(report)
		}
	}

	if failed > 0 {
		return totals, fmt.Errorf("%d of %d roots failed: %w", failed, len(s.roots), lastErr)
	}
	return totals, nil
}
