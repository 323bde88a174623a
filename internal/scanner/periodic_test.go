package scanner

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/stampwatch/internal/logging"
)

func TestPeriodicScanner_IsHealthy_DefaultTrue(t *testing.T) {
	s := NewPeriodicScanner(PeriodicConfig{})
	assert.True(t, s.IsHealthy())
}

func TestPeriodicScanner_Status_ReturnsCorrectState(t *testing.T) {
	now := time.Now()
	s := &PeriodicScanner{
		healthy:      true,
		lastScan:     now,
		lastSuccess:  now,
		skippedTicks: 5,
	}

	status := s.Status()
	assert.True(t, status.Healthy)
	assert.Equal(t, int64(5), status.SkippedTicks)
	assert.False(t, status.Scanning)
	assert.Empty(t, status.LastError)
}

func TestPeriodicScanner_SkipsWhenBusy(t *testing.T) {
	s := &PeriodicScanner{
		scanning: true,
		logger:   logging.Nop(),
	}

	s.tick(context.Background())
	assert.Equal(t, int64(1), s.skippedTicks)
}

func TestPeriodicScanner_StartStopsOnContextCancel(t *testing.T) {
	s := NewPeriodicScanner(PeriodicConfig{
		Interval: 100 * time.Millisecond,
		Scanner:  New(Options{}, nil),
	})

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	var startErr error
	go func() {
		defer wg.Done()
		startErr = s.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	wg.Wait()

	assert.NoError(t, startErr)
}

func TestPeriodicScanner_TickForwardsReports(t *testing.T) {
	root := setupTree(t)

	var reports []*Report
	s := NewPeriodicScanner(PeriodicConfig{
		Roots:    []string{root},
		Scanner:  New(Options{Recursive: true}, nil),
		OnReport: func(r *Report) { reports = append(reports, r) },
	})

	s.tick(context.Background())

	require.Len(t, reports, 1)
	assert.Equal(t, 8, reports[0].Files)
	status := s.Status()
	assert.True(t, status.Healthy)
	assert.Equal(t, 8, status.Files)
	assert.Equal(t, 7, status.Detected)
	assert.Equal(t, 1, status.NeedsReview)
	assert.False(t, status.LastSuccess.IsZero())
	assert.False(t, status.Scanning)
}

func TestPeriodicScanner_FailureMarksUnhealthy(t *testing.T) {
	root := setupTree(t)

	var reports int
	s := NewPeriodicScanner(PeriodicConfig{
		Roots:    []string{filepath.Join(root, "missing"), root},
		Scanner:  New(Options{Recursive: true}, nil),
		OnReport: func(*Report) { reports++ },
	})

	s.tick(context.Background())

	// The healthy root is still scanned.
	assert.Equal(t, 1, reports)
	status := s.Status()
	assert.False(t, status.Healthy)
	assert.Contains(t, status.LastError, "1 of 2 roots failed")
	assert.True(t, status.LastSuccess.IsZero())
}
