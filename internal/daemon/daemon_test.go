package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/stampwatch/internal/scanner"
	"github.com/Nomadcxx/stampwatch/internal/watcher"
)

func TestDaemon_RunStopsOnCancel(t *testing.T) {
	root := t.TempDir()
	h := NewDetectionHandler(HandlerConfig{})

	w, err := watcher.NewWatcher(h)
	require.NoError(t, err)
	require.NoError(t, w.Watch([]string{root}))

	periodic := scanner.NewPeriodicScanner(scanner.PeriodicConfig{
		Interval: time.Hour,
		Roots:    []string{root},
		Scanner:  scanner.New(scanner.Options{}, nil),
	})

	d := New(Config{Watcher: w, Periodic: periodic, Handler: h})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}
