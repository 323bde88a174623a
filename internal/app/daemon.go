package app

import (
	"fmt"

	"github.com/Nomadcxx/stampwatch/internal/api"
	"github.com/Nomadcxx/stampwatch/internal/daemon"
	"github.com/Nomadcxx/stampwatch/internal/scanner"
	"github.com/Nomadcxx/stampwatch/internal/watcher"
)

// NewDaemon assembles the watcher, periodic scanner and API server over
// dirs. Empty dirs means cfg.Watch.Directories.
func (a *App) NewDaemon(dirs []string, version string) (*daemon.Daemon, error) {
	if len(dirs) == 0 {
		dirs = a.Config.Watch.Directories
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no directories to watch (set watch.directories or pass them as arguments)")
	}

	handler := daemon.NewDetectionHandler(daemon.HandlerConfig{
		Scanner:  a.Scanner,
		Queue:    a.DB,
		Activity: a.Activity,
		Logger:   a.Logger,
	})

	w, err := watcher.NewWatcher(handler,
		watcher.WithRecursive(a.Config.Watch.Recursive),
		watcher.WithLogger(a.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Watch(dirs); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch directories: %w", err)
	}

	var periodic *scanner.PeriodicScanner
	if a.Config.Watch.ScanInterval > 0 {
		periodic = scanner.NewPeriodicScanner(scanner.PeriodicConfig{
			Interval: a.Config.Watch.ScanInterval,
			Roots:    dirs,
			Scanner:  a.Scanner,
			Logger:   a.Logger,
			OnReport: handler.ApplyReport,
		})
	}

	server := api.NewServer(api.Options{
		Config:   a.Config,
		Registry: a.Registry,
		Scanner:  a.Scanner,
		Periodic: periodic,
		Activity: a.Activity,
		Stats:    func() any { return handler.Stats() },
		Logger:   a.Logger,
		Version:  version,
	})

	return daemon.New(daemon.Config{
		Watcher:  w,
		Periodic: periodic,
		Server:   server.HTTPServer(),
		Handler:  handler,
		Logger:   a.Logger,
	}), nil
}
