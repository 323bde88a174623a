// Package daemon wires the watcher, the periodic scanner and the HTTP API
// into one long-running process.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Nomadcxx/stampwatch/internal/logging"
	"github.com/Nomadcxx/stampwatch/internal/scanner"
	"github.com/Nomadcxx/stampwatch/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

// Daemon manages the background service
type Daemon struct {
	watcher  *watcher.Watcher
	periodic *scanner.PeriodicScanner
	server   *http.Server
	handler  *DetectionHandler
	logger   *logging.Logger
}

// Config lists the parts to run. Any of them may be nil.
type Config struct {
	Watcher  *watcher.Watcher
	Periodic *scanner.PeriodicScanner
	Server   *http.Server
	Handler  *DetectionHandler
	Logger   *logging.Logger
}

func New(cfg Config) *Daemon {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	return &Daemon{
		watcher:  cfg.Watcher,
		periodic: cfg.Periodic,
		server:   cfg.Server,
		handler:  cfg.Handler,
		logger:   cfg.Logger,
	}
}

// Run blocks until ctx is cancelled, SIGINT/SIGTERM arrives or a part
// fails, then shuts everything down.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d.logger.Info("daemon", "Starting stampwatch daemon")

	g, ctx := errgroup.WithContext(ctx)

	if d.watcher != nil {
		g.Go(func() error {
			if err := d.watcher.Start(ctx); err != nil {
				return fmt.Errorf("watcher error: %w", err)
			}
			return nil
		})
	}

	if d.periodic != nil {
		g.Go(func() error {
			return d.periodic.Start(ctx)
		})
	}

	if d.server != nil {
		g.Go(func() error {
			d.logger.Info("daemon", "API server starting", logging.F("addr", d.server.Addr))
			if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("api server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return d.server.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	d.Stop()
	return err
}

// Stop releases the watcher and pending work.
func (d *Daemon) Stop() {
	d.logger.Info("daemon", "Stopping stampwatch daemon")
	if d.handler != nil {
		d.handler.Shutdown()
	}
	if d.watcher != nil {
		if err := d.watcher.Close(); err != nil {
			d.logger.Warn("daemon", "Error closing watcher", logging.F("error", err.Error()))
		}
	}
	d.logger.Info("daemon", "Stampwatch daemon stopped")
}
