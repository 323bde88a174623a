// Package app wires the pieces shared by the stampwatch CLI and daemon:
// logger, database, pattern registry, scanner and activity log.
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/Nomadcxx/stampwatch/internal/activity"
	"github.com/Nomadcxx/stampwatch/internal/config"
	"github.com/Nomadcxx/stampwatch/internal/database"
	"github.com/Nomadcxx/stampwatch/internal/logging"
	"github.com/Nomadcxx/stampwatch/internal/paths"
	"github.com/Nomadcxx/stampwatch/internal/patterns"
	"github.com/Nomadcxx/stampwatch/internal/scanner"
)

// Options adjusts Init for the calling binary.
type Options struct {
	// LogLevel overrides cfg.Logging.Level when set.
	LogLevel string
	// Console receives console log lines. Nil means stdout.
	Console io.Writer
	// InMemory opens a throwaway database instead of the configured one.
	InMemory bool
	// NoActivity skips opening the activity log.
	NoActivity bool
}

// App holds the initialized components. Close releases them.
type App struct {
	Config   *config.Config
	Logger   *logging.Logger
	DB       *database.Store
	Registry *patterns.Registry
	Scanner  *scanner.Scanner
	Activity *activity.Logger
}

// Init builds an App from cfg. On error everything opened so far is closed.
func Init(cfg *config.Config, opts Options) (a *App, err error) {
	a = &App{Config: cfg}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	if a.Logger, err = InitLogger(cfg, opts); err != nil {
		return a, err
	}

	if opts.InMemory {
		a.DB, err = database.OpenInMemory()
	} else {
		var dbPath string
		if dbPath, err = cfg.DatabasePath(); err != nil {
			return a, err
		}
		a.DB, err = database.OpenPath(dbPath)
	}
	if err != nil {
		return a, fmt.Errorf("failed to open database: %w", err)
	}

	if a.Registry, err = patterns.NewRegistry(a.DB); err != nil {
		return a, err
	}

	a.Scanner = scanner.New(scanner.Options{
		Recursive:         true,
		Workers:           cfg.Detection.Workers,
		Threshold:         cfg.Detection.AutoResolveThreshold,
		DefaultConvention: cfg.DateConvention(),
		Custom:            a.Registry,
		UseCache:          cfg.Detection.CacheEnabled,
		Logger:            a.Logger,
	}, a.DB)

	if !opts.NoActivity {
		var dir string
		if dir, err = paths.ActivityDir(); err != nil {
			return a, err
		}
		if a.Activity, err = activity.NewLogger(dir); err != nil {
			return a, err
		}
	}

	return a, nil
}

// InitLogger creates the logger described by cfg.Logging.
func InitLogger(cfg *config.Config, opts Options) (*logging.Logger, error) {
	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}
	if opts.LogLevel != "" {
		logCfg.Level = opts.LogLevel
	}
	if logCfg.File == "" {
		path, err := paths.LogPath()
		if err != nil {
			return nil, err
		}
		logCfg.File = path
	}

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	logger, err := logging.NewWithConsole(logCfg, console)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Close releases whatever Init opened.
func (a *App) Close() {
	if a.Activity != nil {
		a.Activity.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
	if a.Logger != nil {
		a.Logger.Close()
	}
}
