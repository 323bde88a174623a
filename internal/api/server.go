// Package api serves timestamp detection and the custom-pattern registry
// over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Nomadcxx/stampwatch/internal/activity"
	"github.com/Nomadcxx/stampwatch/internal/config"
	"github.com/Nomadcxx/stampwatch/internal/logging"
	"github.com/Nomadcxx/stampwatch/internal/patterns"
	"github.com/Nomadcxx/stampwatch/internal/scanner"
)

// Options holds the collaborators the API serves from. Only Registry is
// required.
type Options struct {
	Config   *config.Config
	Registry *patterns.Registry
	// Scanner detects through the cache and the registry. When nil a
	// cache-less scanner over Registry is used.
	Scanner  *scanner.Scanner
	Periodic *scanner.PeriodicScanner
	Activity *activity.Logger
	// Stats, when set, is reported by /health.
	Stats   func() any
	Logger  *logging.Logger
	Version string
}

// Server implements the API
type Server struct {
	cfg       *config.Config
	registry  *patterns.Registry
	scanner   *scanner.Scanner
	periodic  *scanner.PeriodicScanner
	activity  *activity.Logger
	stats     func() any
	logger    *logging.Logger
	version   string
	startTime time.Time
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Registry == nil {
		opts.Registry, _ = patterns.NewRegistry(nil)
	}
	if opts.Scanner == nil {
		opts.Scanner = scanner.New(scanner.Options{
			DefaultConvention: opts.Config.DateConvention(),
			Custom:            opts.Registry,
			Logger:            opts.Logger,
		}, nil)
	}

	return &Server{
		cfg:       opts.Config,
		registry:  opts.Registry,
		scanner:   opts.Scanner,
		periodic:  opts.Periodic,
		activity:  opts.Activity,
		stats:     opts.Stats,
		logger:    opts.Logger,
		version:   opts.Version,
		startTime: time.Now(),
	}
}

// HTTPServer wraps Handler in an http.Server listening on the configured
// address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Handler returns the HTTP handler with CORS and the API routes
func (s *Server) Handler() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.HealthCheck)
	r.Mount("/api/v1", s.apiRouter())

	return r
}

// apiRouter returns a router with API routes
func (s *Server) apiRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.SetHeader("Content-Type", "application/json"))
	r.Use(s.authMiddleware)

	r.Get("/formats", s.GetFormats)
	r.Post("/detect", s.Detect)
	r.Post("/candidates", s.Candidates)
	r.Post("/ambiguity", s.Ambiguity)
	r.Post("/analyze", s.Analyze)

	r.Route("/patterns", func(r chi.Router) {
		r.Get("/", s.ListPatterns)
		r.Post("/", s.RegisterPattern)
		r.Delete("/{name}", s.DeletePattern)
	})

	r.Get("/activity", s.GetActivity)

	return r
}
