package daemon

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Nomadcxx/stampwatch/internal/activity"
	"github.com/Nomadcxx/stampwatch/internal/database"
	"github.com/Nomadcxx/stampwatch/internal/logging"
	"github.com/Nomadcxx/stampwatch/internal/patterns"
	"github.com/Nomadcxx/stampwatch/internal/scanner"
	"github.com/Nomadcxx/stampwatch/internal/timestamp"
	"github.com/Nomadcxx/stampwatch/internal/watcher"
)

// ReviewQueue receives files that need a human decision.
type ReviewQueue interface {
	InsertSkippedItem(path string, reason database.SkipReason, errorDetails string) error
}

// DetectionHandler detects timestamps for files reported by the watcher,
// using the convention last settled for each file's directory.
type DetectionHandler struct {
	scanner        *scanner.Scanner
	queue          ReviewQueue
	activityLogger *activity.Logger
	logger         *logging.Logger
	debounceTime   time.Duration

	mu          sync.Mutex
	pending     map[string]*time.Timer
	directories map[string]dirState
	stats       *Stats
}

type dirState struct {
	Convention  timestamp.Convention
	NeedsReview bool
}

type Stats struct {
	mu            sync.RWMutex
	Detected      int64
	Undetected    int64
	Queued        int64
	LastProcessed time.Time
	StartTime     time.Time
}

func NewStats() *Stats {
	return &Stats{
		StartTime: time.Now(),
	}
}

func (s *Stats) record(detected, queued bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if detected {
		s.Detected++
	} else {
		s.Undetected++
	}
	if queued {
		s.Queued++
	}
	s.LastProcessed = time.Now()
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StatsSnapshot{
		Detected:      s.Detected,
		Undetected:    s.Undetected,
		Queued:        s.Queued,
		LastProcessed: s.LastProcessed,
		Uptime:        time.Since(s.StartTime),
	}
}

type StatsSnapshot struct {
	Detected      int64         `json:"detected"`
	Undetected    int64         `json:"undetected"`
	Queued        int64         `json:"queued_for_review"`
	LastProcessed time.Time     `json:"last_processed,omitempty"`
	Uptime        time.Duration `json:"uptime"`
}

type HandlerConfig struct {
	Scanner      *scanner.Scanner
	Queue        ReviewQueue
	Activity     *activity.Logger
	Logger       *logging.Logger
	DebounceTime time.Duration
}

// partialExts are files still being written by a download or copy.
var partialExts = map[string]bool{
	".tmp": true, ".part": true, ".partial": true, ".crdownload": true, ".download": true, ".swp": true,
}

func NewDetectionHandler(cfg HandlerConfig) *DetectionHandler {
	if cfg.DebounceTime == 0 {
		cfg.DebounceTime = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.Scanner == nil {
		cfg.Scanner = scanner.New(scanner.Options{Logger: cfg.Logger}, nil)
	}

	return &DetectionHandler{
		scanner:        cfg.Scanner,
		queue:          cfg.Queue,
		activityLogger: cfg.Activity,
		logger:         cfg.Logger,
		debounceTime:   cfg.DebounceTime,
		pending:        make(map[string]*time.Timer),
		directories:    make(map[string]dirState),
		stats:          NewStats(),
	}
}

var _ watcher.Handler = (*DetectionHandler)(nil)

func (h *DetectionHandler) Wants(path string) bool {
	return !partialExts[strings.ToLower(filepath.Ext(path))]
}

func (h *DetectionHandler) HandleFileEvent(event watcher.FileEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if timer, exists := h.pending[event.Path]; exists {
		timer.Stop()
		delete(h.pending, event.Path)
	}

	switch event.Type {
	case watcher.EventDelete, watcher.EventMove:
		delete(h.directories, event.Path)
		return nil
	}

	h.pending[event.Path] = time.AfterFunc(h.debounceTime, func() {
		h.processFile(event.Path)
	})

	return nil
}

// ApplyReport remembers the convention settled for every directory in r.
func (h *DetectionHandler) ApplyReport(r *scanner.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, d := range r.Directories {
		h.directories[d.Path] = dirState{Convention: d.Convention, NeedsReview: d.NeedsReview}
	}
}

// directoryState returns the known state for dir, resolving it from the
// directory's current contents the first time.
func (h *DetectionHandler) directoryState(dir string) dirState {
	h.mu.Lock()
	state, ok := h.directories[dir]
	h.mu.Unlock()
	if ok {
		return state
	}

	report, err := h.scanner.ResolveDirectory(dir)
	if err != nil {
		h.logger.Warn("handler", "Unable to resolve directory convention",
			logging.F("directory", dir), logging.F("error", err.Error()))
		return dirState{}
	}
	state = dirState{Convention: report.Convention, NeedsReview: report.NeedsReview}

	h.mu.Lock()
	h.directories[dir] = state
	h.mu.Unlock()

	h.logger.Info("handler", "Directory convention resolved",
		logging.F("directory", dir),
		logging.F("convention", string(state.Convention)),
		logging.F("confidence", report.Analysis.Confidence),
		logging.F("needs_review", state.NeedsReview))
	return state
}

func (h *DetectionHandler) processFile(path string) {
	start := time.Now()

	h.mu.Lock()
	delete(h.pending, path)
	h.mu.Unlock()

	name := filepath.Base(path)
	state := h.directoryState(filepath.Dir(path))
	ts := h.scanner.Detect(name, state.Convention)

	entry := activity.Entry{
		Action:     activity.ActionDetect,
		Source:     path,
		Method:     activity.MethodBuiltin,
		Convention: string(state.Convention),
		Success:    ts != nil,
	}

	queued := false
	switch {
	case ts == nil:
		h.logger.Info("handler", "No timestamp found", logging.F("filename", name))
		queued = h.enqueue(path, database.SkipReasonNoTimestamp, "no timestamp in file name")
	default:
		entry.Detected = ts.String()
		entry.Type = ts.Type
		confidence := ts.Confidence
		entry.Confidence = &confidence
		if strings.HasPrefix(ts.Type, patterns.TypePrefix) {
			entry.Method = activity.MethodCustom
		}
		h.logger.Info("handler", "Timestamp detected",
			logging.F("filename", name),
			logging.F("timestamp", ts.String()),
			logging.F("type", ts.Type))

		if state.NeedsReview {
			if amb := timestamp.DetectAmbiguity(name); amb != nil {
				queued = h.enqueue(path, database.SkipReasonAmbiguousDate, fmt.Sprintf("%s: %q", amb.Kind, amb.Match))
			}
		}
	}

	entry.DurationMs = time.Since(start).Milliseconds()
	h.stats.record(ts != nil, queued)
	h.logEntry(entry)
}

func (h *DetectionHandler) enqueue(path string, reason database.SkipReason, details string) bool {
	if h.queue == nil {
		return false
	}
	if err := h.queue.InsertSkippedItem(path, reason, details); err != nil {
		h.logger.Warn("handler", "Failed to queue file for review",
			logging.F("path", path), logging.F("error", err.Error()))
		return false
	}
	return true
}

func (h *DetectionHandler) logEntry(entry activity.Entry) {
	if h.activityLogger == nil {
		return
	}
	if err := h.activityLogger.Log(entry); err != nil {
		h.logger.Warn("handler", "Failed to log activity", logging.F("error", err.Error()))
	}
}

func (h *DetectionHandler) Stats() StatsSnapshot {
	return h.stats.Snapshot()
}

// Shutdown cancels pending debounced work.
func (h *DetectionHandler) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for path, timer := range h.pending {
		timer.Stop()
		delete(h.pending, path)
	}
}
