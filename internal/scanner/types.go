package scanner

import (
	"time"

	"github.com/Nomadcxx/stampwatch/internal/database"
	"github.com/Nomadcxx/stampwatch/internal/logging"
	"github.com/Nomadcxx/stampwatch/internal/timestamp"
)

// Store is the persistence the scanner uses when one is attached.
// *database.Store satisfies it.
type Store interface {
	GetDetection(filename string, conv timestamp.Convention) (*timestamp.Timestamp, bool, error)
	PutDetection(filename string, conv timestamp.Convention, ts *timestamp.Timestamp) error
	RecordScan(r database.ScanRecord) error
}

// Options configures a Scanner.
type Options struct {
	Recursive bool
	// Workers bounds concurrent per-file work. Values below 1 mean 1.
	Workers int
	// Threshold is the batch confidence needed to auto-resolve a directory.
	Threshold float64
	// DefaultConvention is used when a directory cannot be auto-resolved.
	DefaultConvention timestamp.Convention
	// Custom patterns tried before built-in detection.
	Custom timestamp.CustomMatcher
	// UseCache enables memoized detections in Store.
	UseCache bool
	Logger   *logging.Logger
}

// FileResult is the detection outcome for one file.
type FileResult struct {
	Path      string                     `json:"path"`
	Name      string                     `json:"name"`
	Timestamp *timestamp.Timestamp       `json:"timestamp"`
	Ambiguity *timestamp.AmbiguityRecord `json:"ambiguity,omitempty"`
	Cached    bool                       `json:"cached,omitempty"`
}

// DirectoryReport holds the batch resolution for one directory and the
// files detected under it.
type DirectoryReport struct {
	Path        string                    `json:"path"`
	Analysis    timestamp.ContextAnalysis `json:"analysis"`
	Decision    timestamp.Decision        `json:"decision"`
	Convention  timestamp.Convention      `json:"convention"`
	NeedsReview bool                      `json:"needs_review"`
	Files       []FileResult              `json:"files"`
}

// Report is the result of one scan.
type Report struct {
	ID          string                    `json:"id"`
	Root        string                    `json:"root"`
	StartedAt   time.Time                 `json:"started_at"`
	Duration    time.Duration             `json:"duration"`
	Files       int                       `json:"files"`
	Detected    int                       `json:"detected"`
	Analysis    timestamp.ContextAnalysis `json:"analysis"`
	Directories []DirectoryReport         `json:"directories"`
}

// NeedsReview counts directories whose day/month order could not be
// settled automatically.
func (r *Report) NeedsReview() int {
	n := 0
	for _, d := range r.Directories {
		if d.NeedsReview {
			n++
		}
	}
	return n
}

// AllFiles returns every file result in directory order.
func (r *Report) AllFiles() []FileResult {
	out := make([]FileResult, 0, r.Files)
	for _, d := range r.Directories {
		out = append(out, d.Files...)
	}
	return out
}

// ScannerStatus holds the current state for health reporting
type ScannerStatus struct {
	Healthy      bool      `json:"healthy"`
	LastScan     time.Time `json:"last_scan,omitempty"`
	LastSuccess  time.Time `json:"last_success,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	SkippedTicks int64     `json:"skipped_ticks"`
	Scanning     bool      `json:"scanning"`

	// Totals of the last pass over every root.
	Files       int `json:"files"`
	Detected    int `json:"detected"`
	NeedsReview int `json:"needs_review"`
}
