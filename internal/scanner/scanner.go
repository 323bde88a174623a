// Package scanner walks directories, infers each directory's day/month
// convention from its filenames and detects a timestamp for every file.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Nomadcxx/stampwatch/internal/database"
	"github.com/Nomadcxx/stampwatch/internal/logging"
	"github.com/Nomadcxx/stampwatch/internal/timestamp"
)

// Scanner runs directory scans. It is safe for concurrent use.
type Scanner struct {
	opts   Options
	store  Store
	logger *logging.Logger
}

// New creates a scanner. store may be nil.
func New(opts Options, store Store) *Scanner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.DefaultConvention == "" {
		opts.DefaultConvention = timestamp.DMY
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Scanner{opts: opts, store: store, logger: logger}
}

// Scan walks root and returns a report of every file's detected timestamp.
// Cancelling ctx stops the walk and any pending detection.
func (s *Scanner) Scan(ctx context.Context, root string) (*Report, error) {
	start := time.Now()

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	s.logger.Info("scanner", "Scan starting", logging.F("root", root), logging.F("recursive", s.opts.Recursive))

	files, err := s.walk(ctx, root)
	if err != nil {
		return nil, err
	}

	evidence, err := s.collectEvidence(ctx, files)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:        uuid.NewString(),
		Root:      root,
		StartedAt: start,
		Files:     len(files),
		Analysis:  timestamp.Aggregate(evidence, timestamp.BatchOptions{}),
	}

	byDir := groupByDirectory(files)
	for _, dir := range sortedKeys(byDir) {
		report.Directories = append(report.Directories, s.resolveDirectory(dir, byDir[dir], evidence))
	}

	if err := s.detectAll(ctx, report); err != nil {
		return nil, err
	}

	for _, d := range report.Directories {
		for _, f := range d.Files {
			if f.Timestamp != nil {
				report.Detected++
			}
		}
	}
	report.Duration = time.Since(start)

	s.record(report)

	s.logger.Info("scanner", "Scan complete",
		logging.F("root", root),
		logging.F("files", report.Files),
		logging.F("detected", report.Detected),
		logging.F("needs_review", report.NeedsReview()),
		logging.F("duration_ms", report.Duration.Milliseconds()))

	return report, nil
}

// ResolveDirectory settles the day/month convention for the files directly
// inside dir without detecting them.
func (s *Scanner) ResolveDirectory(dir string) (DirectoryReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return DirectoryReport{}, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	evidence := make([]timestamp.FileEvidence, len(files))
	for i, f := range files {
		evidence[i] = timestamp.CollectEvidence(f)
	}
	return s.resolveDirectory(dir, files, evidence), nil
}

// walk lists regular files under root, skipping hidden entries.
func (s *Scanner) walk(ctx context.Context, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			s.logger.Warn("scanner", "Path inaccessible during scan",
				logging.F("path", path),
				logging.F("error", err.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !s.opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (s *Scanner) collectEvidence(ctx context.Context, files []string) ([]timestamp.FileEvidence, error) {
	evidence := make([]timestamp.FileEvidence, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			evidence[i] = timestamp.CollectEvidence(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return evidence, nil
}

// resolveDirectory picks the day/month convention for files in dir.
func (s *Scanner) resolveDirectory(dir string, files []string, evidence []timestamp.FileEvidence) DirectoryReport {
	analysis := timestamp.Aggregate(evidence, timestamp.BatchOptions{CurrentDirectory: dir})
	decision := analysis.Decide(s.opts.Threshold)

	report := DirectoryReport{
		Path:       dir,
		Analysis:   analysis,
		Decision:   decision,
		Convention: s.opts.DefaultConvention,
	}
	if decision == timestamp.AutoResolve {
		report.Convention = analysis.Recommendation
	} else {
		report.NeedsReview = hasAmbiguousFile(dir, evidence)
	}

	for _, f := range files {
		report.Files = append(report.Files, FileResult{Path: f, Name: filepath.Base(f)})
	}

	if report.NeedsReview {
		s.logger.Warn("scanner", "Directory needs day/month review",
			logging.F("directory", dir),
			logging.F("confidence", analysis.Confidence),
			logging.F("default", string(report.Convention)))
	}
	return report
}

func hasAmbiguousFile(dir string, evidence []timestamp.FileEvidence) bool {
	for _, e := range evidence {
		if e.Directory == dir && e.Ambiguous {
			return true
		}
	}
	return false
}

// detectAll fills in each file's timestamp using its directory's convention.
func (s *Scanner) detectAll(ctx context.Context, report *Report) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for di := range report.Directories {
		dir := &report.Directories[di]
		for fi := range dir.Files {
			file := &dir.Files[fi]
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				file.Timestamp, file.Cached = s.detect(file.Name, dir.Convention)
				if dir.NeedsReview {
					file.Ambiguity = timestamp.DetectAmbiguity(file.Name)
				}
				return nil
			})
		}
	}
	return g.Wait()
}

// Settle applies a user-chosen convention to a directory that needed
// review and re-detects its files.
func (s *Scanner) Settle(d *DirectoryReport, conv timestamp.Convention) {
	d.Convention = conv
	d.NeedsReview = false
	for i := range d.Files {
		d.Files[i].Timestamp, d.Files[i].Cached = s.detect(d.Files[i].Name, conv)
	}
	s.logger.Info("scanner", "Directory convention set by user",
		logging.F("directory", d.Path),
		logging.F("convention", string(conv)))
}

// Detect runs single-file detection through the cache.
func (s *Scanner) Detect(name string, conv timestamp.Convention) *timestamp.Timestamp {
	if conv == "" {
		conv = s.opts.DefaultConvention
	}
	ts, _ := s.detect(name, conv)
	return ts
}

func (s *Scanner) detect(name string, conv timestamp.Convention) (*timestamp.Timestamp, bool) {
	useCache := s.opts.UseCache && s.store != nil
	if useCache {
		ts, found, err := s.store.GetDetection(name, conv)
		if err != nil {
			s.logger.Warn("scanner", "Detection cache read failed",
				logging.F("name", name),
				logging.F("error", err.Error()))
		} else if found {
			return ts, true
		}
	}

	ts := timestamp.Detect(name, timestamp.Options{DateFormat: conv, Custom: s.opts.Custom})

	if useCache {
		if err := s.store.PutDetection(name, conv, ts); err != nil {
			s.logger.Warn("scanner", "Detection cache write failed",
				logging.F("name", name),
				logging.F("error", err.Error()))
		}
	}
	return ts, false
}

func (s *Scanner) record(r *Report) {
	if s.store == nil {
		return
	}
	err := s.store.RecordScan(database.ScanRecord{
		ID:             r.ID,
		Root:           r.Root,
		Files:          r.Files,
		Detected:       r.Detected,
		NeedsReview:    r.NeedsReview(),
		Recommendation: string(r.Analysis.Recommendation),
		Confidence:     r.Analysis.Confidence,
		StartedAt:      r.StartedAt,
		Duration:       r.Duration,
	})
	if err != nil {
		s.logger.Error("scanner", "Failed to record scan", err, logging.F("id", r.ID))
	}
}

func groupByDirectory(files []string) map[string][]string {
	out := make(map[string][]string)
	for _, f := range files {
		dir := filepath.Dir(f)
		out[dir] = append(out[dir], f)
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
