// Package activity keeps a daily JSONL log of detections and renames.
package activity

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Action names recorded in the log.
const (
	ActionDetect = "detect"
	ActionRename = "rename"
	ActionUndo   = "undo"
	ActionSkip   = "skip"
)

// Method says how a timestamp was obtained.
type Method string

const (
	MethodBuiltin Method = "builtin"
	MethodCustom  Method = "custom"
	MethodCache   Method = "cache"
)

type Entry struct {
	Timestamp  time.Time `json:"ts"`
	Action     string    `json:"action"`
	Source     string    `json:"source"`
	Target     string    `json:"target,omitempty"`
	PlanID     string    `json:"plan_id,omitempty"`
	Method     Method    `json:"method,omitempty"`
	Detected   string    `json:"detected,omitempty"`
	Type       string    `json:"type,omitempty"`
	Convention string    `json:"convention,omitempty"`
	Confidence *float64  `json:"confidence,omitempty"`
	DryRun     bool      `json:"dry_run,omitempty"`
	Success    bool      `json:"success"`
	DurationMs int64     `json:"duration_ms,omitempty"`
	Error      string    `json:"error,omitempty"`
}

const (
	filePrefix = "activity-"
	fileSuffix = ".jsonl"
	dayLayout  = "2006-01-02"
)

type Logger struct {
	mu          sync.Mutex
	logDir      string
	currentFile *os.File
	currentDate string
	now         func() time.Time
}

// NewLogger writes into logDir, creating it if needed.
func NewLogger(logDir string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	return &Logger{
		logDir: logDir,
		now:    time.Now,
	}, nil
}

func (l *Logger) Log(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = now
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	today := now.Format(dayLayout)
	if l.currentDate != today || l.currentFile == nil {
		if err := l.rotateFile(today); err != nil {
			return err
		}
	}

	_, err = l.currentFile.Write(append(line, '\n'))
	return err
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentFile != nil {
		err := l.currentFile.Close()
		l.currentFile = nil
		return err
	}
	return nil
}

// PruneOld removes daily files older than retentionDays.
func (l *Logger) PruneOld(retentionDays int) (int, error) {
	cutoff := l.now().AddDate(0, 0, -retentionDays)

	files, err := l.logFiles()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range files {
		fileDate, err := time.Parse(dayLayout, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))
		if err != nil {
			continue
		}
		if fileDate.Before(cutoff) {
			if err := os.Remove(filepath.Join(l.logDir, name)); err == nil {
				removed++
			}
		}
	}

	return removed, nil
}

func (l *Logger) rotateFile(date string) error {
	if l.currentFile != nil {
		l.currentFile.Close()
		l.currentFile = nil
	}

	filePath := filepath.Join(l.logDir, filePrefix+date+fileSuffix)

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	l.currentFile = file
	l.currentDate = date

	return nil
}

func (l *Logger) GetLogDir() string {
	return l.logDir
}

// logFiles lists the daily files, oldest first.
func (l *Logger) logFiles() ([]string, error) {
	entries, err := os.ReadDir(l.logDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix) {
			files = append(files, name)
		}
	}
	sort.Strings(files)
	return files, nil
}

// GetRecentEntries returns the most recent activity entries, up to limit.
// Entries are returned in reverse chronological order (newest first).
func (l *Logger) GetRecentEntries(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	files, err := l.logFiles()
	if err != nil {
		return nil, err
	}

	var results []Entry
	for i := len(files) - 1; i >= 0; i-- {
		fileEntries, err := readEntriesFromFile(filepath.Join(l.logDir, files[i]))
		if err != nil {
			continue
		}

		for j := len(fileEntries) - 1; j >= 0; j-- {
			results = append(results, fileEntries[j])
			if len(results) >= limit {
				return results, nil
			}
		}
	}

	return results, nil
}

// readEntriesFromFile reads all entries from a JSONL file, skipping lines
// that do not parse.
func readEntriesFromFile(filePath string) ([]Entry, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []Entry
	scanner := NewJSONLScanner(file)
	for scanner.Scan() {
		var entry Entry
		if err := scanner.Entry(&entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, scanner.Err()
}

// JSONLScanner scans a JSONL file line by line
type JSONLScanner struct {
	scanner *bufio.Scanner
	entry   []byte
	err     error
}

// NewJSONLScanner creates a new JSONL scanner
func NewJSONLScanner(r io.Reader) *JSONLScanner {
	return &JSONLScanner{
		scanner: bufio.NewScanner(r),
	}
}

// Scan advances to the next non-blank line
func (s *JSONLScanner) Scan() bool {
	for s.scanner.Scan() {
		s.entry = s.scanner.Bytes()
		if len(strings.TrimSpace(string(s.entry))) > 0 {
			return true
		}
	}
	s.err = s.scanner.Err()
	return false
}

// Entry unmarshals the current entry into the provided value
func (s *JSONLScanner) Entry(v interface{}) error {
	return json.Unmarshal(s.entry, v)
}

// Err returns any error encountered during scanning
func (s *JSONLScanner) Err() error {
	return s.err
}
