package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// rotatingFile is a zapcore.WriteSyncer that rolls the file over to
// numbered backups (name.1.log, name.2.log, ...) once it reaches maxSize.
type rotatingFile struct {
	mu         sync.Mutex
	path       string
	file       *os.File
	size       int64
	maxSize    int64
	maxBackups int
}

func openRotatingFile(path string, maxSizeMB, maxBackups int) (*rotatingFile, error) {
	rf := &rotatingFile{
		path:       path,
		maxSize:    int64(maxSizeMB) * 1024 * 1024,
		maxBackups: maxBackups,
	}
	if rf.maxSize <= 0 {
		rf.maxSize = 10 * 1024 * 1024
	}
	if rf.maxBackups <= 0 {
		rf.maxBackups = 5
	}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *rotatingFile) open() error {
	f, err := os.OpenFile(rf.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("unable to stat log file: %w", err)
	}
	rf.file = f
	rf.size = info.Size()
	return nil
}

func (rf *rotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.file == nil {
		return 0, os.ErrClosed
	}
	if rf.size > 0 && rf.size+int64(len(p)) > rf.maxSize {
		if err := rf.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "log rotation error: %v\n", err)
		}
	}
	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

func (rf *rotatingFile) Sync() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.file == nil {
		return nil
	}
	return rf.file.Sync()
}

func (rf *rotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.file == nil {
		return nil
	}
	err := rf.file.Close()
	rf.file = nil
	return err
}

func (rf *rotatingFile) rotate() error {
	rf.file.Close()
	if err := rotateFiles(rf.path, rf.maxBackups); err != nil {
		// Keep writing to the current file rather than losing entries.
		if openErr := rf.open(); openErr != nil {
			return openErr
		}
		return err
	}
	return rf.open()
}

// rotateFiles shifts name.N.ext to name.N+1.ext, drops backups beyond
// maxBackups and moves the live file to name.1.ext.
func rotateFiles(basePath string, maxBackups int) error {
	dir := filepath.Dir(basePath)
	base := filepath.Base(basePath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	backups, err := findBackups(dir, name, ext)
	if err != nil {
		return err
	}

	sort.Sort(sort.Reverse(sort.IntSlice(backups)))

	backupPath := func(n int) string {
		return filepath.Join(dir, fmt.Sprintf("%s.%d%s", name, n, ext))
	}
	for _, num := range backups {
		if num >= maxBackups {
			os.Remove(backupPath(num))
			continue
		}
		if err := os.Rename(backupPath(num), backupPath(num+1)); err != nil {
			return fmt.Errorf("failed to rotate %s: %w", backupPath(num), err)
		}
	}

	if _, err := os.Stat(basePath); err == nil {
		if err := os.Rename(basePath, backupPath(1)); err != nil {
			return fmt.Errorf("failed to rotate current log: %w", err)
		}
	}

	return nil
}

func findBackups(dir, name, ext string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var backups []int
	prefix := name + "."
	for _, entry := range entries {
		fname := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(fname, prefix) || !strings.HasSuffix(fname, ext) {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(fname, prefix), ext))
		if err != nil {
			continue
		}
		backups = append(backups, num)
	}

	return backups, nil
}
