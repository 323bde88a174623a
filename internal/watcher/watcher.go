// Package watcher turns fsnotify events into file events for a Handler.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/Nomadcxx/stampwatch/internal/logging"
)

type EventType string

const (
	EventCreate EventType = "create"
	EventWrite  EventType = "write"
	EventMove   EventType = "move"
	EventDelete EventType = "delete"
)

type FileEvent struct {
	Type EventType
	Path string
}

type Handler interface {
	HandleFileEvent(event FileEvent) error
	// Wants reports whether events for path should be delivered.
	Wants(path string) bool
}

type Watcher struct {
	fsWatcher *fsnotify.Watcher
	handler   Handler
	recursive bool
	logger    *logging.Logger

	mu      sync.Mutex
	watched map[string]bool
}

type Option func(*Watcher)

func WithRecursive(recursive bool) Option {
	return func(w *Watcher) {
		w.recursive = recursive
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func NewWatcher(handler Handler, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		handler:   handler,
		recursive: true,
		logger:    logging.Nop(),
		watched:   make(map[string]bool),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		if w.recursive {
			if err := w.addRecursive(path); err != nil {
				return err
			}
		} else if err := w.add(path); err != nil {
			return err
		}
	}
	return nil
}

// Watched returns the directories currently watched, sorted.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.watched))
	for dir := range w.watched {
		out = append(out, dir)
	}
	sort.Strings(out)
	return out
}

func (w *Watcher) add(path string) error {
	if err := w.fsWatcher.Add(path); err != nil {
		return fmt.Errorf("unable to watch %s: %w", path, err)
	}
	w.mu.Lock()
	w.watched[path] = true
	w.mu.Unlock()
	w.logger.Debug("watcher", "Watching", logging.F("path", path))
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("unable to watch %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(path) {
			return filepath.SkipDir
		}
		return w.add(path)
	})
}

// Start delivers events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("watcher", "Watcher started", logging.F("directories", len(w.Watched())))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if w.recursive && !isHidden(event.Name) {
						if err := w.addRecursive(event.Name); err != nil {
							w.logger.Warn("watcher", "Unable to watch new directory",
								logging.F("path", event.Name), logging.F("error", err.Error()))
						} else {
							w.logger.Info("watcher", "Now watching new directory", logging.F("path", event.Name))
						}
					}
					continue
				}
			}

			if err := w.handleEvent(event); err != nil {
				w.logger.Error("watcher", "Error handling event", err, logging.F("path", event.Name))
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher", "Watcher error", logging.F("error", err.Error()))
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) error {
	if event.Op == fsnotify.Chmod || isHidden(event.Name) {
		return nil
	}

	eventType := eventTypeOf(event.Op)
	if eventType == EventDelete || eventType == EventMove {
		w.mu.Lock()
		delete(w.watched, event.Name)
		w.mu.Unlock()
	}

	if !w.handler.Wants(event.Name) {
		return nil
	}

	w.logger.Debug("watcher", "Event", logging.F("type", string(eventType)), logging.F("file", filepath.Base(event.Name)))

	return w.handler.HandleFileEvent(FileEvent{Type: eventType, Path: event.Name})
}

func eventTypeOf(op fsnotify.Op) EventType {
	switch {
	case op&fsnotify.Write == fsnotify.Write:
		return EventWrite
	case op&fsnotify.Rename == fsnotify.Rename:
		return EventMove
	case op&fsnotify.Remove == fsnotify.Remove:
		return EventDelete
	default:
		return EventCreate
	}
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
