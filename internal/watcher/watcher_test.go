package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []FileEvent
}

func (h *recordingHandler) HandleFileEvent(event FileEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHandler) Wants(path string) bool {
	return !strings.HasSuffix(path, ".tmp")
}

func (h *recordingHandler) sawCreate(path string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.events {
		if e.Path == path && e.Type == EventCreate {
			return true
		}
	}
	return false
}

func (h *recordingHandler) saw(path string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.events {
		if e.Path == path {
			return true
		}
	}
	return false
}

func TestEventTypeOf(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want EventType
	}{
		{fsnotify.Create, EventCreate},
		{fsnotify.Write, EventWrite},
		{fsnotify.Create | fsnotify.Write, EventWrite},
		{fsnotify.Rename, EventMove},
		{fsnotify.Remove, EventDelete},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, eventTypeOf(tt.op))
		})
	}
}

func TestWatch_RecursiveSkipsHidden(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".cache", "x"), 0755))

	w, err := NewWatcher(&recordingHandler{})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch([]string{root}))
	assert.Equal(t, []string{root, filepath.Join(root, "a"), filepath.Join(root, "a", "b")}, w.Watched())

	assert.Error(t, w.Watch([]string{filepath.Join(root, "missing")}))
}

func TestWatch_NonRecursive(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0755))

	w, err := NewWatcher(&recordingHandler{}, WithRecursive(false))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch([]string{root}))
	assert.Equal(t, []string{root}, w.Watched())
}

func TestStart_DeliversEvents(t *testing.T) {
	root := t.TempDir()
	h := &recordingHandler{}
	w, err := NewWatcher(h)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch([]string{root}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	photo := filepath.Join(root, "IMG_20240315_143022.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "partial.tmp"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden.jpg"), []byte("x"), 0644))

	assert.Eventually(t, func() bool { return h.sawCreate(photo) }, 2*time.Second, 10*time.Millisecond)

	// New subdirectories are picked up.
	sub := filepath.Join(root, "2024")
	require.NoError(t, os.Mkdir(sub, 0755))
	require.Eventually(t, func() bool {
		for _, dir := range w.Watched() {
			if dir == sub {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	nested := filepath.Join(sub, "15-03-2024.jpg")
	require.NoError(t, os.WriteFile(nested, []byte("x"), 0644))
	assert.Eventually(t, func() bool { return h.saw(nested) }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}

	assert.False(t, h.saw(filepath.Join(root, "partial.tmp")))
	assert.False(t, h.saw(filepath.Join(root, ".hidden.jpg")))
}
