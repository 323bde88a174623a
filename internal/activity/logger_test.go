package activity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "activity")

	logger, err := NewLogger(dir)
	require.NoError(t, err)
	defer logger.Close()

	assert.Equal(t, dir, logger.GetLogDir())
	assert.DirExists(t, dir)
}

func TestLogEntry(t *testing.T) {
	logger, err := NewLogger(t.TempDir())
	require.NoError(t, err)
	defer logger.Close()

	confidence := 0.8
	entry := Entry{
		Action:     ActionDetect,
		Source:     "/photos/IMG_20240315_143022.jpg",
		Method:     MethodBuiltin,
		Detected:   "2024-03-15 14:30:22",
		Type:       "compact-date",
		Convention: "dmy",
		Confidence: &confidence,
		Success:    true,
	}
	require.NoError(t, logger.Log(entry))

	files, err := logger.logFiles()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, strings.HasPrefix(files[0], "activity-"+time.Now().Format("2006-01-02")))

	content, err := os.ReadFile(filepath.Join(logger.GetLogDir(), files[0]))
	require.NoError(t, err)

	var logged Entry
	require.NoError(t, json.Unmarshal(content, &logged))
	assert.Equal(t, ActionDetect, logged.Action)
	assert.False(t, logged.Timestamp.IsZero())
	require.NotNil(t, logged.Confidence)
	assert.Equal(t, confidence, *logged.Confidence)
}

func TestRotatesDaily(t *testing.T) {
	logger, err := NewLogger(t.TempDir())
	require.NoError(t, err)
	defer logger.Close()

	day := time.Date(2024, 3, 15, 23, 59, 0, 0, time.Local)
	logger.now = func() time.Time { return day }
	require.NoError(t, logger.Log(Entry{Action: ActionRename, Source: "a"}))

	day = day.Add(2 * time.Minute)
	require.NoError(t, logger.Log(Entry{Action: ActionRename, Source: "b"}))

	files, err := logger.logFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"activity-2024-03-15.jsonl", "activity-2024-03-16.jsonl"}, files)
}

func TestGetRecentEntries(t *testing.T) {
	logger, err := NewLogger(t.TempDir())
	require.NoError(t, err)
	defer logger.Close()

	day := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)
	logger.now = func() time.Time { return day }
	for _, src := range []string{"a", "b"} {
		require.NoError(t, logger.Log(Entry{Action: ActionDetect, Source: src}))
	}
	day = day.AddDate(0, 0, 1)
	require.NoError(t, logger.Log(Entry{Action: ActionDetect, Source: "c"}))

	// A corrupt line is skipped.
	f, err := os.OpenFile(filepath.Join(logger.GetLogDir(), "activity-2024-03-15.jsonl"), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	entries, err := logger.GetRecentEntries(10)
	require.NoError(t, err)
	var sources []string
	for _, e := range entries {
		sources = append(sources, e.Source)
	}
	assert.Equal(t, []string{"c", "b", "a"}, sources)

	entries, err = logger.GetRecentEntries(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPruneOld(t *testing.T) {
	logger, err := NewLogger(t.TempDir())
	require.NoError(t, err)
	defer logger.Close()

	oldFile := filepath.Join(logger.GetLogDir(), "activity-"+time.Now().AddDate(0, 0, -10).Format("2006-01-02")+".jsonl")
	recentFile := filepath.Join(logger.GetLogDir(), "activity-"+time.Now().Format("2006-01-02")+".jsonl")
	other := filepath.Join(logger.GetLogDir(), "notes.txt")
	for _, path := range []string{oldFile, recentFile, other} {
		require.NoError(t, os.WriteFile(path, []byte("test"), 0644))
	}

	removed, err := logger.PruneOld(7)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.NoFileExists(t, oldFile)
	assert.FileExists(t, recentFile)
	assert.FileExists(t, other)
}
