package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestLogger_WritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "stampwatch.log")

	l, err := newLogger(Config{Level: "info", File: path}, &console)
	require.NoError(t, err)

	l.Debug("scanner", "hidden")
	l.Info("scanner", "scan complete", F("files", 12))
	l.Error("renamer", "rename failed", errors.New("boom"), F("source", "a.jpg"))
	require.NoError(t, l.Close())

	out := console.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[INFO] [scanner] scan complete")
	assert.Contains(t, out, `"files": 12`)
	assert.Contains(t, out, "[ERROR] [renamer] rename failed")
	assert.Contains(t, out, "boom")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scan complete")
	assert.Equal(t, path, l.FilePath())
}

func TestLogger_SetLevel(t *testing.T) {
	var console bytes.Buffer
	l, err := newLogger(Config{Level: "error"}, &console)
	require.NoError(t, err)
	assert.Equal(t, LevelError, l.GetLevel())

	l.Info("test", "first")
	l.SetLevel(LevelDebug)
	l.Debug("test", "second")

	assert.NotContains(t, console.String(), "first")
	assert.Contains(t, console.String(), "second")
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("test", "nothing")
	l.Error("test", "nothing", errors.New("x"))
	assert.NoError(t, l.Close())
	assert.NotNil(t, l.Zap())
}

func TestRotatingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	rf, err := openRotatingFile(path, 1, 2)
	require.NoError(t, err)
	rf.maxSize = 64

	line := []byte(strings.Repeat("x", 40) + "\n")
	for i := 0; i < 5; i++ {
		_, err := rf.Write(line)
		require.NoError(t, err)
	}
	require.NoError(t, rf.Close())

	assert.FileExists(t, path)
	assert.FileExists(t, filepath.Join(dir, "app.1.log"))
	assert.FileExists(t, filepath.Join(dir, "app.2.log"))
	assert.NoFileExists(t, filepath.Join(dir, "app.3.log"))

	_, err = rf.Write(line)
	assert.ErrorIs(t, err, os.ErrClosed)
}
