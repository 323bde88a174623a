package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/stampwatch/internal/paths"
	"github.com/Nomadcxx/stampwatch/internal/patterns"
	"github.com/Nomadcxx/stampwatch/internal/plans"
	"github.com/Nomadcxx/stampwatch/internal/timestamp"
)

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(paths.HomeEnv, home)
	return home
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
}

func TestDetectCmd(t *testing.T) {
	setupHome(t)

	out, err := runCmd(t, "--json", "detect", "IMG_20240315_143022.jpg", "notes.txt")
	require.NoError(t, err)

	var results []detectResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	require.NotNil(t, results[0].Timestamp)
	assert.Equal(t, "2024-03-15 14:30:22", results[0].Timestamp.String())
	assert.Nil(t, results[1].Timestamp)

	out, err = runCmd(t, "--json", "detect", "--date-format", "mdy", "05-06-2024.jpg")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.NotNil(t, results[0].Timestamp)
	assert.Equal(t, 6, results[0].Timestamp.Day)

	_, err = runCmd(t, "detect", "--date-format", "ymd", "05-06-2024.jpg")
	assert.Error(t, err)
}

func TestDetectCmd_Table(t *testing.T) {
	setupHome(t)

	out, err := runCmd(t, "--no-color", "detect", "IMG_20240315_143022.jpg")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-15 14:30:22")
	assert.Contains(t, out, "IMG_20240315_143022.jpg")
}

func TestAnalyzeCmd(t *testing.T) {
	setupHome(t)
	dir := t.TempDir()
	touch(t, dir, "15-03-2024.jpg", "20-04-2024.jpg", "05-06-2024.jpg")

	out, err := runCmd(t, "--json", "analyze", dir)
	require.NoError(t, err)

	var result analyzeResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, timestamp.AutoResolve, result.Decision)
	assert.Equal(t, timestamp.DMY, result.Convention)
	assert.Equal(t, 3, result.Analysis.Stats.Total)

	_, err = runCmd(t, "analyze", "--threshold", "2", dir)
	assert.Error(t, err)
}

func TestPlanLifecycle(t *testing.T) {
	setupHome(t)
	dir := t.TempDir()
	touch(t, dir, "IMG_20240315_143022.jpg", "notes.txt")

	out, err := runCmd(t, "--json", "plan", "create", dir)
	require.NoError(t, err)
	var plan plans.RenamePlan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, plans.Summary{Total: 2, Renames: 1, Skipped: 1}, plan.Summary)

	out, err = runCmd(t, "plan", "list")
	require.NoError(t, err)
	assert.Contains(t, out, plan.ID)

	target := filepath.Join(dir, "2024-03-15_143022_IMG.jpg")

	_, err = runCmd(t, "plan", "apply", "--dry-run")
	require.NoError(t, err)
	assert.NoFileExists(t, target)

	_, err = runCmd(t, "plan", "apply", "--yes", plan.ID)
	require.NoError(t, err)
	assert.FileExists(t, target)
	// keep_original defaults to true.
	assert.FileExists(t, filepath.Join(dir, "IMG_20240315_143022.jpg"))

	out, err = runCmd(t, "--json", "history")
	require.NoError(t, err)
	assert.Contains(t, out, target)

	_, err = runCmd(t, "plan", "undo", plan.ID)
	require.NoError(t, err)
	assert.NoFileExists(t, target)

	_, err = runCmd(t, "plan", "delete", plan.ID)
	require.NoError(t, err)
	_, err = runCmd(t, "plan", "show", plan.ID)
	assert.ErrorIs(t, err, plans.ErrNoPlan)
}

func TestPatternsCmd(t *testing.T) {
	setupHome(t)
	expr := `(?P<year>\d{4})(?P<month>\d{2})(?P<day>\d{2})-(?P<hour>\d{2})(?P<minute>\d{2})`

	_, err := runCmd(t, "patterns", "add", "--priority", "5", "dashcam", expr)
	require.NoError(t, err)
	_, err = runCmd(t, "patterns", "add", "broken", "(")
	assert.Error(t, err)

	out, err := runCmd(t, "--json", "patterns", "list")
	require.NoError(t, err)
	var list []patterns.Pattern
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].Priority)

	out, err = runCmd(t, "patterns", "test", "cam_20240315-1422.mp4")
	require.NoError(t, err)
	assert.Contains(t, out, "custom:dashcam")

	exported := filepath.Join(t.TempDir(), "patterns.yaml")
	_, err = runCmd(t, "patterns", "export", exported)
	require.NoError(t, err)

	_, err = runCmd(t, "patterns", "clear", "--yes")
	require.NoError(t, err)
	out, err = runCmd(t, "--json", "patterns", "list")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)

	_, err = runCmd(t, "patterns", "import", exported)
	require.NoError(t, err)
	out, err = runCmd(t, "patterns", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "dashcam")
}

func TestConfigCmd(t *testing.T) {
	setupHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	_, err := runCmd(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = runCmd(t, "--config", path, "config", "init")
	assert.Error(t, err)

	out, err := runCmd(t, "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	token, err := runCmd(t, "--config", path, "config", "token")
	require.NoError(t, err)
	require.Len(t, token, 65)

	out, err = runCmd(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "API token:        "+maskToken(token[:64]))
}

func TestBatchInput(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.jpg", "a.jpg", ".hidden.jpg")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	names, got, err := batchInput([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, dir, got)
	assert.Equal(t, []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.jpg")}, names)

	names, got, err = batchInput([]string{"x.jpg", "y.jpg"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, []string{"x.jpg", "y.jpg"}, names)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "(not set)", maskToken(""))
	assert.Equal(t, "****", maskToken("short"))
	assert.Equal(t, "abcd****wxyz", maskToken("abcdefghijklmnopqrstuvwxyz"))
}

func TestHistoryPrune(t *testing.T) {
	setupHome(t)

	out, err := runCmd(t, "history", "prune", "--days", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 0 activity files")

	_, err = runCmd(t, "history", "prune", "--days", "0")
	assert.ErrorContains(t, err, "--days")
}
