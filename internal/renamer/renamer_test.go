package renamer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/stampwatch/internal/activity"
	"github.com/Nomadcxx/stampwatch/internal/database"
	"github.com/Nomadcxx/stampwatch/internal/plans"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func testPlan(dir string) *plans.RenamePlan {
	return &plans.RenamePlan{
		ID:   "plan-1",
		Root: dir,
		Operations: []plans.Operation{
			{Source: filepath.Join(dir, "IMG_20240315_143022.jpg"), Target: filepath.Join(dir, "2024-03-15_143022_IMG.jpg")},
			{Source: filepath.Join(dir, "15-06-2024.jpg"), Target: filepath.Join(dir, "2024-06-15.jpg")},
			{Source: filepath.Join(dir, "scan 01-02-2024.pdf"), Target: filepath.Join(dir, "2024-02-01_scan.pdf")},
			{Source: filepath.Join(dir, "notes.txt"), Skipped: true, Reason: plans.ReasonNoTimestamp},
		},
	}
}

func setup(t *testing.T) (string, *database.Store) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "IMG_20240315_143022.jpg"), "a")
	writeFile(t, filepath.Join(dir, "15-06-2024.jpg"), "b")
	writeFile(t, filepath.Join(dir, "scan 01-02-2024.pdf"), "c")
	writeFile(t, filepath.Join(dir, "2024-02-01_scan.pdf"), "existing")
	writeFile(t, filepath.Join(dir, "notes.txt"), "d")

	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return dir, db
}

func TestApply(t *testing.T) {
	dir, db := setup(t)
	act, err := activity.NewLogger(filepath.Join(dir, ".activity"))
	require.NoError(t, err)
	defer act.Close()

	r := New(Options{Activity: act}, db)
	report, err := r.Apply(context.Background(), testPlan(dir), false)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Applied)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, report.Results, 3)
	assert.Contains(t, report.Results[2].Error, "target already exists")

	assert.FileExists(t, filepath.Join(dir, "2024-03-15_143022_IMG.jpg"))
	assert.NoFileExists(t, filepath.Join(dir, "IMG_20240315_143022.jpg"))
	assert.FileExists(t, filepath.Join(dir, "2024-06-15.jpg"))

	// The existing target is untouched.
	content, err := os.ReadFile(filepath.Join(dir, "2024-02-01_scan.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(content))
	assert.FileExists(t, filepath.Join(dir, "scan 01-02-2024.pdf"))

	ops, err := db.GetPlanOperations("plan-1")
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, database.OpRename, ops[0].OperationType)
	assert.Equal(t, database.ExecCLI, ops[0].ExecutedBy)

	skipped, err := db.GetSkippedItemsByReason(database.SkipReasonTargetExists)
	require.NoError(t, err)
	require.Len(t, skipped, 1)
	assert.Equal(t, filepath.Join(dir, "scan 01-02-2024.pdf"), skipped[0].Path)

	entries, err := act.GetRecentEntries(10)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestApply_DryRun(t *testing.T) {
	dir, db := setup(t)

	report, err := New(Options{}, db).Apply(context.Background(), testPlan(dir), true)
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 2, report.Applied)
	assert.Equal(t, 1, report.Skipped)
	for _, res := range report.Results {
		assert.False(t, res.Done)
	}
	assert.FileExists(t, filepath.Join(dir, "IMG_20240315_143022.jpg"))
	assert.NoFileExists(t, filepath.Join(dir, "2024-06-15.jpg"))

	ops, err := db.GetPlanOperations("plan-1")
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestApply_MissingSourceAndCancel(t *testing.T) {
	dir := t.TempDir()
	plan := &plans.RenamePlan{ID: "p", Operations: []plans.Operation{
		{Source: filepath.Join(dir, "gone.jpg"), Target: filepath.Join(dir, "2024-01-01.jpg")},
	}}

	report, err := New(Options{}, nil).Apply(context.Background(), plan, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Results[0].Error, "source file missing")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(Options{}, nil).Apply(ctx, plan, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUndo(t *testing.T) {
	dir, db := setup(t)
	r := New(Options{ExecutedBy: database.ExecAPI}, db)

	_, err := r.Apply(context.Background(), testPlan(dir), false)
	require.NoError(t, err)

	report, err := r.Undo(context.Background(), "plan-1")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Applied)
	assert.FileExists(t, filepath.Join(dir, "IMG_20240315_143022.jpg"))
	assert.FileExists(t, filepath.Join(dir, "15-06-2024.jpg"))
	assert.NoFileExists(t, filepath.Join(dir, "2024-06-15.jpg"))

	// A second undo has nothing left to do.
	_, err = r.Undo(context.Background(), "plan-1")
	assert.ErrorIs(t, err, ErrNothingToUndo)

	_, err = New(Options{}, nil).Undo(context.Background(), "plan-1")
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestKeepOriginal(t *testing.T) {
	dir, db := setup(t)
	r := New(Options{KeepOriginal: true}, db)

	report, err := r.Apply(context.Background(), testPlan(dir), false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Applied)

	src := filepath.Join(dir, "15-06-2024.jpg")
	dst := filepath.Join(dir, "2024-06-15.jpg")
	assert.FileExists(t, src)
	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "b", string(content))

	_, err = r.Undo(context.Background(), "plan-1")
	require.NoError(t, err)
	assert.FileExists(t, src)
	assert.NoFileExists(t, dst)
}

func TestApply_ReadOnlyDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir, db := setup(t)
	require.NoError(t, os.Chmod(dir, 0555))
	t.Cleanup(func() { os.Chmod(dir, 0755) })

	report, err := New(Options{}, db).Apply(context.Background(), testPlan(dir), true)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Applied)
	assert.Equal(t, 3, report.Failed)
	assert.ErrorContains(t, ErrNotPermitted, "not writable")
	assert.Contains(t, report.Results[0].Error, ErrNotPermitted.Error())
}
