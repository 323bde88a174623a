package plans

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/stampwatch/internal/paths"
	"github.com/Nomadcxx/stampwatch/internal/scanner"
	"github.com/Nomadcxx/stampwatch/internal/timestamp"
)

func fileResult(dir, name string, withAmbiguity bool) scanner.FileResult {
	f := scanner.FileResult{
		Path:      filepath.Join(dir, name),
		Name:      name,
		Timestamp: timestamp.Detect(name, timestamp.Options{}),
	}
	if withAmbiguity {
		f.Ambiguity = timestamp.DetectAmbiguity(name)
	}
	return f
}

func testReport() *scanner.Report {
	return &scanner.Report{
		ID:   "scan-1",
		Root: "/photos",
		Directories: []scanner.DirectoryReport{
			{
				Path: "/photos/a",
				Files: []scanner.FileResult{
					fileResult("/photos/a", "IMG_20240315_143022.jpg", false),
					fileResult("/photos/a", "IMG-20240315-143022.jpg", false),
					fileResult("/photos/a", "notes.txt", false),
					fileResult("/photos/a", "statement_2024-03.pdf", false),
				},
			},
			{
				Path:        "/photos/b",
				NeedsReview: true,
				Files: []scanner.FileResult{
					fileResult("/photos/b", "05-06-2024.jpg", true),
					fileResult("/photos/b", "15-06-2024.jpg", true),
				},
			},
			{
				Path: "/photos/c",
				Files: []scanner.FileResult{
					fileResult("/photos/c", "2024-03-15_143022_IMG.jpg", false),
				},
			},
		},
	}
}

func TestCreate(t *testing.T) {
	plan, err := Create(testReport(), "")
	require.NoError(t, err)

	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, "scan-1", plan.ScanID)
	assert.Equal(t, "/photos", plan.Root)
	assert.Equal(t, DefaultTemplate, plan.Template)
	assert.Equal(t, Summary{Total: 7, Renames: 2, Skipped: 5}, plan.Summary)

	byName := make(map[string]Operation)
	for _, op := range plan.Operations {
		byName[filepath.Base(op.Source)] = op
	}

	op := byName["IMG_20240315_143022.jpg"]
	assert.False(t, op.Skipped)
	assert.Equal(t, "/photos/a/2024-03-15_143022_IMG.jpg", op.Target)
	require.NotNil(t, op.Timestamp)

	op = byName["IMG-20240315-143022.jpg"]
	assert.True(t, op.Skipped)
	assert.Contains(t, op.Reason, ReasonCollision)

	assert.Equal(t, ReasonNoTimestamp, byName["notes.txt"].Reason)
	assert.Equal(t, ReasonNoFullDate, byName["statement_2024-03.pdf"].Reason)
	assert.Equal(t, ReasonAmbiguous, byName["05-06-2024.jpg"].Reason)
	assert.Equal(t, ReasonUnchanged, byName["2024-03-15_143022_IMG.jpg"].Reason)
	assert.Empty(t, byName["2024-03-15_143022_IMG.jpg"].Target)

	op = byName["15-06-2024.jpg"]
	assert.False(t, op.Skipped)
	assert.Equal(t, "/photos/b/2024-06-15.jpg", op.Target)

	assert.Len(t, plan.Renames(), 2)
}

func TestCreate_InvalidTemplate(t *testing.T) {
	_, err := Create(testReport(), "{name}/2006{ext}")
	assert.Error(t, err)
}

func TestSaveLoadDelete(t *testing.T) {
	t.Setenv(paths.HomeEnv, t.TempDir())

	_, err := Latest()
	assert.ErrorIs(t, err, ErrNoPlan)

	first, err := Create(testReport(), "")
	require.NoError(t, err)
	second, err := Create(testReport(), "2006-01-02 {name}{ext}")
	require.NoError(t, err)
	second.CreatedAt = first.CreatedAt.Add(time.Minute)

	require.NoError(t, Save(first))
	require.NoError(t, Save(second))

	dir, err := GetPlansDir()
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "rename-"+first.ID+".json"))

	loaded, err := Load(first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, loaded.ID)
	assert.Equal(t, first.Summary, loaded.Summary)
	assert.Equal(t, first.Operations, loaded.Operations)

	all, err := List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	latest, err := Latest()
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	require.NoError(t, Delete(second.ID))
	assert.ErrorIs(t, Delete(second.ID), ErrNoPlan)
	_, err = Load(second.ID)
	assert.ErrorIs(t, err, ErrNoPlan)

	_, err = Load("../escape")
	assert.Error(t, err)
}
