package timestamp

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeBatchFormat(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		wantRec  Convention
		minConf  float64
		maxConf  float64
		evidence string
	}{
		{
			name:    "day above twelve",
			files:   []string{"photo_15-03-2024.jpg", "video_20-06-2024.mp4", "doc_25-12-2024.pdf"},
			wantRec: DMY,
			minConf: 0.80,
			maxConf: 1,
		},
		{
			name:    "month first proofs",
			files:   []string{"a_03-15-2024.jpg", "b_04-20-2024.jpg", "c_12-25-2024.jpg"},
			wantRec: MDY,
			minConf: 0.80,
			maxConf: 1,
		},
		{
			name:    "all ambiguous",
			files:   []string{"file_01-02-2024.txt", "file_03-04-2024.txt", "file_05-06-2024.txt"},
			wantRec: DMY,
			minConf: 0.50,
			maxConf: 0.60,
		},
		{
			name:     "mixed",
			files:    []string{"a_15-03-2024.jpg", "b_20-06-2024.jpg", "c_03-15-2024.jpg"},
			wantRec:  DMY,
			minConf:  0.80,
			maxConf:  0.80,
			evidence: "mixed formats: 1 files only read month-first",
		},
		{
			name:    "tie",
			files:   []string{"a_15-03-2024.jpg", "c_03-15-2024.jpg"},
			wantRec: "",
			minConf: 0,
			maxConf: 0,
		},
		{
			name:    "nothing",
			files:   []string{"notes.txt", "IMG_20240315.jpg"},
			wantRec: "",
			minConf: 0,
			maxConf: 0,
		},
		{
			name:    "empty",
			files:   nil,
			wantRec: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AnalyzeBatchFormat(tt.files, BatchOptions{})
			assert.Equal(t, tt.wantRec, a.Recommendation)
			assert.GreaterOrEqual(t, a.Confidence, tt.minConf)
			assert.LessOrEqual(t, a.Confidence, tt.maxConf)
			assert.Equal(t, len(tt.files), a.Stats.Total)
			if tt.evidence != "" {
				assert.Contains(t, a.Evidence, tt.evidence)
			}
		})
	}
}

func TestAnalyzeBatchFormat_ExactScores(t *testing.T) {
	a := AnalyzeBatchFormat([]string{"photo_15-03-2024.jpg", "video_20-06-2024.mp4", "doc_25-12-2024.pdf"}, BatchOptions{})
	assert.InDelta(t, 0.95, a.Confidence, 1e-9)
	assert.Equal(t, BatchStats{Total: 3, DMYProof: 3, YearProof: 3}, a.Stats)

	// Two-digit triples read as times before dates.
	a = AnalyzeBatchFormat([]string{"15-03-24.jpg", "20-06-24.mp4"}, BatchOptions{})
	assert.Equal(t, Convention(""), a.Recommendation)

	a = AnalyzeBatchFormat([]string{"file_01-02-2024.txt"}, BatchOptions{})
	assert.InDelta(t, 0.60, a.Confidence, 1e-9)
}

func TestAnalyzeBatchFormat_ConfidenceMonotonic(t *testing.T) {
	files := []string{"a_13-01-2024.jpg"}
	prev := 0.0
	for day := 14; day <= 28; day++ {
		files = append(files, "x_"+itoa2(day)+"-01-2024.jpg")
		a := AnalyzeBatchFormat(files, BatchOptions{})
		require.Equal(t, DMY, a.Recommendation)
		assert.GreaterOrEqual(t, a.Confidence, prev)
		assert.LessOrEqual(t, a.Confidence, 1.0)
		prev = a.Confidence
	}
	assert.InDelta(t, 1.0, prev, 1e-9)
}

func itoa2(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

func TestAnalyzeBatchFormat_DirectoryScope(t *testing.T) {
	files := []string{
		"/photos/a/15-03-2024.jpg",
		"/photos/a/20-04-2024.jpg",
		"/photos/b/03-15-2024.jpg",
		"/photos/b/04-20-2024.jpg",
		"/photos/b/12-25-2024.jpg",
	}

	global := AnalyzeBatchFormat(files, BatchOptions{})
	assert.Equal(t, MDY, global.Recommendation)
	assert.Equal(t, 5, global.Stats.Total)

	scoped := AnalyzeBatchFormat(files, BatchOptions{CurrentDirectory: "/photos/a/"})
	assert.Equal(t, DMY, scoped.Recommendation)
	assert.Equal(t, 2, scoped.Stats.Total)
	assert.Equal(t, 2, scoped.Stats.SameDirectoryFiles)
	assert.InDelta(t, 0.80, scoped.Confidence, 1e-9)

	// A single local file is not enough to scope.
	single := AnalyzeBatchFormat(files[:3], BatchOptions{CurrentDirectory: "/photos/b"})
	assert.Equal(t, 3, single.Stats.Total)
	assert.Equal(t, 1, single.Stats.SameDirectoryFiles)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	files := []string{
		"a_15-03-2024.jpg", "b_20-06-2024.jpg", "c_03-15-2024.jpg",
		"d_01-02-2024.jpg", "notes.txt", "IMG_20240101.jpg",
	}
	evidence := make([]FileEvidence, len(files))
	for i, f := range files {
		evidence[i] = CollectEvidence(f)
	}
	want := Aggregate(evidence, BatchOptions{})

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append([]FileEvidence(nil), evidence...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Aggregate(shuffled, BatchOptions{}))
	}
}

func TestCollectEvidence(t *testing.T) {
	tests := []struct {
		file string
		want FileEvidence
	}{
		{"dir/photo_15-03-2024.jpg", FileEvidence{Filename: "dir/photo_15-03-2024.jpg", Directory: "dir", DMYProof: true, YearProof: true}},
		{"03-15-2024.jpg", FileEvidence{Filename: "03-15-2024.jpg", Directory: ".", MDYProof: true, YearProof: true}},
		{"05-06-2024.jpg", FileEvidence{Filename: "05-06-2024.jpg", Directory: ".", Ambiguous: true, YearProof: true}},
		{"05-05-2024.jpg", FileEvidence{Filename: "05-05-2024.jpg", Directory: ".", Ambiguous: true, YearProof: true}},
		{"scan_25122024.pdf", FileEvidence{Filename: "scan_25122024.pdf", Directory: ".", DMYProof: true, YearProof: true}},
		{"IMG_20240315.jpg", FileEvidence{Filename: "IMG_20240315.jpg", Directory: ".", YearProof: true}},
		{"notes.txt", FileEvidence{Filename: "notes.txt", Directory: "."}},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.want, CollectEvidence(tt.file))
		})
	}
}

func TestDecide(t *testing.T) {
	high := ContextAnalysis{Recommendation: DMY, Confidence: 0.85}
	low := ContextAnalysis{Recommendation: DMY, Confidence: 0.6}
	none := ContextAnalysis{}

	assert.Equal(t, AutoResolve, high.Decide(0))
	assert.Equal(t, PromptUser, low.Decide(0))
	assert.Equal(t, AutoResolve, low.Decide(0.5))
	assert.Equal(t, PromptUser, none.Decide(0.1))
	assert.Equal(t, AutoResolve, ContextAnalysis{Recommendation: MDY, Confidence: DefaultAutoResolveThreshold}.Decide(0))
}

func TestDetectOptions_FeedsDetect(t *testing.T) {
	a := AnalyzeBatchFormat([]string{"a_03-15-2024.jpg", "b_04-20-2024.jpg", "c_12-25-2024.jpg"}, BatchOptions{})
	opts := a.DetectOptions()
	assert.Equal(t, MDY, opts.DateFormat)

	got := Detect("d_05-06-2024.jpg", opts)
	require.NotNil(t, got)
	assert.Equal(t, 5, got.Month)
	assert.Equal(t, 6, got.Day)
}
