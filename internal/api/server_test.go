package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/stampwatch/internal/activity"
	"github.com/Nomadcxx/stampwatch/internal/config"
	"github.com/Nomadcxx/stampwatch/internal/database"
	"github.com/Nomadcxx/stampwatch/internal/patterns"
	"github.com/Nomadcxx/stampwatch/internal/timestamp"
)

func newTestServer(t *testing.T, opts Options) http.Handler {
	t.Helper()
	if opts.Registry == nil {
		db, err := database.OpenInMemory()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		opts.Registry, err = patterns.NewRegistry(db)
		require.NoError(t, err)
	}
	return NewServer(opts).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	h := newTestServer(t, Options{
		Version: "test",
		Stats:   func() any { return map[string]int{"detected": 3} },
	})

	w := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, 0, resp.Patterns)
	assert.Nil(t, resp.Scanner)
	assert.Equal(t, map[string]any{"detected": float64(3)}, resp.Stats)
}

func TestDetect(t *testing.T) {
	h := newTestServer(t, Options{})

	tests := []struct {
		name     string
		body     any
		wantCode int
		wantDay  int
		wantNull bool
	}{
		{"compact date time", DetectRequest{Filename: "IMG_20240315_143022.jpg"}, http.StatusOK, 15, false},
		{"default day first", DetectRequest{Filename: "05-06-2024.jpg"}, http.StatusOK, 5, false},
		{"month first", DetectRequest{Filename: "05-06-2024.jpg", DateFormat: "mdy"}, http.StatusOK, 6, false},
		{"nothing found", DetectRequest{Filename: "notes.txt"}, http.StatusOK, 0, true},
		{"missing filename", DetectRequest{}, http.StatusBadRequest, 0, false},
		{"bad date format", DetectRequest{Filename: "a.jpg", DateFormat: "ymd"}, http.StatusBadRequest, 0, false},
		{"unknown field", `{"file": "a.jpg"}`, http.StatusBadRequest, 0, false},
		{"malformed", `{`, http.StatusBadRequest, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/detect", tt.body)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			if tt.wantCode != http.StatusOK {
				assert.NotEmpty(t, decode[map[string]string](t, w)["error"])
				return
			}
			if tt.wantNull {
				assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))
				return
			}
			ts := decode[timestamp.Timestamp](t, w)
			assert.Equal(t, 2024, ts.Year)
			assert.Equal(t, tt.wantDay, ts.Day)
		})
	}
}

func TestCandidatesAndAmbiguity(t *testing.T) {
	h := newTestServer(t, Options{})

	w := do(t, h, http.MethodPost, "/api/v1/candidates", FilenameRequest{Filename: "05-06-2024.jpg"})
	require.Equal(t, http.StatusOK, w.Code)
	var ambiguous *CandidateView
	for _, c := range decode[[]CandidateView](t, w) {
		if c.Ambiguous {
			ambiguous = &c
			break
		}
	}
	require.NotNil(t, ambiguous)
	require.Len(t, ambiguous.Alternatives, 2)
	assert.Equal(t, 5, ambiguous.Alternatives[0].Day)
	assert.Equal(t, 6, ambiguous.Alternatives[1].Day)

	w = do(t, h, http.MethodPost, "/api/v1/candidates", FilenameRequest{Filename: "notes.txt"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]CandidateView](t, w))

	w = do(t, h, http.MethodPost, "/api/v1/ambiguity", FilenameRequest{Filename: "05-06-2024.jpg"})
	require.Equal(t, http.StatusOK, w.Code)
	rec := decode[timestamp.AmbiguityRecord](t, w)
	assert.Equal(t, timestamp.DayMonthOrder, rec.Kind)

	w = do(t, h, http.MethodPost, "/api/v1/ambiguity", FilenameRequest{Filename: "15-06-2024.jpg"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))

	w = do(t, h, http.MethodPost, "/api/v1/candidates", FilenameRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyze(t *testing.T) {
	h := newTestServer(t, Options{})

	w := do(t, h, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{
		Filenames: []string{"15-03-2024.jpg", "20-04-2024.jpg", "05-06-2024.jpg"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[AnalyzeResponse](t, w)
	assert.Equal(t, timestamp.DMY, resp.Analysis.Recommendation)
	assert.Equal(t, timestamp.AutoResolve, resp.Decision)

	// A stricter threshold defers to the user.
	w = do(t, h, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{
		Filenames: []string{"15-03-2024.jpg", "20-04-2024.jpg", "05-06-2024.jpg"},
		Threshold: 0.95,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, timestamp.PromptUser, decode[AnalyzeResponse](t, w).Decision)

	w = do(t, h, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{Threshold: 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatterns(t *testing.T) {
	h := newTestServer(t, Options{})

	dashcam := patterns.Pattern{
		Name: "dashcam",
		Expr: `cam_(?P<year>\d{4})(?P<month>\d{2})(?P<day>\d{2})-(?P<hour>\d{2})(?P<minute>\d{2})`,
	}
	w := do(t, h, http.MethodPost, "/api/v1/patterns", dashcam)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, dashcam, decode[patterns.Pattern](t, w))

	w = do(t, h, http.MethodGet, "/api/v1/patterns", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []patterns.Pattern{dashcam}, decode[[]patterns.Pattern](t, w))

	w = do(t, h, http.MethodPost, "/api/v1/detect", DetectRequest{Filename: "cam_20240315-1422.mp4"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "custom:dashcam", decode[timestamp.Timestamp](t, w).Type)

	w = do(t, h, http.MethodPost, "/api/v1/patterns", patterns.Pattern{Name: "bad", Expr: `(?P<day>\d{2})`})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodDelete, "/api/v1/patterns/dashcam", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodDelete, "/api/v1/patterns/dashcam", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, decode[map[string]string](t, w)["error"])
}

func TestAuth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.APIToken = "secret-token"
	h := newTestServer(t, Options{Config: cfg})

	tests := []struct {
		name   string
		path   string
		header []string
		want   int
	}{
		{"health is public", "/health", nil, http.StatusOK},
		{"no token", "/api/v1/formats", nil, http.StatusUnauthorized},
		{"wrong token", "/api/v1/formats", []string{"Authorization", "Bearer nope"}, http.StatusUnauthorized},
		{"wrong scheme", "/api/v1/formats", []string{"Authorization", "Basic secret-token"}, http.StatusUnauthorized},
		{"valid token", "/api/v1/formats", []string{"Authorization", "Bearer secret-token"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodGet, tt.path, nil, tt.header...)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAuthEnabled(t *testing.T) {
	cfg := config.DefaultConfig()
	s := NewServer(Options{Config: cfg})
	assert.False(t, s.AuthEnabled())

	cfg.Server.APIToken = "x"
	assert.True(t, s.AuthEnabled())
}

func TestGetActivity(t *testing.T) {
	act, err := activity.NewLogger(t.TempDir())
	require.NoError(t, err)
	defer act.Close()
	require.NoError(t, act.Log(activity.Entry{Action: activity.ActionDetect, Source: "/a/b.jpg", Success: true}))

	h := newTestServer(t, Options{Activity: act})

	w := do(t, h, http.MethodGet, "/api/v1/activity?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode[[]activity.Entry](t, w)
	require.Len(t, entries, 1)
	assert.Equal(t, "/a/b.jpg", entries[0].Source)

	w = do(t, h, http.MethodGet, "/api/v1/activity?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, newTestServer(t, Options{}), http.MethodGet, "/api/v1/activity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}
