package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Nomadcxx/stampwatch/internal/logging"
	"github.com/Nomadcxx/stampwatch/internal/patterns"
	"github.com/Nomadcxx/stampwatch/internal/scanner"
	"github.com/Nomadcxx/stampwatch/internal/timestamp"
)

const maxBodyBytes = 1 << 20

type DetectRequest struct {
	Filename   string `json:"filename"`
	DateFormat string `json:"date_format,omitempty"`
}

type FilenameRequest struct {
	Filename string `json:"filename"`
}

type AnalyzeRequest struct {
	Filenames        []string `json:"filenames"`
	CurrentDirectory string   `json:"current_directory,omitempty"`
	Threshold        float64  `json:"threshold,omitempty"`
}

type AnalyzeResponse struct {
	Analysis timestamp.ContextAnalysis `json:"analysis"`
	Decision timestamp.Decision        `json:"decision"`
}

// CandidateView is the JSON form of a detection candidate.
type CandidateView struct {
	Ambiguous    bool                  `json:"ambiguous"`
	Reading      timestamp.Timestamp   `json:"reading"`
	Alternatives []timestamp.Timestamp `json:"alternatives,omitempty"`
}

// NewCandidateViews converts candidates for encoding.
func NewCandidateViews(cands []timestamp.Candidate) []CandidateView {
	out := make([]CandidateView, 0, len(cands))
	for _, c := range cands {
		v := CandidateView{Ambiguous: c.IsAmbiguous(), Reading: c.Reading()}
		if a, ok := c.(timestamp.Ambiguous); ok {
			v.Alternatives = a.Alternatives[:]
		}
		out = append(out, v)
	}
	return out
}

type HealthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Uptime    string                 `json:"uptime"`
	Timestamp time.Time              `json:"timestamp"`
	Patterns  int                    `json:"patterns"`
	Scanner   *scanner.ScannerStatus `json:"scanner,omitempty"`
	Stats     any                    `json:"stats,omitempty"`
}

// HealthCheck reports "degraded" while the periodic scanner is failing.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Version:   s.version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Timestamp: time.Now(),
		Patterns:  s.registry.Len(),
	}
	if s.periodic != nil {
		status := s.periodic.Status()
		resp.Scanner = &status
		if !status.Healthy {
			resp.Status = "degraded"
		}
	}
	if s.stats != nil {
		resp.Stats = s.stats()
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) GetFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, timestamp.Formats())
}

// Detect returns the best timestamp for a filename, or null.
func (s *Server) Detect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename is required")
		return
	}
	conv, err := timestamp.ParseConvention(req.DateFormat)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if conv == "" {
		conv = s.cfg.DateConvention()
	}

	writeJSON(w, http.StatusOK, s.scanner.Detect(req.Filename, conv))
}

func (s *Server) Candidates(w http.ResponseWriter, r *http.Request) {
	var req FilenameRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename is required")
		return
	}
	writeJSON(w, http.StatusOK, NewCandidateViews(timestamp.DetectAllCandidates(req.Filename)))
}

// Ambiguity returns the filename's ambiguity record, or null.
func (s *Server) Ambiguity(w http.ResponseWriter, r *http.Request) {
	var req FilenameRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename is required")
		return
	}
	writeJSON(w, http.StatusOK, timestamp.DetectAmbiguity(req.Filename))
}

func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		writeError(w, http.StatusBadRequest, "threshold must be within [0,1]")
		return
	}
	threshold := req.Threshold
	if threshold == 0 {
		threshold = s.cfg.Detection.AutoResolveThreshold
	}

	analysis := timestamp.AnalyzeBatchFormat(req.Filenames, timestamp.BatchOptions{
		CurrentDirectory: req.CurrentDirectory,
	})
	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Analysis: analysis,
		Decision: analysis.Decide(threshold),
	})
}

func (s *Server) ListPatterns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) RegisterPattern(w http.ResponseWriter, r *http.Request) {
	var p patterns.Pattern
	if !decodeRequest(w, r, &p) {
		return
	}
	if err := s.registry.Register(p); err != nil {
		if errors.Is(err, patterns.ErrInvalidPattern) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("api", "Failed to register pattern", err, logging.F("name", p.Name))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("api", "Pattern registered", logging.F("name", p.Name))

	stored, _ := s.registry.Get(p.Name)
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) DeletePattern(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.registry.Unregister(name); err != nil {
		if errors.Is(err, patterns.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("api", "Failed to delete pattern", err, logging.F("name", name))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("api", "Pattern removed", logging.F("name", name))
	w.WriteHeader(http.StatusNoContent)
}

// GetActivity returns the most recent activity entries, newest first.
func (s *Server) GetActivity(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	if s.activity == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}

	entries, err := s.activity.GetRecentEntries(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
