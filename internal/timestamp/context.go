package timestamp

import (
	"fmt"
	"math"
	"path/filepath"
)

// FileEvidence is what a single filename says about the batch convention.
// It is computed independently per file; Aggregate combines any number of
// them in any order.
type FileEvidence struct {
	Filename  string `json:"filename"`
	Directory string `json:"directory"`
	Ambiguous bool   `json:"ambiguous"`
	DMYProof  bool   `json:"dmy_proof"`
	MDYProof  bool   `json:"mdy_proof"`
	YearProof bool   `json:"year_proof"`
}

// HasEvidence reports whether the file said anything about day/month order.
func (e FileEvidence) HasEvidence() bool {
	return e.Ambiguous || e.DMYProof || e.MDYProof
}

// CollectEvidence inspects the base name of filename. A day/month date whose
// day exceeds 12 proves its order; one that could be read either way counts
// as ambiguous. Any date with a four-digit year is a year proof.
func CollectEvidence(filename string) FileEvidence {
	ev := FileEvidence{
		Filename:  filename,
		Directory: filepath.Clean(filepath.Dir(filename)),
	}
	for _, cand := range DetectAllCandidates(filepath.Base(filename)) {
		r := cand.Reading()
		if fourDigitYearTypes[r.Type] {
			ev.YearProof = true
		}
		if cand.IsAmbiguous() {
			ev.Ambiguous = true
			continue
		}
		conv, ok := dayMonthTypes[r.Type]
		if !ok {
			continue
		}
		switch {
		case r.Day <= 12:
			ev.Ambiguous = true
		case conv == DMY:
			ev.DMYProof = true
		case conv == MDY:
			ev.MDYProof = true
		}
	}
	return ev
}

// BatchOptions scopes a batch analysis.
type BatchOptions struct {
	// CurrentDirectory restricts evidence to files in that directory when
	// at least two of them are present.
	CurrentDirectory string
}

// BatchStats counts the evidence behind a ContextAnalysis.
type BatchStats struct {
	Total              int `json:"total"`
	Ambiguous          int `json:"ambiguous"`
	DMYProof           int `json:"dmy_proof"`
	MDYProof           int `json:"mdy_proof"`
	YearProof          int `json:"year_proof"`
	SameDirectoryFiles int `json:"same_directory_files"`
}

// ContextAnalysis is the inferred day/month convention of a batch.
type ContextAnalysis struct {
	Recommendation Convention `json:"recommendation,omitempty"`
	Confidence     float64    `json:"confidence"`
	Evidence       []string   `json:"evidence"`
	Stats          BatchStats `json:"stats"`
}

// Scoring constants.
const (
	minOneSidedProofs  = 3
	oneSidedBase       = 0.70
	favoredBase        = 0.60
	perProof           = 0.05
	proofCap           = 0.95
	ambiguousOnlyScore = 0.50
	yearBonus          = 0.10
	yearBonusShare     = 0.70
)

// DefaultAutoResolveThreshold is the confidence at which a recommendation
// is applied without asking.
const DefaultAutoResolveThreshold = 0.70

// AnalyzeBatchFormat infers whether the ambiguous dates in filenames are
// day-first or month-first.
func AnalyzeBatchFormat(filenames []string, opts BatchOptions) ContextAnalysis {
	evidence := make([]FileEvidence, 0, len(filenames))
	for _, name := range filenames {
		evidence = append(evidence, CollectEvidence(name))
	}
	return Aggregate(evidence, opts)
}

// Aggregate reduces per-file evidence to a recommendation. The result does
// not depend on the order of evidence.
func Aggregate(evidence []FileEvidence, opts BatchOptions) ContextAnalysis {
	var a ContextAnalysis

	if opts.CurrentDirectory != "" {
		dir := filepath.Clean(opts.CurrentDirectory)
		var local []FileEvidence
		for _, ev := range evidence {
			if ev.Directory == dir {
				local = append(local, ev)
			}
		}
		a.Stats.SameDirectoryFiles = len(local)
		if len(local) >= 2 {
			evidence = local
			a.note("using %d files from %s", len(local), dir)
		}
	}

	s := &a.Stats
	s.Total = len(evidence)
	for _, ev := range evidence {
		if ev.Ambiguous {
			s.Ambiguous++
		}
		if ev.DMYProof {
			s.DMYProof++
		}
		if ev.MDYProof {
			s.MDYProof++
		}
		if ev.YearProof {
			s.YearProof++
		}
	}

	dmy, mdy := s.DMYProof, s.MDYProof
	switch {
	case dmy >= minOneSidedProofs && mdy == 0:
		a.recommend(DMY, math.Min(proofCap, oneSidedBase+perProof*float64(dmy)))
		a.note("%d files have a day above 12 and none a month above 12", dmy)
	case mdy >= minOneSidedProofs && dmy == 0:
		a.recommend(MDY, math.Min(proofCap, oneSidedBase+perProof*float64(mdy)))
		a.note("%d files have a month-first date above 12 and none day-first", mdy)
	case dmy > mdy:
		a.recommend(DMY, math.Min(proofCap, favoredBase+perProof*float64(dmy)))
		a.note("%d day-first proofs against %d month-first", dmy, mdy)
		if mdy > 0 {
			a.note("mixed formats: %d files only read month-first", mdy)
		}
	case mdy > dmy:
		a.recommend(MDY, math.Min(proofCap, favoredBase+perProof*float64(mdy)))
		a.note("%d month-first proofs against %d day-first", mdy, dmy)
		if dmy > 0 {
			a.note("mixed formats: %d files only read day-first", dmy)
		}
	case dmy > 0:
		a.note("mixed formats: %d proofs each way, no recommendation", dmy)
	case s.Ambiguous > 0:
		a.recommend(DMY, ambiguousOnlyScore)
		a.note("%d ambiguous files and no proof either way, assuming day-first", s.Ambiguous)
	default:
		a.note("no day/month evidence")
	}

	if a.Recommendation != "" && s.Total > 0 && float64(s.YearProof) >= yearBonusShare*float64(s.Total) {
		a.Confidence = math.Min(1, a.Confidence+yearBonus)
		a.note("%d of %d files carry a four-digit year", s.YearProof, s.Total)
	}
	a.Confidence = math.Round(a.Confidence*100) / 100
	return a
}

func (a *ContextAnalysis) recommend(c Convention, confidence float64) {
	a.Recommendation = c
	a.Confidence = confidence
}

func (a *ContextAnalysis) note(format string, args ...any) {
	a.Evidence = append(a.Evidence, fmt.Sprintf(format, args...))
}

// Decision is what a caller should do with an analysis.
type Decision string

const (
	AutoResolve Decision = "auto-resolve"
	PromptUser  Decision = "prompt-user"
)

// Decide returns AutoResolve when there is a recommendation at or above
// threshold. A threshold of zero or less uses DefaultAutoResolveThreshold.
func (a ContextAnalysis) Decide(threshold float64) Decision {
	if threshold <= 0 {
		threshold = DefaultAutoResolveThreshold
	}
	if a.Recommendation != "" && a.Confidence >= threshold {
		return AutoResolve
	}
	return PromptUser
}

// DetectOptions returns Options that read ambiguous dates with the
// recommended convention.
func (a ContextAnalysis) DetectOptions() Options {
	return Options{DateFormat: a.Recommendation}
}
