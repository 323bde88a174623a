package timestamp

// CustomMatcher is consulted before heuristic detection. A match
// short-circuits the heuristics.
type CustomMatcher interface {
	Match(filename string) (Timestamp, bool)
}

// Options tunes a single detection.
type Options struct {
	// DateFormat picks the reading of ambiguous day/month dates. Empty
	// means DMY.
	DateFormat Convention
	// Custom, when set, is tried first.
	Custom CustomMatcher
	// Exclusions replaces DefaultExclusionRules when non-nil.
	Exclusions []ExclusionRule
}

func (o Options) convention() Convention {
	if o.DateFormat == "" {
		return DMY
	}
	return o.DateFormat
}

// Detect returns the best timestamp found in filename, or nil when there is
// none. It never fails: empty or unparseable input yields nil.
func Detect(filename string, opts Options) *Timestamp {
	if filename == "" {
		return nil
	}
	if opts.Custom != nil {
		if ts, ok := opts.Custom.Match(filename); ok {
			return &ts
		}
	}
	c := newScanContext(filename, opts.Exclusions)
	if !c.anchored() {
		return nil
	}
	conv := opts.convention()
	found := c.run()
	readings := make([]Timestamp, 0, len(found))
	for _, cand := range found {
		readings = append(readings, resolveCandidate(cand, conv))
	}
	return selectBest(combine(readings, c.seqs))
}

// DetectAllCandidates returns every raw matcher reading in filename, ordered
// by position, before combining and ranking. Ambiguous candidates keep both
// readings.
func DetectAllCandidates(filename string) []Candidate {
	if filename == "" {
		return nil
	}
	return newScanContext(filename, nil).run()
}

// Formats lists the matcher names in the order they are tried.
func Formats() []string {
	names := []string{TypeLetterTime, TypeMonthNameDate}
	for _, r := range separatedRules {
		names = append(names, r.name)
	}
	for _, r := range compactRules {
		names = append(names, r.name)
	}
	return names
}
