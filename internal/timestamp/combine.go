package timestamp

import "sort"

func isDateOnly(t Timestamp) bool { return t.DatePart == PrecisionDay && !t.HasTime() }
func isTimeOnly(t Timestamp) bool { return !t.HasDate() && t.HasTime() }

// combine merges date-only readings with the time-only reading that follows
// them, then fills missing seconds from a redundant HHMMSS run. ts must be
// sorted by Start.
func combine(ts []Timestamp, seqs []DigitSequence) []Timestamp {
	merged := mergeAdjacent(ts)
	for i := 0; i < len(merged); i++ {
		if filled, run, ok := fillSeconds(merged[i], seqs); ok {
			merged[i] = filled
			merged, i = dropOverlapping(merged, i, run)
		}
	}
	return merged
}

// mergeAdjacent joins a date with a time starting at most maxMergeGap bytes
// after it. The date keeps its type and the span grows to cover the time.
func mergeAdjacent(ts []Timestamp) []Timestamp {
	used := make([]bool, len(ts))
	out := make([]Timestamp, 0, len(ts))
	for i, d := range ts {
		if used[i] {
			continue
		}
		if isDateOnly(d) {
			for j := i + 1; j < len(ts); j++ {
				t := ts[j]
				if used[j] || t.Start < d.End {
					continue
				}
				if t.Start-d.End > maxMergeGap {
					break
				}
				if isTimeOnly(t) {
					d = joinTime(d, t)
					used[j] = true
				}
				break
			}
		}
		out = append(out, d)
	}
	return out
}

func joinTime(date, clock Timestamp) Timestamp {
	merged := withTime(date, clock)
	merged.End = clock.End
	if clock.Confidence > merged.Confidence {
		merged.Confidence = clock.Confidence
	}
	return mustValid(merged)
}

// fillSeconds handles names like "2022-05-17-11:02 - USER_110214": the
// date-time reads to the minute and a six digit run elsewhere starts with
// the same hour and minute. The run's last pair becomes the seconds and the
// span grows to cover the run, text in between included.
func fillSeconds(t Timestamp, seqs []DigitSequence) (Timestamp, DigitSequence, bool) {
	if t.DatePart != PrecisionDay {
		return t, DigitSequence{}, false
	}
	if t.TimePart != PrecisionMinute && !(t.TimePart == PrecisionSecond && t.Second == 0) {
		return t, DigitSequence{}, false
	}
	for _, seq := range seqs {
		if seq.Len() != 6 || (seq.Start < t.End && t.Start < seq.End) {
			continue
		}
		if seq.pair(0) != t.Hour || seq.pair(2) != t.Minute || !IsValidSeconds(seq.pair(4)) {
			continue
		}
		t.Second = seq.pair(4)
		t.Millisecond = 0
		t.TimePart = PrecisionSecond
		t.Start = min(t.Start, seq.Start)
		t.End = max(t.End, seq.End)
		return mustValid(t), seq, true
	}
	return t, DigitSequence{}, false
}

// dropOverlapping removes every reading except keep that overlaps run and
// returns keep's new index.
func dropOverlapping(ts []Timestamp, keep int, run DigitSequence) ([]Timestamp, int) {
	out := ts[:0]
	kept := keep
	for i, t := range ts {
		if i != keep && t.Start < run.End && run.Start < t.End {
			continue
		}
		if i == keep {
			kept = len(out)
		}
		out = append(out, t)
	}
	return out, kept
}

// selectBest ranks readings and returns the best one, or nil. Ranking
// prefers finer precision, then a time of day, then the later position in
// the name, so in "id_date" names the trailing date wins. A clock reading
// outranks a lone date it was not merged with.
func selectBest(ts []Timestamp) *Timestamp {
	if len(ts) == 0 {
		return nil
	}
	ranked := replaceLaterTimes(ts)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Precision() != b.Precision() {
			return a.Precision() > b.Precision()
		}
		if a.HasTime() != b.HasTime() {
			return a.HasTime()
		}
		return a.Start > b.Start
	})
	best := ranked[0]
	return &best
}

// replaceLaterTimes gives a date-time the time of a strictly later time-only
// reading at least as precise as its own, and drops that reading.
func replaceLaterTimes(ts []Timestamp) []Timestamp {
	out := append([]Timestamp(nil), ts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	for i := 0; i < len(out); i++ {
		d := out[i]
		if !d.HasDate() || !d.HasTime() {
			continue
		}
		for j := i + 1; j < len(out); j++ {
			t := out[j]
			if !isTimeOnly(t) || t.Start < d.End || t.TimePart < d.TimePart {
				continue
			}
			out[i] = joinTime(d, t)
			out = append(out[:j], out[j+1:]...)
			break
		}
	}
	return out
}
