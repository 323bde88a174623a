package timestamp

import "sort"

// maxMergeGap is the largest number of bytes allowed between a date and the
// time that completes it.
const maxMergeGap = 5

type span struct {
	start, end int
}

// scanContext carries one detection pass over a single input. Spans are
// consumed as matchers accept them so no span is read twice.
type scanContext struct {
	input    string
	seqs     []DigitSequence
	rules    []ExclusionRule
	consumed []span
	found    []Candidate
}

func newScanContext(input string, rules []ExclusionRule) *scanContext {
	if rules == nil {
		rules = DefaultExclusionRules
	}
	c := &scanContext{
		input: input,
		seqs:  ExtractDigitSequences(input),
		rules: rules,
	}
	for _, loc := range uuidRegex.FindAllStringIndex(input, -1) {
		c.consume(loc[0], loc[1])
	}
	return c
}

// stages run in priority order; earlier stages claim spans first.
var stages = []func(*scanContext){
	scanLetterTimes,
	scanMonthNames,
	scanSeparated,
	scanCompact,
}

func (c *scanContext) run() []Candidate {
	for _, stage := range stages {
		stage(c)
	}
	sort.SliceStable(c.found, func(i, j int) bool {
		return c.found[i].Reading().Start < c.found[j].Reading().Start
	})
	return c.found
}

// anchored reports whether the input has anything a timestamp could be
// built around: a run of at least four digits or a letter-time token.
func (c *scanContext) anchored() bool {
	for _, seq := range c.seqs {
		if seq.Len() >= 4 {
			return true
		}
	}
	return len(findLetterTimes(c.input)) > 0
}

func (c *scanContext) overlaps(start, end int) bool {
	for _, s := range c.consumed {
		if start < s.end && s.start < end {
			return true
		}
	}
	return false
}

func (c *scanContext) consume(start, end int) {
	c.consumed = append(c.consumed, span{start, end})
}

func (c *scanContext) emit(cand Candidate) {
	r := cand.Reading()
	c.found = append(c.found, cand)
	c.consume(r.Start, r.End)
}

// dateEndsNear reports whether a date-only candidate ends at most
// maxMergeGap bytes before pos. Compact runs right after a date are read as
// times first.
func (c *scanContext) dateEndsNear(pos int) bool {
	for _, f := range c.found {
		r := f.Reading()
		if r.DatePart == PrecisionDay && !r.HasTime() && r.End <= pos && pos-r.End <= maxMergeGap {
			return true
		}
	}
	return false
}
