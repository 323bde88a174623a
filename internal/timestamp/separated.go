package timestamp

import "strings"

// separatorChars may join the components of a separated date or time. All
// separators inside one group must be the same character.
const separatorChars = "-._/:"

// group is a run of adjacent digit sequences joined by one repeated
// separator character.
type group struct {
	parts []DigitSequence
	sep   byte
}

func (g group) start() int { return g.parts[0].Start }
func (g group) end() int   { return g.parts[len(g.parts)-1].End }

// groupAt returns the size-part group starting at sequence i, if the
// sequences are unconsumed and joined by single identical separators.
func (c *scanContext) groupAt(i, size int) (group, bool) {
	if i+size > len(c.seqs) {
		return group{}, false
	}
	parts := c.seqs[i : i+size]
	var sep byte
	for k, p := range parts {
		if c.overlaps(p.Start, p.End) {
			return group{}, false
		}
		if k == 0 {
			continue
		}
		prev := parts[k-1]
		if p.Start-prev.End != 1 {
			return group{}, false
		}
		ch := c.input[prev.End]
		if strings.IndexByte(separatorChars, ch) < 0 {
			return group{}, false
		}
		if sep != 0 && ch != sep {
			return group{}, false
		}
		sep = ch
	}
	return group{parts: parts, sep: sep}, true
}

// separatedRule interprets a group of a fixed size and shape.
type separatedRule struct {
	name  string
	size  int
	shape func(g group) bool
	match func(c *scanContext, g group) (Candidate, bool)
}

// widths returns a shape predicate: part k must have between w[k][0] and
// w[k][1] digits.
func widths(w ...[2]int) func(group) bool {
	return func(g group) bool {
		if len(g.parts) != len(w) {
			return false
		}
		for k, p := range g.parts {
			if p.Len() < w[k][0] || p.Len() > w[k][1] {
				return false
			}
		}
		return true
	}
}

var (
	one2  = [2]int{1, 2}
	two   = [2]int{2, 2}
	three = [2]int{3, 3}
	four  = [2]int{4, 4}
)

// Triples are tried before pairs; separated matches run before compact
// ones.
var separatedRules = []separatedRule{
	{name: TypeISODate, size: 3, shape: widths(four, one2, one2), match: matchISODate},
	{name: "day-month-year", size: 3, shape: widths(one2, one2, four), match: matchDayMonthYear},
	{name: "short-triple", size: 3, shape: widths(two, two, two), match: matchShortTriple},
	{name: TypeYearMonth, size: 2, shape: widths(four, two), match: matchYearMonth},
	{name: TypeClock, size: 2, shape: widths(one2, two), match: matchClock},
}

func scanSeparated(c *scanContext) {
	for i := range c.seqs {
		for _, rule := range separatedRules {
			g, ok := c.groupAt(i, rule.size)
			if !ok || !rule.shape(g) {
				continue
			}
			if cand, ok := rule.match(c, g); ok {
				c.emit(cand)
				break
			}
		}
	}
}

// YYYY-MM-DD, also YYYY/MM/DD, YYYY.MM.DD and the EXIF YYYY:MM:DD.
func matchISODate(_ *scanContext, g group) (Candidate, bool) {
	p := g.parts
	ts, ok := newDate(TypeISODate, int(p[0].Value), int(p[1].Value), int(p[2].Value), g.start(), g.end(), 0.95)
	if !ok {
		return nil, false
	}
	return Resolved{Value: ts}, true
}

// DD-MM-YYYY or MM-DD-YYYY. When both orders are valid the candidate is
// ambiguous and the caller's default convention decides.
func matchDayMonthYear(_ *scanContext, g group) (Candidate, bool) {
	if g.sep == ':' {
		return nil, false
	}
	p := g.parts
	return dayMonthCandidate(TypeDMYDate, TypeMDYDate, int(p[0].Value), int(p[1].Value), int(p[2].Value), g.start(), g.end(), 0.85)
}

// matchShortTriple checks HH-MM-SS first since it has the tighter ranges,
// then DD-MM-YY when the first value is 20 or more, then YY-MM-DD.
func matchShortTriple(c *scanContext, g group) (Candidate, bool) {
	a, b, z := int(g.parts[0].Value), int(g.parts[1].Value), int(g.parts[2].Value)

	if ts, ok := newClock(TypeTime, a, b, z, 0, PrecisionSecond, g.start(), g.end(), 0.8); ok {
		return Resolved{Value: withFraction(c, ts)}, true
	}
	if g.sep == ':' {
		return nil, false
	}
	if a >= 20 {
		if ts, ok := newDate(TypeShortDMYDate, ExpandYear(z), b, a, g.start(), g.end(), 0.5); ok {
			return Resolved{Value: ts}, true
		}
	}
	if ts, ok := newDate(TypeShortYMDDate, ExpandYear(a), b, z, g.start(), g.end(), 0.5); ok {
		return Resolved{Value: ts}, true
	}
	return nil, false
}

// withFraction extends a seconds-precision time with a trailing ".mmm" or
// ",mmm" and consumes it.
func withFraction(c *scanContext, ts Timestamp) Timestamp {
	if ts.End >= len(c.input) || (c.input[ts.End] != '.' && c.input[ts.End] != ',') {
		return ts
	}
	for _, seq := range c.seqs {
		if seq.Start != ts.End+1 {
			continue
		}
		if seq.Len() != three[0] || c.overlaps(seq.Start, seq.End) {
			return ts
		}
		ts.Millisecond = int(seq.Value)
		ts.TimePart = PrecisionMillisecond
		ts.End = seq.End
		return mustValid(ts)
	}
	return ts
}

// YYYY-MM, month precision. A colon never separates year and month.
func matchYearMonth(_ *scanContext, g group) (Candidate, bool) {
	if g.sep == ':' {
		return nil, false
	}
	ts, ok := newMonth(TypeYearMonth, int(g.parts[0].Value), int(g.parts[1].Value), g.start(), g.end(), 0.7)
	if !ok {
		return nil, false
	}
	return Resolved{Value: ts}, true
}

// HH:MM. Other separators only count directly after a date, as in
// 2024-03-15_14-30.
func matchClock(c *scanContext, g group) (Candidate, bool) {
	if g.sep != ':' && (g.sep == '/' || !c.dateEndsNear(g.start())) {
		return nil, false
	}
	ts, ok := newClock(TypeClock, int(g.parts[0].Value), int(g.parts[1].Value), 0, 0, PrecisionMinute, g.start(), g.end(), 0.6)
	if !ok {
		return nil, false
	}
	return Resolved{Value: ts}, true
}
