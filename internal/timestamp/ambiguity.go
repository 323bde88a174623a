package timestamp

import "fmt"

// AmbiguityKind names why a date could be read two ways.
type AmbiguityKind string

const (
	DayMonthOrder AmbiguityKind = "day-month-order"
	TwoDigitYear  AmbiguityKind = "two-digit-year"
)

// ResolutionOption is one labelled way to read an ambiguous date.
type ResolutionOption struct {
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Timestamp   Timestamp `json:"timestamp"`
}

// AmbiguityRecord describes the first ambiguous date in a filename.
type AmbiguityRecord struct {
	Kind    AmbiguityKind       `json:"type"`
	Match   string              `json:"match"`
	Start   int                 `json:"start"`
	End     int                 `json:"end"`
	First   int                 `json:"first"`
	Second  int                 `json:"second"`
	Options [2]ResolutionOption `json:"options"`
}

// DetectAmbiguity reports a date in filename that has two valid readings,
// whatever default Detect would apply. Separated day/month triples are
// checked first, then ambiguous compact dates, then two-digit years from
// before 2000.
func DetectAmbiguity(filename string) *AmbiguityRecord {
	if filename == "" {
		return nil
	}
	c := newScanContext(filename, nil)
	for i := range c.seqs {
		g, ok := c.groupAt(i, 3)
		if !ok || !widths(one2, one2, four)(g) || g.sep == ':' {
			continue
		}
		if a, ok := dayMonthAmbiguity(g); ok {
			return dayMonthRecord(filename, a, int(g.parts[0].Value), int(g.parts[1].Value))
		}
	}

	found := c.run()
	for _, cand := range found {
		if a, ok := cand.(Ambiguous); ok {
			r := a.Reading()
			// The day-first reading holds the first pair as its day.
			return dayMonthRecord(filename, a, r.Day, r.Month)
		}
	}
	for _, cand := range found {
		if rec := twoDigitYearRecord(filename, cand.Reading()); rec != nil {
			return rec
		}
	}
	return nil
}

func dayMonthAmbiguity(g group) (Ambiguous, bool) {
	p := g.parts
	cand, ok := dayMonthCandidate(TypeDMYDate, TypeMDYDate, int(p[0].Value), int(p[1].Value), int(p[2].Value), g.start(), g.end(), 0.85)
	if !ok {
		return Ambiguous{}, false
	}
	a, ok := cand.(Ambiguous)
	return a, ok
}

func dayMonthRecord(input string, a Ambiguous, first, second int) *AmbiguityRecord {
	dmy, mdy := a.Alternatives[0], a.Alternatives[1]
	return &AmbiguityRecord{
		Kind:   DayMonthOrder,
		Match:  input[dmy.Start:dmy.End],
		Start:  dmy.Start,
		End:    dmy.End,
		First:  first,
		Second: second,
		Options: [2]ResolutionOption{
			{Label: string(DMY), Description: fmt.Sprintf("day %d, month %d (%s)", dmy.Day, dmy.Month, dmy), Timestamp: dmy},
			{Label: string(MDY), Description: fmt.Sprintf("month %d, day %d (%s)", mdy.Month, mdy.Day, mdy), Timestamp: mdy},
		},
	}
}

var twoDigitYearTypes = map[string]bool{
	TypeCompactYYMMDD: true,
	TypeCompactDDMMYY: true,
	TypeShortDMYDate:  true,
	TypeShortYMDDate:  true,
}

// twoDigitYearRecord flags two-digit years that were expanded into the
// 1900s; those read just as well as 2070-2099.
func twoDigitYearRecord(input string, ts Timestamp) *AmbiguityRecord {
	if !twoDigitYearTypes[ts.Type] || ts.Year >= 2000 {
		return nil
	}
	later := ts
	later.Year += 100
	if !isCalendarDate(later.Year, later.Month, later.Day) {
		return nil
	}
	later = mustValid(later)
	return &AmbiguityRecord{
		Kind:   TwoDigitYear,
		Match:  input[ts.Start:ts.End],
		Start:  ts.Start,
		End:    ts.End,
		First:  ts.Year,
		Second: later.Year,
		Options: [2]ResolutionOption{
			{Label: fmt.Sprintf("%d", ts.Year), Description: "twentieth century (" + ts.String() + ")", Timestamp: ts},
			{Label: fmt.Sprintf("%d", later.Year), Description: "twenty-first century (" + later.String() + ")", Timestamp: later},
		},
	}
}
