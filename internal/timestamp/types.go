// Package timestamp detects calendar timestamps embedded in filenames.
//
// Detection is heuristic: digit runs and separated components are handed to
// an ordered set of format matchers, guarded against index numbers and hash
// fragments, combined, and ranked down to a single Timestamp. Batches of
// filenames can be analyzed together to infer whether ambiguous dates are
// written day-first or month-first.
package timestamp

import (
	"fmt"
	"strings"
	"time"
)

// Precision is the granularity of a timestamp reading.
type Precision int

const (
	PrecisionNone Precision = iota
	PrecisionYear
	PrecisionMonth
	PrecisionDay
	PrecisionMinute
	PrecisionSecond
	PrecisionMillisecond
)

var precisionNames = map[Precision]string{
	PrecisionNone:        "none",
	PrecisionYear:        "year",
	PrecisionMonth:       "month",
	PrecisionDay:         "day",
	PrecisionMinute:      "minute",
	PrecisionSecond:      "second",
	PrecisionMillisecond: "millisecond",
}

func (p Precision) String() string {
	if name, ok := precisionNames[p]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the precision by name.
func (p Precision) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a precision name.
func (p *Precision) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for k, v := range precisionNames {
		if v == name {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("unknown precision %q", name)
}

// Convention is the order used to read a numeric date whose first two
// components could each be a day or a month.
type Convention string

const (
	DMY Convention = "dmy"
	MDY Convention = "mdy"
)

// ParseConvention accepts "dmy" or "mdy" in any case. An empty string
// returns the empty convention.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "dmy", "dd-mm-yyyy":
		return DMY, nil
	case "mdy", "mm-dd-yyyy":
		return MDY, nil
	default:
		return "", fmt.Errorf("unknown date format %q (want dmy or mdy)", s)
	}
}

// Timestamp is a parsed reading of part of a filename.
//
// DatePart is one of None/Year/Month/Day and TimePart one of
// None/Minute/Second/Millisecond. Fields finer than the corresponding part
// are always zero. [Start, End) is the byte span of the input that produced
// the values; a combined reading spans from its first source to its last.
type Timestamp struct {
	Type        string    `json:"type"`
	Year        int       `json:"year,omitempty"`
	Month       int       `json:"month,omitempty"`
	Day         int       `json:"day,omitempty"`
	Hour        int       `json:"hour"`
	Minute      int       `json:"minute"`
	Second      int       `json:"second"`
	Millisecond int       `json:"millisecond"`
	DatePart    Precision `json:"date_part"`
	TimePart    Precision `json:"time_part"`
	Start       int       `json:"start"`
	End         int       `json:"end"`
	Confidence  float64   `json:"confidence"`
}

// Precision returns the finest component the timestamp carries.
func (t Timestamp) Precision() Precision {
	if t.TimePart != PrecisionNone {
		return t.TimePart
	}
	return t.DatePart
}

// HasDate reports whether the timestamp carries at least a year.
func (t Timestamp) HasDate() bool {
	return t.DatePart != PrecisionNone
}

// HasTime reports whether the timestamp carries a time of day.
func (t Timestamp) HasTime() bool {
	return t.TimePart != PrecisionNone
}

// Time converts the timestamp to a UTC time.Time. Missing month and day
// default to 1; a time-only timestamp lands on the zero date.
func (t Timestamp) Time() time.Time {
	if !t.HasDate() {
		return time.Date(0, 1, 1, t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC)
	}
	month, day := t.Month, t.Day
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	return time.Date(t.Year, time.Month(month), day, t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC)
}

// String formats the timestamp down to its precision.
func (t Timestamp) String() string {
	var date string
	switch t.DatePart {
	case PrecisionYear:
		date = fmt.Sprintf("%04d", t.Year)
	case PrecisionMonth:
		date = fmt.Sprintf("%04d-%02d", t.Year, t.Month)
	case PrecisionDay:
		date = fmt.Sprintf("%04d-%02d-%02d", t.Year, t.Month, t.Day)
	}

	var clock string
	switch t.TimePart {
	case PrecisionMinute:
		clock = fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
	case PrecisionSecond:
		clock = fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	case PrecisionMillisecond:
		clock = fmt.Sprintf("%02d:%02d:%02d.%03d", t.Hour, t.Minute, t.Second, t.Millisecond)
	}

	switch {
	case date != "" && clock != "":
		return date + " " + clock
	case date != "":
		return date
	default:
		return clock
	}
}

// Validate reports span and precision violations. A timestamp built by
// this package always validates.
func (t Timestamp) Validate() error {
	if t.Start < 0 || t.End <= t.Start {
		return fmt.Errorf("invalid span [%d,%d)", t.Start, t.End)
	}
	switch t.DatePart {
	case PrecisionNone, PrecisionYear, PrecisionMonth, PrecisionDay:
	default:
		return fmt.Errorf("invalid date precision %s", t.DatePart)
	}
	switch t.TimePart {
	case PrecisionNone, PrecisionMinute, PrecisionSecond, PrecisionMillisecond:
	default:
		return fmt.Errorf("invalid time precision %s", t.TimePart)
	}
	if t.DatePart == PrecisionNone && t.TimePart == PrecisionNone {
		return fmt.Errorf("timestamp %q carries no components", t.Type)
	}
	if t.DatePart == PrecisionNone && t.Year != 0 {
		return fmt.Errorf("year %d set without a date part", t.Year)
	}
	if t.DatePart < PrecisionMonth && t.Month != 0 {
		return fmt.Errorf("month %d finer than precision %s", t.Month, t.DatePart)
	}
	if t.DatePart < PrecisionDay && t.Day != 0 {
		return fmt.Errorf("day %d finer than precision %s", t.Day, t.DatePart)
	}
	if t.TimePart == PrecisionNone && (t.Hour != 0 || t.Minute != 0) {
		return fmt.Errorf("time of day set without a time part")
	}
	if t.TimePart < PrecisionSecond && t.Second != 0 {
		return fmt.Errorf("second %d finer than precision %s", t.Second, t.TimePart)
	}
	if t.TimePart < PrecisionMillisecond && t.Millisecond != 0 {
		return fmt.Errorf("millisecond %d finer than precision %s", t.Millisecond, t.TimePart)
	}
	if t.HasDate() && !IsValidYear(t.Year, false) {
		return fmt.Errorf("year %d out of range", t.Year)
	}
	if t.DatePart == PrecisionDay && !isCalendarDate(t.Year, t.Month, t.Day) {
		return fmt.Errorf("%04d-%02d-%02d is not a calendar date", t.Year, t.Month, t.Day)
	}
	if t.Confidence < 0 || t.Confidence > 1 {
		return fmt.Errorf("confidence %.2f outside [0,1]", t.Confidence)
	}
	return nil
}

// mustValid panics on a malformed timestamp. Matchers only construct
// timestamps from validated components, so a failure here is a bug.
func mustValid(t Timestamp) Timestamp {
	if err := t.Validate(); err != nil {
		panic(fmt.Sprintf("timestamp: built invalid %s candidate: %v", t.Type, err))
	}
	return t
}

// Candidate is a provisional reading produced by a matcher. It is either
// Resolved (one reading) or Ambiguous (two day/month-swapped readings).
type Candidate interface {
	// Reading returns the candidate's default reading.
	Reading() Timestamp
	// IsAmbiguous reports whether the candidate has two readings.
	IsAmbiguous() bool
	isCandidate()
}

// Resolved is a candidate with exactly one reading.
type Resolved struct {
	Value Timestamp
}

func (r Resolved) Reading() Timestamp { return r.Value }
func (r Resolved) IsAmbiguous() bool { return false }
func (Resolved) isCandidate() {}

// Ambiguous is a candidate whose first two date components are both valid
// as day and as month. Alternatives holds the day-first reading at index 0
// and the month-first reading at index 1.
type Ambiguous struct {
	Alternatives [2]Timestamp
}

func (a Ambiguous) Reading() Timestamp { return a.Alternatives[0] }
func (a Ambiguous) IsAmbiguous() bool { return true }
func (Ambiguous) isCandidate() {}

// Resolve picks the reading matching the convention; anything other than
// MDY selects the day-first reading.
func (a Ambiguous) Resolve(c Convention) Timestamp {
	if c == MDY {
		return a.Alternatives[1]
	}
	return a.Alternatives[0]
}

func resolveCandidate(c Candidate, conv Convention) Timestamp {
	if a, ok := c.(Ambiguous); ok {
		return a.Resolve(conv)
	}
	return c.Reading()
}

// mapCandidate applies f to every reading of c.
func mapCandidate(c Candidate, f func(Timestamp) Timestamp) Candidate {
	switch v := c.(type) {
	case Ambiguous:
		return Ambiguous{Alternatives: [2]Timestamp{f(v.Alternatives[0]), f(v.Alternatives[1])}}
	case Resolved:
		return Resolved{Value: f(v.Value)}
	default:
		panic(fmt.Sprintf("timestamp: unknown candidate %T", c))
	}
}
