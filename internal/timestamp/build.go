package timestamp

// Candidate types. The type names the format that produced a reading.
const (
	TypeCompactDateTimeMillis = "compact-datetime-ms"
	TypeCompactDateTime       = "compact-datetime"
	TypeCompactShortDateTime  = "compact-short-datetime"
	TypeUnixMillis            = "unix-ms"
	TypeUnixSeconds           = "unix-seconds"
	TypeCompactTimeMillis     = "compact-time-ms"
	TypeCompactYMD            = "compact-ymd"
	TypeCompactDMY            = "compact-dmy"
	TypeCompactMDY            = "compact-mdy"
	TypeCompactYearMonth      = "compact-year-month"
	TypeCompactYYMMDD         = "compact-yymmdd"
	TypeCompactDDMMYY         = "compact-ddmmyy"
	TypeCompactHHMMSS         = "compact-hhmmss"
	TypeYear                  = "year"
	TypeCompactHHMM           = "compact-hhmm"
	TypeCompactYYMM           = "compact-yymm"
	TypeISODate               = "iso-date"
	TypeDMYDate               = "dmy-date"
	TypeMDYDate               = "mdy-date"
	TypeTime                  = "time"
	TypeShortDMYDate          = "short-dmy-date"
	TypeShortYMDDate          = "short-ymd-date"
	TypeClock                 = "clock"
	TypeYearMonth             = "year-month"
	TypeLetterTime            = "letter-time"
	TypeMonthNameDate         = "month-name-date"
	TypeMonthNameMonth        = "month-name-month"
)

// fourDigitYearTypes are the formats whose year was written out in full.
var fourDigitYearTypes = map[string]bool{
	TypeCompactDateTimeMillis: true,
	TypeCompactDateTime:       true,
	TypeCompactYMD:            true,
	TypeCompactDMY:            true,
	TypeCompactMDY:            true,
	TypeCompactYearMonth:      true,
	TypeYear:                  true,
	TypeISODate:               true,
	TypeDMYDate:               true,
	TypeMDYDate:               true,
	TypeYearMonth:             true,
	TypeMonthNameDate:         true,
	TypeMonthNameMonth:        true,
}

// dayMonthTypes maps day/month-order formats to the convention they prove.
var dayMonthTypes = map[string]Convention{
	TypeCompactDMY: DMY,
	TypeCompactMDY: MDY,
	TypeDMYDate:    DMY,
	TypeMDYDate:    MDY,
}

// newDate builds a day-precision timestamp, rejecting calendar-invalid
// assemblies.
func newDate(typ string, y, m, d, start, end int, conf float64) (Timestamp, bool) {
	if !isCalendarDate(y, m, d) {
		return Timestamp{}, false
	}
	return mustValid(Timestamp{
		Type:       typ,
		Year:       y,
		Month:      m,
		Day:        d,
		DatePart:   PrecisionDay,
		Start:      start,
		End:        end,
		Confidence: conf,
	}), true
}

func newMonth(typ string, y, m, start, end int, conf float64) (Timestamp, bool) {
	if !IsValidYear(y, false) || !IsValidMonth(m) {
		return Timestamp{}, false
	}
	return mustValid(Timestamp{
		Type:       typ,
		Year:       y,
		Month:      m,
		DatePart:   PrecisionMonth,
		Start:      start,
		End:        end,
		Confidence: conf,
	}), true
}

// newClock builds a time-only timestamp. p selects which of s and ms are
// meaningful.
func newClock(typ string, h, mi, s, ms int, p Precision, start, end int, conf float64) (Timestamp, bool) {
	if !isValidClock(h, mi, s) || !IsValidMillisecond(ms) {
		return Timestamp{}, false
	}
	t := Timestamp{
		Type:       typ,
		Hour:       h,
		Minute:     mi,
		TimePart:   p,
		Start:      start,
		End:        end,
		Confidence: conf,
	}
	if p >= PrecisionSecond {
		t.Second = s
	}
	if p == PrecisionMillisecond {
		t.Millisecond = ms
	}
	return mustValid(t), true
}

// withTime copies the time of day from clock onto date.
func withTime(date, clock Timestamp) Timestamp {
	date.Hour = clock.Hour
	date.Minute = clock.Minute
	date.Second = clock.Second
	date.Millisecond = clock.Millisecond
	date.TimePart = clock.TimePart
	return date
}

// newDateTime builds a full date and time from one span.
func newDateTime(typ string, y, mo, d, h, mi, s, ms int, p Precision, start, end int, conf float64) (Timestamp, bool) {
	date, ok := newDate(typ, y, mo, d, start, end, conf)
	if !ok {
		return Timestamp{}, false
	}
	clock, ok := newClock(typ, h, mi, s, ms, p, start, end, conf)
	if !ok {
		return Timestamp{}, false
	}
	return mustValid(withTime(date, clock)), true
}

// dayMonthCandidate reads first/second as day and month in both orders.
// Both valid and distinct gives an Ambiguous candidate.
func dayMonthCandidate(dmyType, mdyType string, first, second, year, start, end int, conf float64) (Candidate, bool) {
	dmy, dmyOK := newDate(dmyType, year, second, first, start, end, conf)
	mdy, mdyOK := newDate(mdyType, year, first, second, start, end, conf)
	switch {
	case dmyOK && mdyOK && first != second:
		dmy.Confidence, mdy.Confidence = ambiguousConfidence, ambiguousConfidence
		return Ambiguous{Alternatives: [2]Timestamp{dmy, mdy}}, true
	case dmyOK:
		return Resolved{Value: dmy}, true
	case mdyOK:
		return Resolved{Value: mdy}, true
	}
	return nil, false
}

const ambiguousConfidence = 0.5
