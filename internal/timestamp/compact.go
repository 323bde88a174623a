package timestamp

import "time"

// compactRule interprets a single digit run. Rules are tried in order and
// the first extractor that accepts the run wins.
type compactRule struct {
	name    string
	matches func(length int) bool
	extract func(c *scanContext, seq DigitSequence) (Candidate, bool)
}

func digitsLong(n int) func(int) bool {
	return func(length int) bool { return length == n }
}

var compactRules = []compactRule{
	{name: TypeCompactDateTimeMillis, matches: digitsLong(17), extract: matchCompactDateTimeMillis},
	{name: TypeCompactDateTime, matches: digitsLong(14), extract: matchCompactDateTime},
	{name: TypeUnixMillis, matches: digitsLong(13), extract: matchUnixMillis},
	{name: TypeCompactShortDateTime, matches: digitsLong(12), extract: matchCompactShortDateTime},
	{name: TypeUnixSeconds, matches: digitsLong(10), extract: matchUnixSeconds},
	{name: TypeCompactTimeMillis, matches: digitsLong(9), extract: matchCompactTimeMillis},
	{name: "compact-date", matches: digitsLong(8), extract: matchCompactDate},
	{name: "compact-six", matches: digitsLong(6), extract: matchSixDigits},
	{name: "compact-four", matches: digitsLong(4), extract: matchFourDigits},
}

// Epoch values are only trusted inside this window; outside it a 10 or 13
// digit run is far more likely a phone number or an ID.
var (
	epochWindowStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	epochWindowEnd   = time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
)

func scanCompact(c *scanContext) {
	for _, seq := range c.seqs {
		if c.overlaps(seq.Start, seq.End) {
			continue
		}
		if excluded(c.rules, c.input, seq) {
			continue
		}
		for _, rule := range compactRules {
			if !rule.matches(seq.Len()) {
				continue
			}
			if cand, ok := rule.extract(c, seq); ok {
				c.emit(cand)
				break
			}
		}
	}
}

// YYYYMMDDHHMMSSmmm
func matchCompactDateTimeMillis(_ *scanContext, seq DigitSequence) (Candidate, bool) {
	d := seq.Digits
	ts, ok := newDateTime(TypeCompactDateTimeMillis,
		atoi(d[0:4]), seq.pair(4), seq.pair(6), seq.pair(8), seq.pair(10), seq.pair(12), atoi(d[14:17]),
		PrecisionMillisecond, seq.Start, seq.End, 0.95)
	if !ok {
		return nil, false
	}
	return Resolved{Value: ts}, true
}

// YYYYMMDDHHMMSS; every component must validate.
func matchCompactDateTime(_ *scanContext, seq DigitSequence) (Candidate, bool) {
	ts, ok := newDateTime(TypeCompactDateTime,
		atoi(seq.Digits[0:4]), seq.pair(4), seq.pair(6), seq.pair(8), seq.pair(10), seq.pair(12), 0,
		PrecisionSecond, seq.Start, seq.End, 0.95)
	if !ok {
		return nil, false
	}
	return Resolved{Value: ts}, true
}

// YYMMDDHHMMSS with a year in 2020-2030.
func matchCompactShortDateTime(_ *scanContext, seq DigitSequence) (Candidate, bool) {
	yy := seq.pair(0)
	if yy < 20 || yy > 30 {
		return nil, false
	}
	ts, ok := newDateTime(TypeCompactShortDateTime,
		2000+yy, seq.pair(2), seq.pair(4), seq.pair(6), seq.pair(8), seq.pair(10), 0,
		PrecisionSecond, seq.Start, seq.End, 0.8)
	if !ok {
		return nil, false
	}
	return Resolved{Value: ts}, true
}

func matchUnixMillis(_ *scanContext, seq DigitSequence) (Candidate, bool) {
	if seq.Value < 0 {
		return nil, false
	}
	return epochCandidate(TypeUnixMillis, time.UnixMilli(seq.Value).UTC(), PrecisionMillisecond, seq)
}

func matchUnixSeconds(_ *scanContext, seq DigitSequence) (Candidate, bool) {
	if seq.Value < 0 {
		return nil, false
	}
	return epochCandidate(TypeUnixSeconds, time.Unix(seq.Value, 0).UTC(), PrecisionSecond, seq)
}

func epochCandidate(typ string, t time.Time, p Precision, seq DigitSequence) (Candidate, bool) {
	if t.Before(epochWindowStart) || !t.Before(epochWindowEnd) {
		return nil, false
	}
	ts, ok := newDateTime(typ, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second(),
		t.Nanosecond()/int(time.Millisecond), p, seq.Start, seq.End, 0.6)
	if !ok {
		return nil, false
	}
	return Resolved{Value: ts}, true
}

// HHMMSSmmm, only directly after a date (PXL_20240315_143045123).
func matchCompactTimeMillis(c *scanContext, seq DigitSequence) (Candidate, bool) {
	if !c.dateEndsNear(seq.Start) {
		return nil, false
	}
	ts, ok := newClock(TypeCompactTimeMillis, seq.pair(0), seq.pair(2), seq.pair(4), atoi(seq.Digits[6:9]),
		PrecisionMillisecond, seq.Start, seq.End, 0.7)
	if !ok {
		return nil, false
	}
	return Resolved{Value: ts}, true
}

// matchCompactDate tries YYYYMMDD first and returns it as soon as it is a
// calendar date. Otherwise DDMMYYYY and MMDDYYYY are both tried; when both
// hold the candidate is ambiguous rather than guessed.
func matchCompactDate(_ *scanContext, seq DigitSequence) (Candidate, bool) {
	d := seq.Digits
	if ts, ok := newDate(TypeCompactYMD, atoi(d[0:4]), seq.pair(4), seq.pair(6), seq.Start, seq.End, 0.9); ok {
		return Resolved{Value: ts}, true
	}
	return dayMonthCandidate(TypeCompactDMY, TypeCompactMDY, seq.pair(0), seq.pair(2), atoi(d[4:8]), seq.Start, seq.End, 0.75)
}

// matchSixDigits reads a time when the run follows a date, then YYYYMM,
// then a two-digit-year date, then HHMMSS. A leading pair of 20 or more is
// taken as a day (DDMMYY); anything lower starts a YYMMDD date.
func matchSixDigits(c *scanContext, seq DigitSequence) (Candidate, bool) {
	a, b, z := seq.pair(0), seq.pair(2), seq.pair(4)

	if c.dateEndsNear(seq.Start) {
		if ts, ok := newClock(TypeCompactHHMMSS, a, b, z, 0, PrecisionSecond, seq.Start, seq.End, 0.75); ok {
			return Resolved{Value: ts}, true
		}
	}
	if !yearExcluded(c.rules, c.input, seq) {
		if ts, ok := newMonth(TypeCompactYearMonth, atoi(seq.Digits[0:4]), z, seq.Start, seq.End, 0.6); ok {
			return Resolved{Value: ts}, true
		}
	}
	if a >= 20 {
		if ts, ok := newDate(TypeCompactDDMMYY, ExpandYear(z), b, a, seq.Start, seq.End, 0.55); ok {
			return Resolved{Value: ts}, true
		}
	}
	if ts, ok := newDate(TypeCompactYYMMDD, ExpandYear(a), b, z, seq.Start, seq.End, 0.55); ok {
		return Resolved{Value: ts}, true
	}
	if ts, ok := newClock(TypeCompactHHMMSS, a, b, z, 0, PrecisionSecond, seq.Start, seq.End, 0.6); ok {
		return Resolved{Value: ts}, true
	}
	return nil, false
}

// matchFourDigits reads a year, then HHMM, then YYMM. Right after a date the
// run is read as HHMM first. Near an index keyword only HHMM is tried.
func matchFourDigits(c *scanContext, seq DigitSequence) (Candidate, bool) {
	hh, mm := seq.pair(0), seq.pair(2)
	yearOK := !yearExcluded(c.rules, c.input, seq)

	if c.dateEndsNear(seq.Start) {
		if ts, ok := newClock(TypeCompactHHMM, hh, mm, 0, 0, PrecisionMinute, seq.Start, seq.End, 0.6); ok {
			return Resolved{Value: ts}, true
		}
	}
	if year := int(seq.Value); yearOK && IsValidYear(year, false) {
		return Resolved{Value: mustValid(Timestamp{
			Type:       TypeYear,
			Year:       year,
			DatePart:   PrecisionYear,
			Start:      seq.Start,
			End:        seq.End,
			Confidence: 0.3,
		})}, true
	}
	if ts, ok := newClock(TypeCompactHHMM, hh, mm, 0, 0, PrecisionMinute, seq.Start, seq.End, 0.35); ok {
		return Resolved{Value: ts}, true
	}
	if yearOK && hh >= 20 && hh <= 30 {
		if ts, ok := newMonth(TypeCompactYYMM, 2000+hh, mm, seq.Start, seq.End, 0.3); ok {
			return Resolved{Value: ts}, true
		}
	}
	return nil, false
}
