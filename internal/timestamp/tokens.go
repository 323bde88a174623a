package timestamp

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// letterTimeRegex matches 14h30, 14h30m45s and 14h30m45s123.
var letterTimeRegex = regexp.MustCompile(`(?i)(\d{1,2})h(\d{2})(?:m(?:(\d{2})s(\d{3})?)?)?`)

type letterTime struct {
	start, end       int
	hour, minute     int
	second, millis   int
	hasSecond, hasMs bool
}

// findLetterTimes returns the letter-separated times in s. A match glued to
// another digit on either side is ignored.
func findLetterTimes(s string) []letterTime {
	var out []letterTime
	for _, m := range letterTimeRegex.FindAllStringSubmatchIndex(s, -1) {
		start, end := m[0], m[1]
		if start > 0 && isDigit(s[start-1]) {
			continue
		}
		if end < len(s) && isDigit(s[end]) {
			continue
		}
		lt := letterTime{
			start:  start,
			end:    end,
			hour:   atoi(s[m[2]:m[3]]),
			minute: atoi(s[m[4]:m[5]]),
		}
		if m[6] >= 0 {
			lt.second, lt.hasSecond = atoi(s[m[6]:m[7]]), true
		}
		if m[8] >= 0 {
			lt.millis, lt.hasMs = atoi(s[m[8]:m[9]]), true
		}
		if !isValidHourMinute(lt.hour, lt.minute) || !IsValidSeconds(lt.second) {
			continue
		}
		out = append(out, lt)
	}
	return out
}

func scanLetterTimes(c *scanContext) {
	for _, lt := range findLetterTimes(c.input) {
		if c.overlaps(lt.start, lt.end) {
			continue
		}
		p := PrecisionMinute
		switch {
		case lt.hasMs:
			p = PrecisionMillisecond
		case lt.hasSecond:
			p = PrecisionSecond
		}
		ts, ok := newClock(TypeLetterTime, lt.hour, lt.minute, lt.second, lt.millis, p, lt.start, lt.end, 0.85)
		if ok {
			c.emit(Resolved{Value: ts})
		}
	}
}

var monthNumbers = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

var ordinalSuffixes = map[string]bool{"st": true, "nd": true, "rd": true, "th": true}

// monthGapChars may sit between a month name and its numbers, at most
// maxMonthGap of them.
const (
	monthGapChars = " ._-,"
	maxMonthGap   = 2
)

type word struct {
	start, end int
	text       string
}

// letterWords returns the maximal ASCII letter runs of s, case folded.
func letterWords(s string, caser cases.Caser) []word {
	var out []word
	for i := 0; i < len(s); {
		if !isASCIILetter(s[i]) {
			i++
			continue
		}
		start := i
		for i < len(s) && isASCIILetter(s[i]) {
			i++
		}
		out = append(out, word{start: start, end: i, text: caser.String(s[start:i])})
	}
	return out
}

// scanMonthNames reads dates written with an English month name:
// 15 March 2024, 15th-Mar-2024, March 15, 2024, 2024-Mar-15, and the
// month-precision forms March 2024 and 2024 Mar.
func scanMonthNames(c *scanContext) {
	words := letterWords(c.input, cases.Lower(language.English))
	for _, w := range words {
		month, ok := monthNumbers[w.text]
		if !ok || c.overlaps(w.start, w.end) {
			continue
		}
		if cand, ok := c.monthNameCandidate(w, month, words); ok {
			c.emit(cand)
		}
	}
}

func (c *scanContext) monthNameCandidate(w word, month int, words []word) (Candidate, bool) {
	before, hasBefore := c.seqBefore(w.start, words)
	after, afterEnd, hasAfter := c.seqAfter(w.end, words)

	// D Mon YYYY
	if hasBefore && hasAfter && before.Len() <= 2 && after.Len() == 4 {
		if ts, ok := newDate(TypeMonthNameDate, int(after.Value), month, int(before.Value), before.Start, after.End, 0.9); ok {
			return Resolved{Value: ts}, true
		}
	}
	// Mon D YYYY
	if hasAfter && after.Len() <= 2 {
		if year, _, ok := c.seqAfter(afterEnd, words); ok && year.Len() == 4 {
			if ts, ok := newDate(TypeMonthNameDate, int(year.Value), month, int(after.Value), w.start, year.End, 0.9); ok {
				return Resolved{Value: ts}, true
			}
		}
	}
	// YYYY Mon D
	if hasBefore && hasAfter && before.Len() == 4 && after.Len() <= 2 {
		if ts, ok := newDate(TypeMonthNameDate, int(before.Value), month, int(after.Value), before.Start, afterEnd, 0.9); ok {
			return Resolved{Value: ts}, true
		}
	}
	if hasAfter && after.Len() == 4 {
		if ts, ok := newMonth(TypeMonthNameMonth, int(after.Value), month, w.start, after.End, 0.7); ok {
			return Resolved{Value: ts}, true
		}
	}
	if hasBefore && before.Len() == 4 {
		if ts, ok := newMonth(TypeMonthNameMonth, int(before.Value), month, before.Start, w.end, 0.7); ok {
			return Resolved{Value: ts}, true
		}
	}
	return nil, false
}

// seqBefore finds the unconsumed digit run ending just before pos, allowing
// a short separator gap and an ordinal suffix (15th March).
func (c *scanContext) seqBefore(pos int, words []word) (DigitSequence, bool) {
	i := pos
	for gap := 0; gap < maxMonthGap && i > 0 && strings.IndexByte(monthGapChars, c.input[i-1]) >= 0; gap++ {
		i--
	}
	for _, w := range words {
		if w.end == i && ordinalSuffixes[w.text] && w.start > 0 && isDigit(c.input[w.start-1]) {
			i = w.start
			break
		}
	}
	for _, seq := range c.seqs {
		if seq.End == i && !c.overlaps(seq.Start, seq.End) {
			return seq, true
		}
	}
	return DigitSequence{}, false
}

// seqAfter finds the unconsumed digit run starting just after pos. end
// includes a trailing ordinal suffix when there is one.
func (c *scanContext) seqAfter(pos int, words []word) (seq DigitSequence, end int, ok bool) {
	i := pos
	for gap := 0; gap < maxMonthGap && i < len(c.input) && strings.IndexByte(monthGapChars, c.input[i]) >= 0; gap++ {
		i++
	}
	for _, s := range c.seqs {
		if s.Start != i || c.overlaps(s.Start, s.End) {
			continue
		}
		end = s.End
		for _, w := range words {
			if w.start == s.End && ordinalSuffixes[w.text] {
				end = w.end
				break
			}
		}
		return s, end, true
	}
	return DigitSequence{}, 0, false
}
