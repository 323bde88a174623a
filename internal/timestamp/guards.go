package timestamp

import (
	"regexp"
	"strings"
)

// ExclusionRule suppresses a compact digit run that is statistically an
// index number, identifier or hash fragment rather than a date.
type ExclusionRule struct {
	Name string
	// Lengths lists the run lengths the rule applies to; nil means all.
	Lengths []int
	// YearOnly limits the rule to year and year-month readings; the run
	// may still be read as a time of day.
	YearOnly bool
	// Excludes reports whether seq, found in input, should be ignored.
	Excludes func(input string, seq DigitSequence) bool
}

func (r ExclusionRule) appliesTo(n int) bool {
	if len(r.Lengths) == 0 {
		return true
	}
	for _, l := range r.Lengths {
		if l == n {
			return true
		}
	}
	return false
}

// contextWindow is how far around a run the index-context rule looks.
const contextWindow = 10

// indexKeywords mark a nearby number as a counter or identifier.
var indexKeywords = []string{"idx", "index", "frame", "outline", "img"}

var decoySequences = map[string]bool{
	"123456": true,
	"654321": true,
	"012345": true,
}

// DefaultExclusionRules is the ordered rule set used when Options carries
// none. Callers extend it with append.
var DefaultExclusionRules = []ExclusionRule{
	{Name: "repeating-pair", Lengths: []int{6}, Excludes: isRepeatingPair},
	{Name: "uniform-digits", Lengths: []int{6}, Excludes: isUniformDigits},
	{Name: "sequential-decoy", Lengths: []int{6}, Excludes: isDecoySequence},
	{Name: "index-context", Lengths: []int{4, 6}, YearOnly: true, Excludes: hasIndexContext},
	{Name: "resolution-tag", Lengths: []int{3, 4}, Excludes: isResolutionTag},
	{Name: "hex-fragment", Excludes: isHexFragment},
}

func isRepeatingPair(_ string, seq DigitSequence) bool {
	d := seq.Digits
	return d[0:2] == d[2:4] && d[2:4] == d[4:6]
}

func isUniformDigits(_ string, seq DigitSequence) bool {
	return strings.Count(seq.Digits, seq.Digits[:1]) == len(seq.Digits)
}

func isDecoySequence(_ string, seq DigitSequence) bool {
	return decoySequences[seq.Digits]
}

// hasIndexContext looks contextWindow bytes either side of the run for an
// index keyword, case-insensitively.
func hasIndexContext(input string, seq DigitSequence) bool {
	lo := seq.Start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := seq.End + contextWindow
	if hi > len(input) {
		hi = len(input)
	}
	before := strings.ToLower(input[lo:seq.Start])
	after := strings.ToLower(input[seq.End:hi])
	for _, kw := range indexKeywords {
		if strings.Contains(before, kw) || strings.Contains(after, kw) {
			return true
		}
	}
	return false
}

// isResolutionTag matches 1080p, 720i, 1920x1080 and its right half.
func isResolutionTag(input string, seq DigitSequence) bool {
	if seq.End < len(input) {
		next := input[seq.End]
		if next == 'p' || next == 'P' || next == 'i' || next == 'I' {
			if seq.End+1 == len(input) || !isASCIILetter(input[seq.End+1]) {
				return true
			}
		}
		if (next == 'x' || next == 'X') && seq.End+1 < len(input) && isDigit(input[seq.End+1]) {
			return true
		}
	}
	if seq.Start >= 2 {
		prev := input[seq.Start-1]
		if (prev == 'x' || prev == 'X') && isDigit(input[seq.Start-2]) {
			return true
		}
	}
	return false
}

// isHexFragment rejects runs inside an all-hex token of 8+ characters where
// letters and digits interleave, as in hash prefixes like 3f2a20240315b9.
func isHexFragment(input string, seq DigitSequence) bool {
	lo, hi := seq.Start, seq.End
	for lo > 0 && isAlnum(input[lo-1]) {
		lo--
	}
	for hi < len(input) && isAlnum(input[hi]) {
		hi++
	}
	token := input[lo:hi]
	if len(token) < 8 || len(token) == len(seq.Digits) {
		return false
	}
	transitions := 0
	for i := 0; i < len(token); i++ {
		if !isHex(token[i]) {
			return false
		}
		if i > 0 && isDigit(token[i]) != isDigit(token[i-1]) {
			transitions++
		}
	}
	return transitions >= 2
}

func isAlnum(b byte) bool {
	return isDigit(b) || isASCIILetter(b)
}

func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// uuidRegex finds canonical 8-4-4-4-12 UUIDs; their spans are reserved
// before any matcher runs.
var uuidRegex = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

// excluded reports whether a rule drops the whole run.
func excluded(rules []ExclusionRule, input string, seq DigitSequence) bool {
	return matchRules(rules, input, seq, false)
}

// yearExcluded reports whether a year-only rule forbids reading the run as
// a year or year-month.
func yearExcluded(rules []ExclusionRule, input string, seq DigitSequence) bool {
	return matchRules(rules, input, seq, true)
}

func matchRules(rules []ExclusionRule, input string, seq DigitSequence, yearOnly bool) bool {
	for _, r := range rules {
		if r.YearOnly == yearOnly && r.appliesTo(seq.Len()) && r.Excludes(input, seq) {
			return true
		}
	}
	return false
}
