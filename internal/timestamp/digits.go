package timestamp

import "strconv"

// DigitSequence is a maximal run of ASCII digits in a string.
type DigitSequence struct {
	Digits      string `json:"digits"`
	Value       int64  `json:"value"` // -1 when the run overflows int64
	Start       int    `json:"start"`
	End         int    `json:"end"`
	LeadingZero bool   `json:"leading_zero"`
}

// Len returns the number of digits in the run.
func (d DigitSequence) Len() int {
	return len(d.Digits)
}

// pair returns the two-digit number at offset i of the run.
func (d DigitSequence) pair(i int) int {
	return atoi(d.Digits[i : i+2])
}

// ExtractDigitSequences scans s once left to right and returns every maximal
// digit run in order. Offsets are byte offsets into s.
func ExtractDigitSequences(s string) []DigitSequence {
	var seqs []DigitSequence
	for i := 0; i < len(s); {
		if !isDigit(s[i]) {
			i++
			continue
		}
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		digits := s[start:i]
		value, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			value = -1
		}
		seqs = append(seqs, DigitSequence{
			Digits:      digits,
			Value:       value,
			Start:       start,
			End:         i,
			LeadingZero: len(digits) > 1 && digits[0] == '0',
		})
	}
	return seqs
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
