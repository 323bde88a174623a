package timestamp

import "time"

// Component range checks. Day is not month-aware; calendar validity is
// checked when a date is assembled.

// IsValidYear accepts 1970-2100, or 0-99 when allowTwoDigit is set.
func IsValidYear(v int, allowTwoDigit bool) bool {
	if allowTwoDigit {
		return v >= 0 && v <= 99
	}
	return v >= 1970 && v <= 2100
}

func IsValidMonth(v int) bool { return v >= 1 && v <= 12 }
func IsValidDay(v int) bool { return v >= 1 && v <= 31 }
func IsValidHours(v int) bool { return v >= 0 && v <= 23 }
func IsValidMinutes(v int) bool { return v >= 0 && v <= 59 }
func IsValidSeconds(v int) bool { return v >= 0 && v <= 59 }
func IsValidMillisecond(v int) bool { return v >= 0 && v <= 999 }
func isValidClock(h, m, s int) bool { return IsValidHours(h) && IsValidMinutes(m) && IsValidSeconds(s) }
func isValidHourMinute(h, m int) bool { return IsValidHours(h) && IsValidMinutes(m) }

// isCalendarDate rejects assemblies like April 31 or February 30.
func isCalendarDate(y, m, d int) bool {
	if !IsValidYear(y, false) || !IsValidMonth(m) || !IsValidDay(d) {
		return false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return t.Year() == y && int(t.Month()) == m && t.Day() == d
}

// ExpandYear maps a two-digit year onto 1970-2069.
func ExpandYear(yy int) int {
	if yy >= 70 {
		return 1900 + yy
	}
	return 2000 + yy
}
