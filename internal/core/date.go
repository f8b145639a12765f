package core

import (
	"strings"
	"time"
)

const (
	// DateLayout is the Go layout of the "dd MM yyyy" date token.
	DateLayout = "02 01 2006"
	// TimeLayout is the Go layout of the "hh:mm AM/PM" time token.
	TimeLayout = "03:04 PM"
)

// FormatDate renders t as a date token.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTime renders t as a time token.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// ParseDate parses a date token into a calendar date in loc.
// ok is false for anything that is not a well-formed zero-padded token.
func ParseDate(token string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, token, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MonthYearOf slices the month (characters 4-5) and year (characters 7-10)
// out of a date token the way SQL substr does: 1-based, rune-oriented and
// truncated at the end of the string. No calendar validation happens here.
func MonthYearOf(token string) (month, year string) {
	return substr(token, 4, 2), substr(token, 7, 4)
}

// MatchesMonthYear reports whether the token's month and year slices equal
// the given "MM" and "yyyy" strings exactly.
func MatchesMonthYear(token, month, year string) bool {
	m, y := MonthYearOf(token)
	return m == month && y == year
}

func substr(s string, start, length int) string {
	r := []rune(s)
	from := start - 1
	if from >= len(r) || length <= 0 {
		return ""
	}
	to := from + length
	if to > len(r) {
		to = len(r)
	}
	return string(r[from:to])
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CompareDateTokens orders tokens by their year, month and day slices,
// compared as text in that order. It returns -1, 0 or +1. This is the storage
// ordering; malformed tokens get no special treatment.
func CompareDateTokens(a, b string) int {
	for _, part := range [][2]int{{7, 4}, {4, 2}, {1, 2}} {
		x, y := substr(a, part[0], part[1]), substr(b, part[0], part[1])
		if c := strings.Compare(x, y); c != 0 {
			return c
		}
	}
	return 0
}
