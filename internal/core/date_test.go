package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"05 08 2025", true},
		{"31 12 2024", true},
		{"5 08 2025", false},
		{"05 8 2025", false},
		{"05/08/2025", false},
		{"31 02 2025", false},
		{"05 08 25", false},
		{"05 08 20251", false},
		{"", false},
	}
	for _, tc := range cases {
		_, ok := ParseDate(tc.in, time.UTC)
		if ok != tc.ok {
			t.Fatalf("%q: ok=%v, want %v", tc.in, ok, tc.ok)
		}
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, time.January, 2, 23, 59, 0, 0, time.UTC)
	if got := FormatDate(d); got != "02 01 2025" {
		t.Fatalf("got %q", got)
	}
}

func TestMatchesMonthYear(t *testing.T) {
	cases := []struct {
		token string
		match bool
	}{
		{"05 08 2025", true},
		{"31 08 2025", true},
		{"99 08 2025", true}, // no day validation
		{"05 8 2025", false},
		{"05 08 2024", false},
		{"05 09 2025", false},
		{"05 08", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := MatchesMonthYear(tc.token, "08", "2025"); got != tc.match {
			t.Fatalf("%q: got %v", tc.token, got)
		}
	}
}

func TestMonthYearOfTruncates(t *testing.T) {
	m, y := MonthYearOf("01 0")
	if m != "0" || y != "" {
		t.Fatalf("got month=%q year=%q", m, y)
	}
}

func TestCompareDateTokens(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"01 01 2025", "31 12 2024", 1},
		{"02 01 2025", "01 06 2025", -1},
		{"10 06 2025", "09 06 2025", 1},
		{"01 06 2025", "01 06 2025", 0},
	}
	for _, tc := range cases {
		if got := CompareDateTokens(tc.a, tc.b); got != tc.want {
			t.Fatalf("%q vs %q: got %d want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
