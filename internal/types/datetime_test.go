package types

import "testing"

func TestIsLeapYear(t *testing.T) {
	cases := map[int]bool{
		1992: true,
		1900: false,
		2000: true,
		1993: false,
		2024: true,
	}
	for year, want := range cases {
		if got := IsLeapYear(year); got != want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", year, got, want)
		}
	}
}

func TestParseDateLeapBoundary(t *testing.T) {
	if _, err := ParseDate("1992-02-29"); err != nil {
		t.Fatalf("1992-02-29 should be a valid leap day, got error: %v", err)
	}
	if _, err := ParseDate("1900-02-29"); err == nil {
		t.Fatalf("1900-02-29 should be rejected (divisible by 100, not 400)")
	}
	if _, err := ParseDate("1993-02-29"); err == nil {
		t.Fatalf("1993-02-29 should be rejected (non-leap year)")
	}
}

func TestParseDateRejectsBadSeparators(t *testing.T) {
	bad := []string{"1992/02/29", "92-02-29", "1992-2-29", "not-a-date", "1992-02-29 "}
	for _, s := range bad {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) should have failed", s)
		}
	}
}

func TestDateRoundTrip(t *testing.T) {
	dates := []string{"1970-01-01", "2001-04-10", "1957-06-13", "2024-02-29", "0001-01-01"}
	for _, s := range dates {
		days, err := ParseDate(s)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", s, err)
		}
		if got := FormatDate(days); got != s {
			t.Errorf("round trip %q: got %q", s, got)
		}
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	stamps := []string{
		"1970-01-01 00:00:00",
		"2019-06-11 12:00:00",
		"2019-07-11 11:00:00",
		"2001-04-10 23:59:59",
	}
	for _, s := range stamps {
		micros, err := ParseTimestamp(s)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", s, err)
		}
		if got := FormatTimestamp(micros); got != s {
			t.Errorf("round trip %q: got %q", s, got)
		}
	}
}

func TestParseTimestampRejectsBadTime(t *testing.T) {
	bad := []string{
		"2019-06-11T12:00:00",
		"2019-06-11 24:00:00",
		"2019-06-11 12:60:00",
		"2019-06-11 12:00:60",
		"2019-06-11 12:00",
	}
	for _, s := range bad {
		if _, err := ParseTimestamp(s); err == nil {
			t.Errorf("ParseTimestamp(%q) should have failed", s)
		}
	}
}

func TestCivilDaysRoundTrip(t *testing.T) {
	triples := [][3]int{{1970, 1, 1}, {2001, 4, 10}, {1957, 6, 13}, {1, 1, 1}, {1600, 2, 29}}
	for _, tr := range triples {
		days := daysFromCivil(tr[0], tr[1], tr[2])
		y, m, d := civilFromDays(days)
		if y != tr[0] || m != tr[1] || d != tr[2] {
			t.Errorf("civilFromDays(daysFromCivil(%v)) = (%d,%d,%d), want %v", tr, y, m, d, tr)
		}
	}
}
