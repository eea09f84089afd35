package window

import (
	"errors"
	"testing"
	"time"
)

func TestMakePeriod_RejectsInvertedRange(t *testing.T) {
	_, err := MakePeriod("2024-03-10", "2024-03-05", 0)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestMakePeriod_RejectsUnparseableDates(t *testing.T) {
	if _, err := MakePeriod("not-a-date", "2024-03-05", 0); err == nil {
		t.Errorf("expected error for bad start date")
	}
	if _, err := MakePeriod("2024-03-05", "03/10/2024", 0); err == nil {
		t.Errorf("expected error for bad end date")
	}
}

func TestMakePeriod_PreviousWindowIsEqualLengthAndAdjacent(t *testing.T) {
	// 2024-03-04..2024-03-10 is 7 days; previous must be 2024-02-26..2024-03-03.
	p, err := MakePeriod("2024-03-04", "2024-03-10", 0)
	if err != nil {
		t.Fatalf("MakePeriod: %v", err)
	}

	if p.PrevStartDate != "2024-02-26" {
		t.Errorf("expected prev start 2024-02-26, got %s", p.PrevStartDate)
	}
	if p.PrevEndDate != "2024-03-03" {
		t.Errorf("expected prev end 2024-03-03, got %s", p.PrevEndDate)
	}
	if p.Days() != 7 {
		t.Errorf("expected 7 days, got %d", p.Days())
	}
	if got, want := p.Current.Length(), p.Previous.Length(); got != want {
		t.Errorf("current and previous windows differ in length: %v vs %v", got, want)
	}
}

func TestMakePeriod_MidnightBoundaryIsInclusive(t *testing.T) {
	p, err := MakePeriod("2024-03-04", "2024-03-10", 0)
	if err != nil {
		t.Fatalf("MakePeriod: %v", err)
	}

	startOfRange := time.Date(2024, 3, 4, 0, 0, 0, 0, LocUTC8)
	lastInstant := time.Date(2024, 3, 10, 23, 59, 59, 999999999, LocUTC8)
	nextMidnight := time.Date(2024, 3, 11, 0, 0, 0, 0, LocUTC8)

	if !p.Current.Contains(startOfRange) {
		t.Errorf("inclusive window must contain midnight of the start date")
	}
	if !p.Current.Contains(lastInstant) {
		t.Errorf("inclusive window must contain the last nanosecond of the end date")
	}
	if p.Current.Contains(nextMidnight) {
		t.Errorf("inclusive window must not contain the following midnight")
	}
}

func TestMakePeriod_ShiftedBoundaryIsOpen(t *testing.T) {
	// Boundary hour 8: current runs (2024-03-04 08:00, 2024-03-11 08:00),
	// both endpoints excluded.
	p, err := MakePeriod("2024-03-04", "2024-03-10", 8)
	if err != nil {
		t.Fatalf("MakePeriod: %v", err)
	}

	boundaryStart := time.Date(2024, 3, 4, 8, 0, 0, 0, LocUTC8)
	boundaryEnd := time.Date(2024, 3, 11, 8, 0, 0, 0, LocUTC8)
	inside := time.Date(2024, 3, 4, 8, 0, 1, 0, LocUTC8)

	if p.Current.Contains(boundaryStart) {
		t.Errorf("open window must exclude the exact start boundary instant")
	}
	if p.Current.Contains(boundaryEnd) {
		t.Errorf("open window must exclude the exact end boundary instant")
	}
	if !p.Current.Contains(inside) {
		t.Errorf("open window must contain an instant just after the start boundary")
	}

	// A boundary instant belongs to neither the current nor the previous window.
	if p.Previous.Contains(boundaryStart) {
		t.Errorf("boundary instant leaked into the previous window")
	}
}

func TestMakePeriod_NoonBoundaryWindows(t *testing.T) {
	p, err := MakePeriod("2024-05-01", "2024-05-01", 12)
	if err != nil {
		t.Fatalf("MakePeriod: %v", err)
	}

	wantStart := time.Date(2024, 5, 1, 12, 0, 0, 0, LocUTC8)
	wantEnd := time.Date(2024, 5, 2, 12, 0, 0, 0, LocUTC8)
	if !p.Current.Start.Equal(wantStart) || !p.Current.End.Equal(wantEnd) {
		t.Errorf("expected window [%v, %v], got [%v, %v]", wantStart, wantEnd, p.Current.Start, p.Current.End)
	}
	if !p.Previous.End.Equal(wantStart) {
		t.Errorf("previous window must end where the current one starts, got %v", p.Previous.End)
	}
}

func TestAdjustedDate(t *testing.T) {
	cases := []struct {
		ts       string
		boundary int
		want     string
	}{
		{"2024-05-02 11:00:00", 12, "2024-05-01"},
		{"2024-05-02 13:00:00", 12, "2024-05-02"},
		{"2024-05-02 12:00:00", 12, "2024-05-02"},
		{"2024-05-02 07:59:59", 8, "2024-05-01"},
		{"2024-05-02 08:00:00", 8, "2024-05-02"},
		{"2024-05-02 00:00:00", 0, "2024-05-02"},
	}
	for _, c := range cases {
		parsed, err := ParseTimestamp(c.ts)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", c.ts, err)
		}
		if got := AdjustedDate(parsed, c.boundary); got != c.want {
			t.Errorf("AdjustedDate(%s, %d) = %s, want %s", c.ts, c.boundary, got, c.want)
		}
	}
}

func TestParseTimestamp_AcceptedLayouts(t *testing.T) {
	inputs := []string{
		"2024-01-02 09:30:00",
		"2024-01-02T09:30:00",
		"2024-01-02 09:30",
		"2024-01-02T09:30",
	}
	want := time.Date(2024, 1, 2, 9, 30, 0, 0, LocUTC8)
	for _, in := range inputs {
		got, err := ParseTimestamp(in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q): %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseTimestamp("02/01/2024 09:30"); err == nil {
		t.Errorf("expected error for unrecognized layout")
	}
}

func TestPrevDate(t *testing.T) {
	if got := PrevDate("2024-03-01"); got != "2024-02-29" {
		t.Errorf("PrevDate(2024-03-01) = %s, want 2024-02-29 (leap year)", got)
	}
	if got := PrevDate("garbage"); got != "" {
		t.Errorf("PrevDate(garbage) = %q, want empty", got)
	}
}

func TestDefaultRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 3, 0, 0, 0, time.UTC) // 11:00 UTC+8
	start, end := DefaultRange(now)
	if start != "2024-06-08" || end != "2024-06-15" {
		t.Errorf("DefaultRange = (%s, %s), want (2024-06-08, 2024-06-15)", start, end)
	}
}
