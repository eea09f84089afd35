// Package window computes current/previous period windows with per-domain
// civil day boundaries, and parses the UTC+8 timestamps the log API emits.
package window

import (
	"errors"
	"fmt"
	"time"
)

// LocUTC8 is the civil time zone of every record timestamp.
var LocUTC8 = time.FixedZone("UTC+8", 8*60*60)

// DateLayout is the canonical calendar-date key used for bucketing and
// range inputs.
const DateLayout = "2006-01-02"

// ErrInvalidRange is returned when the selected end date precedes the start
// date. Invalid ranges are rejected up front rather than silently handled.
var ErrInvalidRange = errors.New("invalid date range: end date before start date")

// timestampLayouts are the accepted record timestamp encodings, tried in order.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// ParseTimestamp parses a record timestamp string in UTC+8.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, LocUTC8); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ParseDate parses a calendar date (YYYY-MM-DD) in UTC+8.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, LocUTC8)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Window is one datetime interval. Two boundary-inclusion policies coexist
// across domains; both are intentional per-domain contracts:
//
//   - open: record counts only if strictly after Start AND strictly before
//     End. A record exactly at a boundary instant belongs to neither window.
//     Used by the boundary-shifted domains (TS 08:00, POS 12:00).
//   - inclusive: record counts if within [Start, End], where Start is
//     midnight of the first date and End is the last nanosecond of the last
//     date. Used by the midnight domains (staking, shitcode, revenue, defi).
type Window struct {
	Start     time.Time
	End       time.Time
	Inclusive bool
}

// Contains applies the window's boundary-inclusion policy.
func (w Window) Contains(t time.Time) bool {
	if w.Inclusive {
		return !t.Before(w.Start) && !t.After(w.End)
	}
	return t.After(w.Start) && t.Before(w.End)
}

// Length returns the window's duration.
func (w Window) Length() time.Duration {
	return w.End.Sub(w.Start)
}

// Period pairs the user-selected current window with the equal-length
// previous window that immediately precedes it.
type Period struct {
	Current  Window
	Previous Window

	BoundaryHour int

	// Calendar-date bounds of both windows, for bucket pre-allocation and
	// reference-date metrics.
	StartDate     string
	EndDate       string
	PrevStartDate string
	PrevEndDate   string
}

// Days returns the current window's length in calendar days.
func (p Period) Days() int {
	start, _ := ParseDate(p.StartDate)
	end, _ := ParseDate(p.EndDate)
	return int(end.Sub(start).Hours()/24) + 1
}

// MakePeriod builds the current and previous windows for an inclusive
// calendar-date range and a domain day-boundary hour (0, 8, or 12).
//
// boundaryHour 0 produces midnight-to-midnight inclusive windows; any other
// boundary produces boundary-shifted open windows: the current window runs
// from startDate at the boundary hour to endDate+1 at the boundary hour.
func MakePeriod(startDate, endDate string, boundaryHour int) (Period, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return Period{}, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return Period{}, err
	}
	if end.Before(start) {
		return Period{}, ErrInvalidRange
	}

	days := int(end.Sub(start).Hours()/24) + 1
	prevStart := start.AddDate(0, 0, -days)
	prevEnd := start.AddDate(0, 0, -1)

	p := Period{
		BoundaryHour:  boundaryHour,
		StartDate:     startDate,
		EndDate:       endDate,
		PrevStartDate: prevStart.Format(DateLayout),
		PrevEndDate:   prevEnd.Format(DateLayout),
	}

	if boundaryHour == 0 {
		p.Current = inclusiveWindow(start, end)
		p.Previous = inclusiveWindow(prevStart, prevEnd)
		return p, nil
	}

	offset := time.Duration(boundaryHour) * time.Hour
	p.Current = Window{
		Start: start.Add(offset),
		End:   end.AddDate(0, 0, 1).Add(offset),
	}
	p.Previous = Window{
		Start: prevStart.Add(offset),
		End:   start.Add(offset),
	}
	return p, nil
}

// inclusiveWindow spans startOfDay(start) through endOfDay(end).
func inclusiveWindow(start, end time.Time) Window {
	return Window{
		Start:     start,
		End:       end.AddDate(0, 0, 1).Add(-time.Nanosecond),
		Inclusive: true,
	}
}

// AdjustedDate returns the civil date a timestamp is attributed to under the
// domain's day boundary: hours before the boundary belong to the previous
// calendar day (POS 11:00 → previous date, 13:00 → same date).
func AdjustedDate(t time.Time, boundaryHour int) string {
	t = t.In(LocUTC8)
	if t.Hour() < boundaryHour {
		t = t.AddDate(0, 0, -1)
	}
	return t.Format(DateLayout)
}

// PrevDate returns the calendar date immediately before the given date key.
func PrevDate(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(DateLayout)
}

// DefaultRange returns the initial dashboard selection: the last 7 days,
// today−7 through today, in UTC+8 civil dates.
func DefaultRange(now time.Time) (startDate, endDate string) {
	now = now.In(LocUTC8)
	return now.AddDate(0, 0, -7).Format(DateLayout), now.Format(DateLayout)
}
