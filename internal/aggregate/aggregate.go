// Package aggregate implements the period-comparison aggregation engine:
// six domain aggregators that reduce one immutable record snapshot plus a
// selected date range into current-vs-previous metrics, per-day series, and
// top-N rankings. Every aggregator is a pure function of its inputs; the
// same routine computes both windows, parameterized only by the filtered
// record set.
package aggregate

import (
	"math"
	"time"

	"shitdash/internal/window"
)

// Day-boundary hours per domain. POS business days run 12:00→12:00 and TS
// days 08:00→08:00 with open-interval windows; the rest use ordinary
// midnight-to-midnight inclusive civil days. The divergence is contractual
// per domain, not something to unify.
const (
	boundaryStaking  = 0
	boundaryTS       = 8
	boundaryPOS      = 12
	boundaryShitCode = 0
	boundaryRevenue  = 0
	boundaryDeFi     = 0
)

// filterWindow returns the records whose parsed timestamp the window
// contains. Records with unparseable timestamps are skipped.
func filterWindow[T any](records []T, ts func(T) string, w window.Window) []T {
	var out []T
	for _, r := range records {
		t, err := window.ParseTimestamp(ts(r))
		if err != nil {
			continue
		}
		if w.Contains(t) {
			out = append(out, r)
		}
	}
	return out
}

// distinct counts unique values.
func distinct(values []string) float64 {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return float64(len(set))
}

// abs is the non-negative amount guard: Σ max(0, |field|).
func abs(v float64) float64 {
	return math.Abs(v)
}

// eventTimes groups parsed record times by address for the inter-event
// interval statistic.
func eventTimes[T any](records []T, addr func(T) string, ts func(T) string) map[string][]time.Time {
	out := make(map[string][]time.Time)
	for _, r := range records {
		t, err := window.ParseTimestamp(ts(r))
		if err != nil {
			continue
		}
		out[addr(r)] = append(out[addr(r)], t)
	}
	return out
}

// addressesOnDate returns the addresses (with repetition) of records whose
// adjusted civil date equals date. It scans the full collection because the
// reference date's predecessor may fall outside the selected window.
func addressesOnDate[T any](records []T, addr func(T) string, ts func(T) string, date string, boundaryHour int) []string {
	var out []string
	for _, r := range records {
		t, err := window.ParseTimestamp(ts(r))
		if err != nil {
			continue
		}
		if window.AdjustedDate(t, boundaryHour) == date {
			out = append(out, addr(r))
		}
	}
	return out
}
