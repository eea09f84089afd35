// Package ranking groups filtered records by address, aggregates measures,
// and produces top-N rankings, full distributions, and duplicate-address
// audits. All outputs are deterministic for a fixed input: sorts are
// descending by the primary measure with the address as tie-break, never
// dependent on map iteration order.
package ranking

import (
	"sort"

	"shitdash/internal/domain"
	"shitdash/internal/window"
)

// DefaultTopN is the ranking truncation used by every dashboard table today.
const DefaultTopN = 10

// DefaultDuplicateThreshold flags addresses with more than this many records
// on one adjusted civil date.
const DefaultDuplicateThreshold = 1

// ShortAddress returns the presentation form of an address
// (first 4 + "..." + last 4). The full address is always kept alongside.
func ShortAddress(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[:4] + "..." + addr[len(addr)-4:]
}

// TopN groups records by address, accumulates the primary and secondary
// measures, sorts descending by primary (address ascending on ties), and
// truncates to n entries.
func TopN[T any](records []T, addr func(T) string, primary func(T) float64, secondary func(T) float64, n int) []domain.RankingEntry {
	entries := Distribution(records, addr, primary, secondary)
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Distribution is TopN without truncation.
func Distribution[T any](records []T, addr func(T) string, primary func(T) float64, secondary func(T) float64) []domain.RankingEntry {
	if len(records) == 0 {
		return nil
	}

	type agg struct {
		primary   float64
		secondary float64
	}
	byAddr := make(map[string]*agg)
	for _, r := range records {
		a := addr(r)
		entry, ok := byAddr[a]
		if !ok {
			entry = &agg{}
			byAddr[a] = entry
		}
		entry.primary += primary(r)
		if secondary != nil {
			entry.secondary += secondary(r)
		}
	}

	out := make([]domain.RankingEntry, 0, len(byAddr))
	for a, e := range byAddr {
		out = append(out, domain.RankingEntry{
			Address:   a,
			Display:   ShortAddress(a),
			Primary:   e.primary,
			Secondary: e.secondary,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Primary != out[j].Primary {
			return out[i].Primary > out[j].Primary
		}
		return out[i].Address < out[j].Address
	})
	return out
}

// DuplicateAudit groups records by (address, adjusted date) and reports
// pairs whose per-day count exceeds the threshold, sorted by date descending
// then count descending (address ascending on full ties). Records with
// unparseable timestamps are skipped.
func DuplicateAudit[T any](records []T, addr func(T) string, ts func(T) string, boundaryHour, threshold int) []domain.DuplicateEntry {
	type key struct {
		address string
		date    string
	}
	counts := make(map[key]int)
	for _, r := range records {
		t, err := window.ParseTimestamp(ts(r))
		if err != nil {
			continue
		}
		counts[key{addr(r), window.AdjustedDate(t, boundaryHour)}]++
	}

	var out []domain.DuplicateEntry
	for k, c := range counts {
		if c > threshold {
			out = append(out, domain.DuplicateEntry{Address: k.address, Date: k.date, Count: c})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Address < out[j].Address
	})
	return out
}
