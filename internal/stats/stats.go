// Package stats provides the shared statistical helpers used by every
// domain aggregator. All helpers are deterministic for a fixed input and
// define division-by-zero results as 0.
package stats

import (
	"sort"
	"time"
)

// MinIntervalEvents is the minimum number of qualifying records an address
// needs before its consecutive time deltas enter the interval statistic.
// Sparse one-off participants contribute no intervals.
const MinIntervalEvents = 5

// Mean returns the arithmetic mean, 0 for an empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the median, averaging the two central values for
// even-length inputs. The input is not mutated.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// SafeRatio returns num/den, defined as 0 when den is 0.
func SafeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// PerAddressCounts groups occurrences by address and returns the per-address
// counts as float64s, ordered by address for determinism.
func PerAddressCounts(addresses []string) []float64 {
	if len(addresses) == 0 {
		return nil
	}
	counts := make(map[string]int, len(addresses))
	for _, a := range addresses {
		counts[a]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = float64(counts[k])
	}
	return out
}

// MeanMedianPerAddress computes mean and median over per-address occurrence
// counts. The statistics run over the counts, not over raw record values.
func MeanMedianPerAddress(addresses []string) (mean, median float64) {
	counts := PerAddressCounts(addresses)
	return Mean(counts), Median(counts)
}

// AvgIntervalMinutes pools consecutive inter-event deltas (in minutes)
// across every address with at least MinIntervalEvents records, then
// averages the pooled deltas. Addresses below the threshold contribute
// nothing; with no qualifying deltas the result is 0.
func AvgIntervalMinutes(eventsByAddress map[string][]time.Time) float64 {
	var deltas []float64
	for _, events := range eventsByAddress {
		if len(events) < MinIntervalEvents {
			continue
		}
		sorted := make([]time.Time, len(events))
		copy(sorted, events)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

		for i := 1; i < len(sorted); i++ {
			deltas = append(deltas, sorted[i].Sub(sorted[i-1]).Minutes())
		}
	}
	return Mean(deltas)
}

// RepeatRate returns |current ∩ prior| / |prior| over distinct addresses,
// defined as 0 when the prior date has no addresses.
func RepeatRate(current, prior []string) float64 {
	if len(prior) == 0 {
		return 0
	}
	priorSet := make(map[string]struct{}, len(prior))
	for _, a := range prior {
		priorSet[a] = struct{}{}
	}
	if len(priorSet) == 0 {
		return 0
	}

	seen := make(map[string]struct{}, len(current))
	repeats := 0
	for _, a := range current {
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		if _, ok := priorSet[a]; ok {
			repeats++
		}
	}
	return float64(repeats) / float64(len(priorSet))
}
