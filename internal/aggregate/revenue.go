package aggregate

import (
	"shitdash/internal/domain"
	"shitdash/internal/ranking"
	"shitdash/internal/stats"
	"shitdash/internal/timeseries"
	"shitdash/internal/window"
)

// revenueSources in composition order.
var revenueSources = []domain.RevenueSource{
	domain.RevenueSourcePOS, domain.RevenueSourceTS, domain.RevenueSourceOther,
}

// revenueTotals holds the scalar KPIs of one window's revenue entries.
type revenueTotals struct {
	revenue, cost float64
	txCount       float64
	uniquePayers  float64
}

// ComputeRevenue aggregates the revenue domain over ordinary midnight civil
// days. ROI is revenue/cost, defined as 0 when cost is 0.
func ComputeRevenue(snap *domain.Snapshot, p window.Period) *domain.RevenueResult {
	revTS := func(r *domain.RevenueRecord) string { return r.Timestamp }
	revAddr := func(r *domain.RevenueRecord) string { return r.Address }

	cur := filterWindow(snap.Revenue, revTS, p.Current)
	prev := filterWindow(snap.Revenue, revTS, p.Previous)

	curT := revenueWindowTotals(cur)
	prevT := revenueWindowTotals(prev)

	m := domain.MetricSet{}
	m.Set("totalRevenue", curT.revenue, prevT.revenue)
	m.Set("totalCost", curT.cost, prevT.cost)
	m.Set("roi",
		stats.SafeRatio(curT.revenue, curT.cost),
		stats.SafeRatio(prevT.revenue, prevT.cost))
	m.Set("txCount", curT.txCount, prevT.txCount)
	m.Set("uniquePayers", curT.uniquePayers, prevT.uniquePayers)

	b := timeseries.NewBuilder()
	bySource := make(map[domain.RevenueSource]float64)
	for _, r := range cur {
		t, err := window.ParseTimestamp(r.Timestamp)
		if err != nil {
			continue
		}
		date := window.AdjustedDate(t, boundaryRevenue)
		b.Add(date, "total", abs(r.Amount))
		b.Add(date, string(sourceOrOther(r.Source)), abs(r.Amount))
		bySource[sourceOrOther(r.Source)] += abs(r.Amount)
	}
	daily := b.Series()

	composition := make([]domain.CompositionSlice, 0, len(revenueSources))
	for _, src := range revenueSources {
		composition = append(composition, domain.CompositionSlice{
			Label: string(src),
			Value: bySource[src],
		})
	}

	return &domain.RevenueResult{
		Metrics:    m,
		Daily:      daily,
		Cumulative: timeseries.Cumulative(daily, "total", "cumulativeRevenue"),
		TopPayers: ranking.TopN(cur, revAddr,
			func(r *domain.RevenueRecord) float64 { return abs(r.Amount) },
			func(r *domain.RevenueRecord) float64 { return 1 },
			ranking.DefaultTopN),
		Composition: composition,
	}
}

// sourceOrOther folds unknown classifications into "other".
func sourceOrOther(s domain.RevenueSource) domain.RevenueSource {
	switch s {
	case domain.RevenueSourcePOS, domain.RevenueSourceTS:
		return s
	default:
		return domain.RevenueSourceOther
	}
}

func revenueWindowTotals(records []*domain.RevenueRecord) revenueTotals {
	var t revenueTotals
	addrs := make([]string, 0, len(records))
	for _, r := range records {
		t.revenue += abs(r.Amount)
		t.cost += abs(r.Cost)
		t.txCount++
		addrs = append(addrs, r.Address)
	}
	t.uniquePayers = distinct(addrs)
	return t
}
