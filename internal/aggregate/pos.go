package aggregate

import (
	"shitdash/internal/domain"
	"shitdash/internal/ranking"
	"shitdash/internal/stats"
	"shitdash/internal/timeseries"
	"shitdash/internal/window"
)

// posTotals holds the scalar KPIs of one window's point-of-sale activity.
type posTotals struct {
	sales, orders            float64
	uniqueCustomers          float64
	meanOrders, medianOrders float64
	repeatRate               float64
}

// ComputePOS aggregates the point-of-sale domain. POS business days run
// 12:00→12:00 with open-interval windows; a sale at 11:00 belongs to the
// previous civil date.
func ComputePOS(snap *domain.Snapshot, p window.Period) *domain.POSResult {
	posTS := func(r *domain.POSRecord) string { return r.Timestamp }
	posAddr := func(r *domain.POSRecord) string { return r.Address }

	cur := filterWindow(snap.POS, posTS, p.Current)
	prev := filterWindow(snap.POS, posTS, p.Previous)

	curT := posWindowTotals(cur)
	prevT := posWindowTotals(prev)
	// Repeat rate compares the window's last business date against the date
	// before it, over the full collection: the predecessor may precede the
	// window itself.
	curT.repeatRate = posRepeatRate(snap.POS, p.EndDate)
	prevT.repeatRate = posRepeatRate(snap.POS, p.PrevEndDate)

	m := domain.MetricSet{}
	m.Set("totalSales", curT.sales, prevT.sales)
	m.Set("orderCount", curT.orders, prevT.orders)
	m.Set("uniqueCustomers", curT.uniqueCustomers, prevT.uniqueCustomers)
	m.Set("repeatRate", curT.repeatRate, prevT.repeatRate)
	m.Set("meanOrdersPerAddress", curT.meanOrders, prevT.meanOrders)
	m.Set("medianOrdersPerAddress", curT.medianOrders, prevT.medianOrders)

	b := timeseries.NewBuilder()
	heatmap, _ := timeseries.NewHeatmap(p.StartDate, p.EndDate)
	for _, r := range cur {
		t, err := window.ParseTimestamp(r.Timestamp)
		if err != nil {
			continue
		}
		date := window.AdjustedDate(t, boundaryPOS)
		b.Add(date, "sales", abs(r.Amount))
		b.Add(date, "orders", 1)
		if heatmap != nil {
			heatmap.Add(date, t.Hour(), 1)
		}
	}

	var cells []domain.HeatmapCell
	if heatmap != nil {
		cells = heatmap.Cells()
	}

	return &domain.POSResult{
		Metrics: m,
		Daily:   b.Series(),
		TopCustomers: ranking.TopN(cur, posAddr,
			func(r *domain.POSRecord) float64 { return abs(r.Amount) },
			func(r *domain.POSRecord) float64 { return 1 },
			ranking.DefaultTopN),
		Heatmap:    cells,
		Duplicates: ranking.DuplicateAudit(cur, posAddr, posTS, boundaryPOS, ranking.DefaultDuplicateThreshold),
	}
}

func posWindowTotals(records []*domain.POSRecord) posTotals {
	var t posTotals
	addrs := make([]string, 0, len(records))
	for _, r := range records {
		t.sales += abs(r.Amount)
		t.orders++
		addrs = append(addrs, r.Address)
	}
	t.uniqueCustomers = distinct(addrs)
	t.meanOrders, t.medianOrders = stats.MeanMedianPerAddress(addrs)
	return t
}

// posRepeatRate is |addresses(refDate) ∩ addresses(refDate−1)| /
// |addresses(refDate−1)| over adjusted business dates, 0 when the prior
// date has no addresses.
func posRepeatRate(records []*domain.POSRecord, refDate string) float64 {
	posTS := func(r *domain.POSRecord) string { return r.Timestamp }
	posAddr := func(r *domain.POSRecord) string { return r.Address }

	today := addressesOnDate(records, posAddr, posTS, refDate, boundaryPOS)
	prior := addressesOnDate(records, posAddr, posTS, window.PrevDate(refDate), boundaryPOS)
	return stats.RepeatRate(today, prior)
}
