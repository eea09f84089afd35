package aggregate

import (
	"sort"

	"shitdash/internal/domain"
	"shitdash/internal/ranking"
	"shitdash/internal/stats"
	"shitdash/internal/timeseries"
	"shitdash/internal/window"
)

// defiTotals holds the scalar KPIs of one window's liquidity-pool activity.
type defiTotals struct {
	buyVolume, sellVolume     float64
	added, removed            float64
	tradeCount, uniqueTraders float64
	avgPrice                  float64
}

// ComputeDeFi aggregates the liquidity-pool domain over ordinary midnight
// civil days. Change fields are signed with direction in Kind, so volume
// sums take absolute values. The price feed is optional; price metrics and
// series degrade to 0/empty without it.
func ComputeDeFi(snap *domain.Snapshot, p window.Period) *domain.DeFiResult {
	liqTS := func(r *domain.LiquidityRecord) string { return r.Timestamp }
	liqAddr := func(r *domain.LiquidityRecord) string { return r.Address }
	priceTS := func(r *domain.PricePoint) string { return r.Timestamp }

	cur := filterWindow(snap.Liquidity, liqTS, p.Current)
	prev := filterWindow(snap.Liquidity, liqTS, p.Previous)
	curPrices := filterWindow(snap.Prices, priceTS, p.Current)
	prevPrices := filterWindow(snap.Prices, priceTS, p.Previous)

	curT := defiWindowTotals(cur, curPrices)
	prevT := defiWindowTotals(prev, prevPrices)

	m := domain.MetricSet{}
	m.Set("buyVolume", curT.buyVolume, prevT.buyVolume)
	m.Set("sellVolume", curT.sellVolume, prevT.sellVolume)
	m.Set("netFlow", curT.buyVolume-curT.sellVolume, prevT.buyVolume-prevT.sellVolume)
	m.Set("addedLiquidity", curT.added, prevT.added)
	m.Set("removedLiquidity", curT.removed, prevT.removed)
	m.Set("tradeCount", curT.tradeCount, prevT.tradeCount)
	m.Set("uniqueTraders", curT.uniqueTraders, prevT.uniqueTraders)
	m.Set("avgPrice", curT.avgPrice, prevT.avgPrice)

	b := timeseries.NewBuilder()
	for _, r := range cur {
		t, err := window.ParseTimestamp(r.Timestamp)
		if err != nil {
			continue
		}
		date := window.AdjustedDate(t, boundaryDeFi)
		switch r.Kind {
		case domain.LiquidityBuy:
			b.Add(date, "buy", abs(r.QuoteChange))
			b.Add(date, "net", abs(r.QuoteChange))
		case domain.LiquiditySell:
			b.Add(date, "sell", abs(r.QuoteChange))
			b.Add(date, "net", -abs(r.QuoteChange))
		case domain.LiquidityAdd:
			b.Add(date, "added", abs(r.QuoteChange))
		case domain.LiquidityRemove:
			b.Add(date, "removed", abs(r.QuoteChange))
		}
	}

	var trades []*domain.LiquidityRecord
	for _, r := range cur {
		if r.Kind == domain.LiquidityBuy || r.Kind == domain.LiquiditySell {
			trades = append(trades, r)
		}
	}

	return &domain.DeFiResult{
		Metrics:    m,
		Daily:      b.Series(),
		PriceDaily: priceDaily(curPrices),
		TopTraders: ranking.TopN(trades, liqAddr,
			func(r *domain.LiquidityRecord) float64 { return abs(r.QuoteChange) },
			func(r *domain.LiquidityRecord) float64 { return 1 },
			ranking.DefaultTopN),
	}
}

func defiWindowTotals(records []*domain.LiquidityRecord, prices []*domain.PricePoint) defiTotals {
	var t defiTotals
	var traderAddrs []string
	for _, r := range records {
		switch r.Kind {
		case domain.LiquidityBuy:
			t.buyVolume += abs(r.QuoteChange)
			t.tradeCount++
			traderAddrs = append(traderAddrs, r.Address)
		case domain.LiquiditySell:
			t.sellVolume += abs(r.QuoteChange)
			t.tradeCount++
			traderAddrs = append(traderAddrs, r.Address)
		case domain.LiquidityAdd:
			t.added += abs(r.QuoteChange)
		case domain.LiquidityRemove:
			t.removed += abs(r.QuoteChange)
		}
	}
	t.uniqueTraders = distinct(traderAddrs)

	values := make([]float64, 0, len(prices))
	for _, p := range prices {
		values = append(values, p.Price)
	}
	t.avgPrice = stats.Mean(values)
	return t
}

// priceDaily averages price observations per civil date.
func priceDaily(prices []*domain.PricePoint) domain.TimeSeries {
	type acc struct {
		sum   float64
		count float64
	}
	byDate := make(map[string]*acc)
	for _, p := range prices {
		t, err := window.ParseTimestamp(p.Timestamp)
		if err != nil {
			continue
		}
		date := window.AdjustedDate(t, boundaryDeFi)
		a, ok := byDate[date]
		if !ok {
			a = &acc{}
			byDate[date] = a
		}
		a.sum += p.Price
		a.count++
	}
	if len(byDate) == 0 {
		return nil
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make(domain.TimeSeries, 0, len(dates))
	for _, d := range dates {
		a := byDate[d]
		out = append(out, domain.SeriesPoint{
			Date:   d,
			Values: map[string]float64{"avgPrice": a.sum / a.count},
		})
	}
	return out
}
