package aggregate

import (
	"shitdash/internal/domain"
	"shitdash/internal/ranking"
	"shitdash/internal/stats"
	"shitdash/internal/timeseries"
	"shitdash/internal/window"
)

// categoryLabels name the trading-system payout classifications for the
// composition chart.
var categoryLabels = map[domain.TradeCategory]string{
	domain.CategoryDirect:     "direct",
	domain.CategoryReferralL1: "referralL1",
	domain.CategoryReferralL2: "referralL2",
	domain.CategoryLuckyDraw:  "luckyDraw",
}

// tsTotals holds the scalar KPIs of one window's trading-system activity.
type tsTotals struct {
	tokens, revenue, discord float64
	participants             float64
	meanTrades, medianTrades float64
	avgIntervalMinutes       float64
}

// ComputeTS aggregates the trading-system domain. TS business days run
// 08:00→08:00 with open-interval windows. The Discord reward collection is
// optional and degrades to 0.
func ComputeTS(snap *domain.Snapshot, p window.Period) *domain.TSResult {
	tradeTS := func(r *domain.TradeRecord) string { return r.Timestamp }
	tradeAddr := func(r *domain.TradeRecord) string { return r.Address }
	discordTS := func(r *domain.DiscordRewardRecord) string { return r.Timestamp }

	cur := filterWindow(snap.Trades, tradeTS, p.Current)
	prev := filterWindow(snap.Trades, tradeTS, p.Previous)
	curDiscord := filterWindow(snap.DiscordRewards, discordTS, p.Current)
	prevDiscord := filterWindow(snap.DiscordRewards, discordTS, p.Previous)

	curT := tsWindowTotals(cur, curDiscord)
	prevT := tsWindowTotals(prev, prevDiscord)

	m := domain.MetricSet{}
	m.Set("totalTokens", curT.tokens, prevT.tokens)
	m.Set("totalRevenue", curT.revenue, prevT.revenue)
	m.Set("emissionEfficiency",
		stats.SafeRatio(curT.tokens, curT.revenue),
		stats.SafeRatio(prevT.tokens, prevT.revenue))
	m.Set("participants", curT.participants, prevT.participants)
	m.Set("meanTradesPerAddress", curT.meanTrades, prevT.meanTrades)
	m.Set("medianTradesPerAddress", curT.medianTrades, prevT.medianTrades)
	m.Set("avgIntervalMinutes", curT.avgIntervalMinutes, prevT.avgIntervalMinutes)
	m.Set("discordRewards", curT.discord, prevT.discord)

	tradesDaily := timeseries.NewBuilder()
	for _, r := range cur {
		t, err := window.ParseTimestamp(r.Timestamp)
		if err != nil {
			continue
		}
		date := window.AdjustedDate(t, boundaryTS)
		tradesDaily.Add(date, "tokens", abs(r.TokenAmount))
		tradesDaily.Add(date, "revenue", abs(r.Revenue))
	}

	discordDaily := timeseries.NewBuilder()
	for _, r := range curDiscord {
		t, err := window.ParseTimestamp(r.Timestamp)
		if err != nil {
			continue
		}
		discordDaily.Add(window.AdjustedDate(t, boundaryTS), "discord", abs(r.Amount))
	}

	// Discord rewards come from a separate collection; dates present in one
	// sub-series but not the other still align by date key.
	daily := timeseries.Align(tradesDaily.Series(), discordDaily.Series())

	composition := make([]domain.CompositionSlice, 0, len(categoryLabels))
	byCat := make(map[domain.TradeCategory]float64)
	for _, r := range cur {
		byCat[r.Category] += abs(r.TokenAmount)
	}
	for _, cat := range []domain.TradeCategory{
		domain.CategoryDirect, domain.CategoryReferralL1,
		domain.CategoryReferralL2, domain.CategoryLuckyDraw,
	} {
		composition = append(composition, domain.CompositionSlice{
			Label: categoryLabels[cat],
			Value: byCat[cat],
		})
	}

	return &domain.TSResult{
		Metrics:           m,
		Daily:             daily,
		CumulativeRevenue: timeseries.Cumulative(daily, "revenue", "cumulativeRevenue"),
		TopReceivers: ranking.TopN(cur, tradeAddr,
			func(r *domain.TradeRecord) float64 { return abs(r.TokenAmount) },
			func(r *domain.TradeRecord) float64 { return 1 },
			ranking.DefaultTopN),
		Composition: composition,
	}
}

func tsWindowTotals(trades []*domain.TradeRecord, discord []*domain.DiscordRewardRecord) tsTotals {
	var t tsTotals
	addrs := make([]string, 0, len(trades))
	for _, r := range trades {
		t.tokens += abs(r.TokenAmount)
		t.revenue += abs(r.Revenue)
		addrs = append(addrs, r.Address)
	}
	t.participants = distinct(addrs)
	t.meanTrades, t.medianTrades = stats.MeanMedianPerAddress(addrs)
	t.avgIntervalMinutes = stats.AvgIntervalMinutes(eventTimes(trades,
		func(r *domain.TradeRecord) string { return r.Address },
		func(r *domain.TradeRecord) string { return r.Timestamp }))
	for _, r := range discord {
		t.discord += abs(r.Amount)
	}
	return t
}
