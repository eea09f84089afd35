package aggregate

import (
	"shitdash/internal/domain"
	"shitdash/internal/ranking"
	"shitdash/internal/stats"
	"shitdash/internal/timeseries"
	"shitdash/internal/window"
)

// claimTotals holds the scalar KPIs of one window's shit-code claims.
type claimTotals struct {
	claimed, claims          float64
	uniqueClaimers           float64
	meanClaims, medianClaims float64
}

// ComputeShitCode aggregates the shit-code claim domain over ordinary
// midnight civil days.
func ComputeShitCode(snap *domain.Snapshot, p window.Period) *domain.ClaimResult {
	claimTS := func(r *domain.ClaimRecord) string { return r.Timestamp }
	claimAddr := func(r *domain.ClaimRecord) string { return r.Address }

	cur := filterWindow(snap.Claims, claimTS, p.Current)
	prev := filterWindow(snap.Claims, claimTS, p.Previous)

	curT := claimWindowTotals(cur)
	prevT := claimWindowTotals(prev)

	m := domain.MetricSet{}
	m.Set("totalClaimed", curT.claimed, prevT.claimed)
	m.Set("claimCount", curT.claims, prevT.claims)
	m.Set("uniqueClaimers", curT.uniqueClaimers, prevT.uniqueClaimers)
	m.Set("avgClaim",
		stats.SafeRatio(curT.claimed, curT.claims),
		stats.SafeRatio(prevT.claimed, prevT.claims))
	m.Set("meanClaimsPerAddress", curT.meanClaims, prevT.meanClaims)
	m.Set("medianClaimsPerAddress", curT.medianClaims, prevT.medianClaims)

	b := timeseries.NewBuilder()
	for _, r := range cur {
		t, err := window.ParseTimestamp(r.Timestamp)
		if err != nil {
			continue
		}
		date := window.AdjustedDate(t, boundaryShitCode)
		b.Add(date, "claimed", abs(r.Amount))
		b.Add(date, "claims", 1)
	}
	daily := b.Series()

	return &domain.ClaimResult{
		Metrics:    m,
		Daily:      daily,
		Cumulative: timeseries.Cumulative(daily, "claimed", "cumulativeClaimed"),
		TopClaimers: ranking.TopN(cur, claimAddr,
			func(r *domain.ClaimRecord) float64 { return abs(r.Amount) },
			func(r *domain.ClaimRecord) float64 { return 1 },
			ranking.DefaultTopN),
	}
}

func claimWindowTotals(records []*domain.ClaimRecord) claimTotals {
	var t claimTotals
	addrs := make([]string, 0, len(records))
	for _, r := range records {
		t.claimed += abs(r.Amount)
		t.claims++
		addrs = append(addrs, r.Address)
	}
	t.uniqueClaimers = distinct(addrs)
	t.meanClaims, t.medianClaims = stats.MeanMedianPerAddress(addrs)
	return t
}
