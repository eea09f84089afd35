package aggregate

import (
	"testing"

	"shitdash/internal/domain"
	"shitdash/internal/window"
)

func TestComputeTS_BoundaryAttribution(t *testing.T) {
	// TS business days run 08:00→08:00: a trade at 07:00 on 2024-03-05
	// belongs to 2024-03-04 and a trade at exactly 08:00 on the window's
	// first day sits on the open boundary and is excluded.
	snap := &domain.Snapshot{
		Trades: []*domain.TradeRecord{
			{Timestamp: "2024-03-05 07:00:00", Address: "walletA", TokenAmount: 100, Revenue: 10},
			{Timestamp: "2024-03-04 08:00:00", Address: "walletB", TokenAmount: 50, Revenue: 5},
			{Timestamp: "2024-03-04 08:00:01", Address: "walletC", TokenAmount: 20, Revenue: 2},
		},
	}
	p, err := window.MakePeriod("2024-03-04", "2024-03-10", boundaryTS)
	if err != nil {
		t.Fatalf("MakePeriod: %v", err)
	}

	res := ComputeTS(snap, p)

	if got := res.Metrics["totalTokens"]; got.Current != 120 {
		t.Errorf("totalTokens = %f, want 120 (boundary trade excluded)", got.Current)
	}
	if got := res.Metrics["participants"]; got.Current != 2 {
		t.Errorf("participants = %f, want 2", got.Current)
	}

	foundEarly := false
	for _, pt := range res.Daily {
		if pt.Date == "2024-03-04" && pt.Values["tokens"] == 120 {
			foundEarly = true
		}
		if pt.Date == "2024-03-05" {
			t.Errorf("07:00 trade must attribute to 2024-03-04, not 2024-03-05")
		}
	}
	if !foundEarly {
		t.Errorf("expected both trades bucketed on 2024-03-04, daily = %+v", res.Daily)
	}
}

func TestComputeTS_EmissionEfficiencyAndComposition(t *testing.T) {
	snap := &domain.Snapshot{
		Trades: []*domain.TradeRecord{
			{Timestamp: "2024-03-05 10:00:00", Address: "walletA", TokenAmount: 60, Revenue: 3, Category: domain.CategoryDirect},
			{Timestamp: "2024-03-05 11:00:00", Address: "walletB", TokenAmount: 40, Revenue: 2, Category: domain.CategoryReferralL1},
		},
	}
	p, err := window.MakePeriod("2024-03-04", "2024-03-10", boundaryTS)
	if err != nil {
		t.Fatalf("MakePeriod: %v", err)
	}

	res := ComputeTS(snap, p)

	// 100 tokens against 5 revenue: 20 tokens per unit.
	if got := res.Metrics["emissionEfficiency"]; got.Current != 20 {
		t.Errorf("emissionEfficiency = %f, want 20", got.Current)
	}
	if got := res.Metrics["emissionEfficiency"]; got.Previous != 0 {
		t.Errorf("emissionEfficiency with no previous trades must be 0, got %f", got.Previous)
	}

	// Composition always carries all four categories in fixed order.
	if len(res.Composition) != 4 {
		t.Fatalf("expected 4 composition slices, got %d", len(res.Composition))
	}
	wantComp := map[string]float64{"direct": 60, "referralL1": 40, "referralL2": 0, "luckyDraw": 0}
	for _, slice := range res.Composition {
		if slice.Value != wantComp[slice.Label] {
			t.Errorf("composition %s = %f, want %f", slice.Label, slice.Value, wantComp[slice.Label])
		}
	}
}

func TestComputeTS_DiscordAlignsOntoTradeDates(t *testing.T) {
	snap := &domain.Snapshot{
		Trades: []*domain.TradeRecord{
			{Timestamp: "2024-03-05 10:00:00", Address: "walletA", TokenAmount: 10, Revenue: 1},
		},
		DiscordRewards: []*domain.DiscordRewardRecord{
			{Timestamp: "2024-03-06 10:00:00", Address: "walletB", Amount: 7},
		},
	}
	p, err := window.MakePeriod("2024-03-04", "2024-03-10", boundaryTS)
	if err != nil {
		t.Fatalf("MakePeriod: %v", err)
	}

	res := ComputeTS(snap, p)
	if len(res.Daily) != 2 {
		t.Fatalf("expected union of trade and discord dates, got %d points", len(res.Daily))
	}
	// Dates present in only one sub-series still carry every field.
	if res.Daily[0].Values["discord"] != 0 || res.Daily[0].Values["tokens"] != 10 {
		t.Errorf("2024-03-05 values = %v", res.Daily[0].Values)
	}
	if res.Daily[1].Values["discord"] != 7 || res.Daily[1].Values["tokens"] != 0 {
		t.Errorf("2024-03-06 values = %v", res.Daily[1].Values)
	}

	if got := res.Metrics["discordRewards"]; got.Current != 7 {
		t.Errorf("discordRewards = %f, want 7", got.Current)
	}
}
