package aggregate

import (
	"testing"

	"shitdash/internal/domain"
	"shitdash/internal/window"
)

func defiPeriod(t *testing.T, start, end string) window.Period {
	t.Helper()
	p, err := window.MakePeriod(start, end, boundaryDeFi)
	if err != nil {
		t.Fatalf("MakePeriod: %v", err)
	}
	return p
}

func TestComputeDeFi_VolumesFromSignedChanges(t *testing.T) {
	// QuoteChange signs are pool deltas; direction lives in Kind, so volumes
	// must take magnitudes.
	snap := &domain.Snapshot{
		Liquidity: []*domain.LiquidityRecord{
			{Timestamp: "2024-03-05 09:00:00", Address: "walletA", QuoteChange: 100, Kind: domain.LiquidityBuy},
			{Timestamp: "2024-03-05 10:00:00", Address: "walletB", QuoteChange: -40, Kind: domain.LiquiditySell},
			{Timestamp: "2024-03-06 09:00:00", Address: "walletC", QuoteChange: 200, Kind: domain.LiquidityAdd},
			{Timestamp: "2024-03-06 10:00:00", Address: "walletC", QuoteChange: -50, Kind: domain.LiquidityRemove},
		},
	}
	p := defiPeriod(t, "2024-03-04", "2024-03-10")

	res := ComputeDeFi(snap, p)

	checks := map[string]float64{
		"buyVolume":        100,
		"sellVolume":       40,
		"netFlow":          60,
		"addedLiquidity":   200,
		"removedLiquidity": 50,
		"tradeCount":       2,
		"uniqueTraders":    2,
	}
	for name, want := range checks {
		if got := res.Metrics[name]; got.Current != want {
			t.Errorf("%s = %f, want %f", name, got.Current, want)
		}
	}

	// Add/remove addresses never enter the traders ranking.
	for _, e := range res.TopTraders {
		if e.Address == "walletC" {
			t.Errorf("liquidity provider walletC must not rank as a trader")
		}
	}
	if len(res.TopTraders) != 2 || res.TopTraders[0].Address != "walletA" {
		t.Errorf("top traders = %+v", res.TopTraders)
	}
}

func TestComputeDeFi_PriceDailyAverages(t *testing.T) {
	snap := &domain.Snapshot{
		Prices: []*domain.PricePoint{
			{Timestamp: "2024-03-05 09:00:00", Price: 2},
			{Timestamp: "2024-03-05 15:00:00", Price: 4},
			{Timestamp: "2024-03-06 09:00:00", Price: 6},
		},
	}
	p := defiPeriod(t, "2024-03-04", "2024-03-10")

	res := ComputeDeFi(snap, p)

	if got := res.Metrics["avgPrice"]; got.Current != 4 {
		t.Errorf("avgPrice = %f, want 4", got.Current)
	}
	if len(res.PriceDaily) != 2 {
		t.Fatalf("expected 2 price points, got %d", len(res.PriceDaily))
	}
	if res.PriceDaily[0].Values["avgPrice"] != 3 {
		t.Errorf("2024-03-05 avg price = %f, want 3", res.PriceDaily[0].Values["avgPrice"])
	}
	if res.PriceDaily[1].Values["avgPrice"] != 6 {
		t.Errorf("2024-03-06 avg price = %f, want 6", res.PriceDaily[1].Values["avgPrice"])
	}
}

func TestComputeDeFi_NoPriceFeedDegradesToZero(t *testing.T) {
	snap := &domain.Snapshot{
		Liquidity: []*domain.LiquidityRecord{
			{Timestamp: "2024-03-05 09:00:00", Address: "walletA", QuoteChange: 10, Kind: domain.LiquidityBuy},
		},
	}
	p := defiPeriod(t, "2024-03-04", "2024-03-10")

	res := ComputeDeFi(snap, p)
	if got := res.Metrics["avgPrice"]; got.Current != 0 {
		t.Errorf("avgPrice without a price feed = %f, want 0", got.Current)
	}
	if res.PriceDaily != nil {
		t.Errorf("PriceDaily without a price feed = %v, want nil", res.PriceDaily)
	}
}
