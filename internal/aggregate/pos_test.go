package aggregate

import (
	"testing"

	"shitdash/internal/domain"
	"shitdash/internal/window"
)

func posPeriod(t *testing.T, start, end string) window.Period {
	t.Helper()
	p, err := window.MakePeriod(start, end, boundaryPOS)
	if err != nil {
		t.Fatalf("MakePeriod: %v", err)
	}
	return p
}

func TestComputePOS_MetricsAndNoonAttribution(t *testing.T) {
	snap := &domain.Snapshot{
		POS: []*domain.POSRecord{
			// 11:00 on 03-06 belongs to the 03-05 business day.
			{Timestamp: "2024-03-06 11:00:00", Address: "walletA", Amount: 30},
			{Timestamp: "2024-03-05 13:00:00", Address: "walletA", Amount: 20},
			{Timestamp: "2024-03-05 14:00:00", Address: "walletB", Amount: 10},
		},
	}
	p := posPeriod(t, "2024-03-04", "2024-03-10")

	res := ComputePOS(snap, p)

	if got := res.Metrics["totalSales"]; got.Current != 60 {
		t.Errorf("totalSales = %f, want 60", got.Current)
	}
	if got := res.Metrics["orderCount"]; got.Current != 3 {
		t.Errorf("orderCount = %f, want 3", got.Current)
	}
	if got := res.Metrics["uniqueCustomers"]; got.Current != 2 {
		t.Errorf("uniqueCustomers = %f, want 2", got.Current)
	}

	// All three orders land on the 2024-03-05 business day.
	if len(res.Daily) != 1 || res.Daily[0].Date != "2024-03-05" {
		t.Fatalf("expected single bucket on 2024-03-05, got %+v", res.Daily)
	}
	if res.Daily[0].Values["sales"] != 60 || res.Daily[0].Values["orders"] != 3 {
		t.Errorf("daily values = %v", res.Daily[0].Values)
	}
}

func TestComputePOS_RepeatRateUsesFullCollection(t *testing.T) {
	// walletA buys on the business date before the window start and again on
	// the window's last date; the repeat rate must see the out-of-window day.
	snap := &domain.Snapshot{
		POS: []*domain.POSRecord{
			{Timestamp: "2024-03-09 13:00:00", Address: "walletA", Amount: 5},
			{Timestamp: "2024-03-09 14:00:00", Address: "walletB", Amount: 5},
			{Timestamp: "2024-03-10 13:00:00", Address: "walletA", Amount: 5},
		},
	}
	p := posPeriod(t, "2024-03-10", "2024-03-10")

	res := ComputePOS(snap, p)
	// Prior date 2024-03-09 has {walletA, walletB}; 2024-03-10 repeats only
	// walletA: 1/2.
	if got := res.Metrics["repeatRate"]; got.Current != 0.5 {
		t.Errorf("repeatRate = %f, want 0.5", got.Current)
	}
}

func TestComputePOS_HeatmapIsDense(t *testing.T) {
	snap := &domain.Snapshot{
		POS: []*domain.POSRecord{
			{Timestamp: "2024-03-05 13:00:00", Address: "walletA", Amount: 20},
			{Timestamp: "2024-03-05 13:30:00", Address: "walletB", Amount: 10},
		},
	}
	p := posPeriod(t, "2024-03-04", "2024-03-06")

	res := ComputePOS(snap, p)
	if len(res.Heatmap) != 3*24 {
		t.Fatalf("expected %d heatmap cells, got %d", 3*24, len(res.Heatmap))
	}
	for _, c := range res.Heatmap {
		want := 0.0
		if c.Date == "2024-03-05" && c.Hour == 13 {
			want = 2
		}
		if c.Value != want {
			t.Errorf("cell (%s, %d) = %f, want %f", c.Date, c.Hour, c.Value, want)
		}
	}
}

func TestComputePOS_DuplicateAudit(t *testing.T) {
	snap := &domain.Snapshot{
		POS: []*domain.POSRecord{
			{Timestamp: "2024-03-05 13:00:00", Address: "walletA", Amount: 1},
			{Timestamp: "2024-03-05 15:00:00", Address: "walletA", Amount: 1},
			// 11:00 next morning still counts toward the 03-05 business day.
			{Timestamp: "2024-03-06 11:00:00", Address: "walletA", Amount: 1},
			{Timestamp: "2024-03-05 16:00:00", Address: "walletB", Amount: 1},
		},
	}
	p := posPeriod(t, "2024-03-04", "2024-03-10")

	res := ComputePOS(snap, p)
	if len(res.Duplicates) != 1 {
		t.Fatalf("expected 1 flagged address, got %d: %+v", len(res.Duplicates), res.Duplicates)
	}
	d := res.Duplicates[0]
	if d.Address != "walletA" || d.Date != "2024-03-05" || d.Count != 3 {
		t.Errorf("duplicate entry = %+v", d)
	}
}
