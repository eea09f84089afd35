package reporting

import (
	"strings"
	"testing"
	"time"

	"shitdash/internal/aggregate"
	"shitdash/internal/domain"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)
}

func testSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Staking: []*domain.StakingRecord{
			{Timestamp: "2024-03-05 10:00:00", Address: "walletA", Amount: 10, Action: domain.ActionStake},
			{Timestamp: "2024-03-01 10:00:00", Address: "walletA", Amount: 5, Action: domain.ActionStake},
		},
		POS: []*domain.POSRecord{
			{Timestamp: "2024-03-05 13:00:00", Address: "walletB", Amount: 3},
		},
		LoadedAt: time.Date(2024, 3, 11, 7, 55, 0, 0, time.UTC),
	}
}

func TestGenerate_DeterministicWithInjectedClock(t *testing.T) {
	snap := testSnapshot()
	d, err := aggregate.ComputeDashboard(snap, "2024-03-04", "2024-03-10")
	if err != nil {
		t.Fatalf("ComputeDashboard: %v", err)
	}

	gen := NewGenerator().WithClock(fixedClock)
	r1 := gen.Generate(d, snap)
	r2 := gen.Generate(d, snap)

	if !r1.GeneratedAt.Equal(fixedClock()) {
		t.Errorf("GeneratedAt = %v, want fixed clock", r1.GeneratedAt)
	}
	if RenderMarkdown(r1) != RenderMarkdown(r2) {
		t.Errorf("repeated generation produced different output")
	}
}

func TestGenerate_DataSummaryAndQuality(t *testing.T) {
	snap := testSnapshot()
	d, err := aggregate.ComputeDashboard(snap, "2024-03-04", "2024-03-10")
	if err != nil {
		t.Fatalf("ComputeDashboard: %v", err)
	}

	r := NewGenerator().WithClock(fixedClock).Generate(d, snap)

	if r.DataSummary.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, want 3", r.DataSummary.TotalRecords)
	}
	if !r.DataQuality.AllChecksPassed {
		t.Errorf("expected all quality checks to pass: %+v", r.DataQuality.Checks)
	}
	if len(r.Domains) != len(domain.DomainNames) {
		t.Errorf("expected %d domain sections, got %d", len(domain.DomainNames), len(r.Domains))
	}
}

func TestGenerate_QualityFailsOnEmptySnapshot(t *testing.T) {
	snap := &domain.Snapshot{}
	d, err := aggregate.ComputeDashboard(snap, "2024-03-04", "2024-03-10")
	if err != nil {
		t.Fatalf("ComputeDashboard: %v", err)
	}

	r := NewGenerator().WithClock(fixedClock).Generate(d, snap)
	if r.DataQuality.AllChecksPassed {
		t.Errorf("empty snapshot must fail the has-records check")
	}
}

func TestMetricRows_DeltaPct(t *testing.T) {
	m := domain.MetricSet{}
	m.Set("grew", 150, 100)
	m.Set("fresh", 10, 0)

	rows := metricRows(m)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Sorted by name: fresh before grew.
	if rows[0].Name != "fresh" || rows[0].DeltaPct != 0 {
		t.Errorf("zero-previous metric must carry DeltaPct 0, got %+v", rows[0])
	}
	if rows[1].Name != "grew" || rows[1].DeltaPct != 50 {
		t.Errorf("grew DeltaPct = %f, want 50", rows[1].DeltaPct)
	}
}

func TestRenderMarkdown_Content(t *testing.T) {
	snap := testSnapshot()
	d, err := aggregate.ComputeDashboard(snap, "2024-03-04", "2024-03-10")
	if err != nil {
		t.Fatalf("ComputeDashboard: %v", err)
	}
	md := RenderMarkdown(NewGenerator().WithClock(fixedClock).Generate(d, snap))

	for _, want := range []string{
		"# Period Report",
		"Range: 2024-03-04 .. 2024-03-10",
		"## Data Summary",
		"## Data Quality",
		"**All checks passed.**",
		"## STAKING",
		"| totalStaked | 10.0000 | 5.0000 | 100.00 |",
		"### Top Addresses",
		"walletA",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderCSV_DailyRows(t *testing.T) {
	snap := testSnapshot()
	d, err := aggregate.ComputeDashboard(snap, "2024-03-04", "2024-03-10")
	if err != nil {
		t.Fatalf("ComputeDashboard: %v", err)
	}

	csv := RenderCSV(DailyRows(d))
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if lines[0] != "domain,date,field,value" {
		t.Fatalf("header = %q", lines[0])
	}
	found := false
	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "staking,2024-03-05,staked,") {
			found = true
		}
	}
	if !found {
		t.Errorf("csv missing staking daily row:\n%s", csv)
	}
}
