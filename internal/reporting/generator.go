// Package reporting renders dashboards as Markdown and CSV for scheduled
// exports and the offline report command.
package reporting

import (
	"fmt"
	"sort"
	"time"

	"shitdash/internal/domain"
)

// Generator produces reports from computed dashboards.
type Generator struct {
	now func() time.Time // injectable clock for deterministic output
}

// NewGenerator creates a report generator.
func NewGenerator() *Generator {
	return &Generator{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds a report from a dashboard and the snapshot it was
// computed from. The snapshot may be nil when only cached results exist.
func (g *Generator) Generate(d *domain.Dashboard, snap *domain.Snapshot) *Report {
	r := &Report{
		GeneratedAt: g.now(),
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		DataSummary: buildDataSummary(snap),
		DataQuality: buildDataQuality(d, snap),
	}

	for _, name := range domain.DomainNames {
		state := d.Domains[name]
		section := DomainSection{
			Name:   name,
			Status: state.Status,
			Error:  state.Error,
		}
		if state.Status == domain.StatusReady {
			metrics, top := extractResult(state.Result)
			section.Metrics = metricRows(metrics)
			section.Top = topRows(top)
		}
		r.Domains = append(r.Domains, section)
	}

	return r
}

// DailyRows flattens every domain's daily series for CSV export, ordered by
// domain, date, field.
func DailyRows(d *domain.Dashboard) []DailyRow {
	var rows []DailyRow
	for _, name := range domain.DomainNames {
		state := d.Domains[name]
		if state.Status != domain.StatusReady {
			continue
		}
		for _, point := range extractDaily(state.Result) {
			fields := make([]string, 0, len(point.Values))
			for f := range point.Values {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			for _, f := range fields {
				rows = append(rows, DailyRow{
					Domain: name,
					Date:   point.Date,
					Field:  f,
					Value:  point.Values[f],
				})
			}
		}
	}
	return rows
}

func buildDataSummary(snap *domain.Snapshot) DataSummary {
	if snap == nil {
		return DataSummary{}
	}
	return DataSummary{
		LoadedAt:     snap.LoadedAt,
		TotalRecords: snap.TotalRecords(),
		Collections: []CollectionCount{
			{Name: "staking", Count: len(snap.Staking)},
			{Name: "staking_rewards", Count: len(snap.StakingRewards)},
			{Name: "trades", Count: len(snap.Trades)},
			{Name: "discord_rewards", Count: len(snap.DiscordRewards)},
			{Name: "pos", Count: len(snap.POS)},
			{Name: "claims", Count: len(snap.Claims)},
			{Name: "revenue", Count: len(snap.Revenue)},
			{Name: "liquidity", Count: len(snap.Liquidity)},
			{Name: "prices", Count: len(snap.Prices)},
		},
	}
}

func buildDataQuality(d *domain.Dashboard, snap *domain.Snapshot) DataQualitySection {
	var checks []QualityCheckRow

	hasData := snap != nil && snap.TotalRecords() > 0
	checks = append(checks, QualityCheckRow{
		Name:   "snapshot has records",
		Detail: fmt.Sprintf("%d records", totalRecords(snap)),
		Pass:   hasData,
	})

	failed := 0
	for _, state := range d.Domains {
		if state.Status == domain.StatusFailed {
			failed++
		}
	}
	checks = append(checks, QualityCheckRow{
		Name:   "all domains computed",
		Detail: fmt.Sprintf("%d of %d failed", failed, len(d.Domains)),
		Pass:   failed == 0,
	})

	dupes := duplicateOrderCount(d)
	checks = append(checks, QualityCheckRow{
		Name:   "no duplicate pos orders",
		Detail: fmt.Sprintf("%d duplicate address-days", dupes),
		Pass:   dupes == 0,
	})

	all := true
	for _, c := range checks {
		if !c.Pass {
			all = false
			break
		}
	}
	return DataQualitySection{Checks: checks, AllChecksPassed: all}
}

func totalRecords(snap *domain.Snapshot) int {
	if snap == nil {
		return 0
	}
	return snap.TotalRecords()
}

func duplicateOrderCount(d *domain.Dashboard) int {
	state, ok := d.Domains[domain.DomainPOS]
	if !ok || state.Status != domain.StatusReady {
		return 0
	}
	res, ok := state.Result.(*domain.POSResult)
	if !ok {
		return 0
	}
	return len(res.Duplicates)
}

// extractResult pulls the metric set and the primary ranking out of a
// domain result payload.
func extractResult(result any) (domain.MetricSet, []domain.RankingEntry) {
	switch res := result.(type) {
	case *domain.StakingResult:
		return res.Metrics, res.TopStakers
	case *domain.TSResult:
		return res.Metrics, res.TopReceivers
	case *domain.POSResult:
		return res.Metrics, res.TopCustomers
	case *domain.ClaimResult:
		return res.Metrics, res.TopClaimers
	case *domain.RevenueResult:
		return res.Metrics, res.TopPayers
	case *domain.DeFiResult:
		return res.Metrics, res.TopTraders
	default:
		return nil, nil
	}
}

func extractDaily(result any) domain.TimeSeries {
	switch res := result.(type) {
	case *domain.StakingResult:
		return res.Daily
	case *domain.TSResult:
		return res.Daily
	case *domain.POSResult:
		return res.Daily
	case *domain.ClaimResult:
		return res.Daily
	case *domain.RevenueResult:
		return res.Daily
	case *domain.DeFiResult:
		return res.Daily
	default:
		return nil
	}
}

func metricRows(metrics domain.MetricSet) []MetricRow {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]MetricRow, 0, len(names))
	for _, name := range names {
		pair := metrics[name]
		row := MetricRow{Name: name, Current: pair.Current, Previous: pair.Previous}
		if pair.Previous != 0 {
			row.DeltaPct = (pair.Current - pair.Previous) / pair.Previous * 100
		}
		rows = append(rows, row)
	}
	return rows
}

func topRows(entries []domain.RankingEntry) []TopRow {
	rows := make([]TopRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, TopRow{
			Rank:      i + 1,
			Address:   e.Address,
			Primary:   e.Primary,
			Secondary: e.Secondary,
		})
	}
	return rows
}
