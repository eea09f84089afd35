package reporting

import (
	"time"

	"shitdash/internal/domain"
)

// Report is the rendered summary of one dashboard computation.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	StartDate   string
	EndDate     string

	// Data Summary
	DataSummary DataSummary

	// Data Quality checks
	DataQuality DataQualitySection

	// Per-domain sections in presentation order
	Domains []DomainSection
}

// DataSummary describes the snapshot the report was computed from.
type DataSummary struct {
	LoadedAt     time.Time
	TotalRecords int
	Collections  []CollectionCount
}

// CollectionCount is one collection's record count.
type CollectionCount struct {
	Name  string
	Count int
}

// DataQualitySection contains quality checks and their overall outcome.
type DataQualitySection struct {
	Checks          []QualityCheckRow
	AllChecksPassed bool
}

// QualityCheckRow represents one quality criterion.
type QualityCheckRow struct {
	Name   string
	Detail string
	Pass   bool
}

// DomainSection is one domain's rendered metrics and rankings.
type DomainSection struct {
	Name    domain.DomainName
	Status  domain.Status
	Error   string
	Metrics []MetricRow
	Top     []TopRow
}

// MetricRow is one metric with its period-over-period delta.
type MetricRow struct {
	Name     string
	Current  float64
	Previous float64
	DeltaPct float64 // 0 when the previous value is 0
}

// TopRow is one ranking entry.
type TopRow struct {
	Rank      int
	Address   string
	Primary   float64
	Secondary float64
}

// DailyRow is one flattened time-series cell for CSV export.
type DailyRow struct {
	Domain domain.DomainName
	Date   string
	Field  string
	Value  float64
}
