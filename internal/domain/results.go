package domain

import "time"

// MetricPair carries one metric for the current window and the equal-length
// previous window. Every metric always has both sides; a window with no
// qualifying records contributes 0, so the presentation layer can compute
// deltas without nil checks.
type MetricPair struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
}

// MetricSet maps metric name to its current/previous pair.
type MetricSet map[string]MetricPair

// Set records a metric pair under the given name.
func (m MetricSet) Set(name string, current, previous float64) {
	m[name] = MetricPair{Current: current, Previous: previous}
}

// SeriesPoint is one per-date bucket of named sums.
type SeriesPoint struct {
	Date   string             `json:"date"` // canonical YYYY-MM-DD key
	Values map[string]float64 `json:"values"`
}

// TimeSeries is an ordered-by-date sequence of buckets. Only dates with at
// least one contributing record appear, sorted ascending by date key.
type TimeSeries []SeriesPoint

// HeatmapCell is one cell of a dense date×hour grid. Grids are
// pre-initialized to 0 for every cell in range before accumulation.
type HeatmapCell struct {
	Date  string  `json:"date"`
	Hour  int     `json:"hour"`
	Value float64 `json:"value"`
}

// RankingEntry is one row of a top-N or full distribution. Address is the
// full untruncated form kept for explorer links; Display is the shortened
// presentation form.
type RankingEntry struct {
	Address   string  `json:"address"`
	Display   string  `json:"display"`
	Primary   float64 `json:"primary"`
	Secondary float64 `json:"secondary"`
}

// DuplicateEntry is one row of the duplicate-address audit: an address with
// more than the threshold number of records on one adjusted civil date.
type DuplicateEntry struct {
	Address string `json:"address"`
	Date    string `json:"date"`
	Count   int    `json:"count"`
}

// CompositionSlice is one named share of a total, used for pie charts.
type CompositionSlice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// StakingResult is the staking domain dashboard payload.
type StakingResult struct {
	Metrics    MetricSet      `json:"metrics"`
	Daily      TimeSeries     `json:"dailyData"`
	Cumulative TimeSeries     `json:"cumulativeData"`
	TopStakers []RankingEntry `json:"topStakers"`
}

// TSResult is the trading-system domain dashboard payload.
type TSResult struct {
	Metrics           MetricSet          `json:"metrics"`
	Daily             TimeSeries         `json:"dailyData"`
	CumulativeRevenue TimeSeries         `json:"cumulativeRevenue"`
	TopReceivers      []RankingEntry     `json:"topReceivers"`
	Composition       []CompositionSlice `json:"composition"`
}

// POSResult is the point-of-sale domain dashboard payload.
type POSResult struct {
	Metrics      MetricSet        `json:"metrics"`
	Daily        TimeSeries       `json:"dailyData"`
	TopCustomers []RankingEntry   `json:"topCustomers"`
	Heatmap      []HeatmapCell    `json:"heatmapData"`
	Duplicates   []DuplicateEntry `json:"duplicates"`
}

// ClaimResult is the shit-code domain dashboard payload.
type ClaimResult struct {
	Metrics     MetricSet      `json:"metrics"`
	Daily       TimeSeries     `json:"dailyData"`
	Cumulative  TimeSeries     `json:"cumulativeData"`
	TopClaimers []RankingEntry `json:"topClaimers"`
}

// RevenueResult is the revenue domain dashboard payload.
type RevenueResult struct {
	Metrics     MetricSet          `json:"metrics"`
	Daily       TimeSeries         `json:"dailyData"`
	Cumulative  TimeSeries         `json:"cumulativeData"`
	TopPayers   []RankingEntry     `json:"topPayers"`
	Composition []CompositionSlice `json:"composition"`
}

// DeFiResult is the DeFi liquidity domain dashboard payload.
type DeFiResult struct {
	Metrics    MetricSet      `json:"metrics"`
	Daily      TimeSeries     `json:"dailyData"`
	PriceDaily TimeSeries     `json:"priceDaily"`
	TopTraders []RankingEntry `json:"topTraders"`
}

// Status is the three-way computation state of one domain. Empty-but-valid
// results are reported as StatusReady with empty payloads, never as errors.
type Status string

const (
	StatusComputing Status = "computing"
	StatusReady     Status = "ready"
	StatusFailed    Status = "failed"
)

// DomainName identifies one of the six dashboard domains.
type DomainName string

const (
	DomainStaking  DomainName = "staking"
	DomainTS       DomainName = "ts"
	DomainPOS      DomainName = "pos"
	DomainShitCode DomainName = "shitcode"
	DomainRevenue  DomainName = "revenue"
	DomainDeFi     DomainName = "defi"
)

// DomainNames lists all domains in presentation order.
var DomainNames = []DomainName{
	DomainStaking, DomainTS, DomainPOS, DomainShitCode, DomainRevenue, DomainDeFi,
}

// DomainState is the per-domain computation outcome. A failure in one domain
// never prevents the others from carrying ready results.
type DomainState struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
	Result any    `json:"result,omitempty"`
}

// Dashboard is the full aggregation output for one date range.
type Dashboard struct {
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	GeneratedAt time.Time `json:"generatedAt"`

	Domains map[DomainName]DomainState `json:"domains"`
}
