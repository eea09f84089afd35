// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Loader metrics
	SnapshotLoadsTotal  *prometheus.CounterVec
	SnapshotLoadErrors  *prometheus.CounterVec
	RecordsLoaded       *prometheus.GaugeVec
	SnapshotAgeSeconds  prometheus.Gauge
	SnapshotLoadLatency prometheus.Histogram

	// Aggregation metrics
	AggregationRunsTotal *prometheus.CounterVec
	AggregationDuration  *prometheus.HistogramVec
	DashboardsComputed   prometheus.Counter

	// Server metrics
	HTTPRequestDuration *prometheus.HistogramVec
	WSClientsConnected  prometheus.Gauge
	WSBroadcastsTotal   prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulLoad    prometheus.Gauge
	LastSuccessfulCompute prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "shitdash"
	}

	return &Metrics{
		// Loader metrics
		SnapshotLoadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "snapshot_loads_total",
			Help:      "Total number of snapshot loads by source",
		}, []string{"source"}),
		SnapshotLoadErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "snapshot_load_errors_total",
			Help:      "Total number of snapshot load errors by source",
		}, []string{"source"}),
		RecordsLoaded: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "records_loaded",
			Help:      "Number of records in the current snapshot by collection",
		}, []string{"collection"}),
		SnapshotAgeSeconds: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "snapshot_age_seconds",
			Help:      "Seconds since the current snapshot was loaded",
		}),
		SnapshotLoadLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "snapshot_load_latency_seconds",
			Help:      "Snapshot load latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Aggregation metrics
		AggregationRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "runs_total",
			Help:      "Total number of domain aggregation runs by status",
		}, []string{"domain", "status"}),
		AggregationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "duration_seconds",
			Help:      "Domain aggregation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"domain"}),
		DashboardsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "dashboards_computed_total",
			Help:      "Total number of full dashboards computed",
		}),

		// Server metrics
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "code"}),
		WSClientsConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "ws_clients_connected",
			Help:      "Current number of connected WebSocket clients",
		}),
		WSBroadcastsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "ws_broadcasts_total",
			Help:      "Total number of dashboard broadcasts to WebSocket clients",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulLoad: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_load_timestamp",
			Help:      "Unix timestamp of last successful snapshot load",
		}),
		LastSuccessfulCompute: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_compute_timestamp",
			Help:      "Unix timestamp of last successful dashboard computation",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordSnapshotLoad records a snapshot load attempt. Nil receivers are
// no-ops so callers can run without metrics wired.
func (m *Metrics) RecordSnapshotLoad(source string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.SnapshotLoadsTotal.WithLabelValues(source).Inc()
	m.SnapshotLoadLatency.Observe(seconds)
	if err != nil {
		m.SnapshotLoadErrors.WithLabelValues(source).Inc()
	}
}

// RecordAggregation records a single domain aggregation run.
func (m *Metrics) RecordAggregation(domain, status string, seconds float64) {
	if m == nil {
		return
	}
	m.AggregationRunsTotal.WithLabelValues(domain, status).Inc()
	m.AggregationDuration.WithLabelValues(domain).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
