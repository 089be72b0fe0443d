package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the report
// pipeline. Upstream labels: source={climate_archive,climate_projection,
// hazard}, outcome={success,no_data,unavailable,bad_payload}.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec   // labels: source, outcome
	UpstreamDuration *prometheus.HistogramVec // labels: source

	CacheLookups *prometheus.CounterVec // labels: source, result={hit,miss}

	ReportsGenerated prometheus.Counter

	// Batch processing metrics.
	BatchRows        prometheus.Counter
	BatchRowDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheLookups,
		m.ReportsGenerated,
		m.BatchRows,
		m.BatchRowDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazardscope",
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by source and outcome.",
		}, []string{"source", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hazardscope",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazardscope",
			Name:      "cache_lookups_total",
			Help:      "Upstream response cache lookups by source and result.",
		}, []string{"source", "result"}),
		ReportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazardscope",
			Name:      "reports_generated_total",
			Help:      "Total location reports assembled.",
		}),
		BatchRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazardscope",
			Name:      "batch_rows_total",
			Help:      "Total batch input rows processed.",
		}),
		BatchRowDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hazardscope",
			Name:      "batch_row_duration_seconds",
			Help:      "Duration of a complete per-row fetch-aggregate-assemble cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}
