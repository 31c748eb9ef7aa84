// Package metrics exposes Prometheus instrumentation for the aggregation
// engine, the cause catalog and the database pool.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"whomortality/internal/mortality"
)

// Metrics implements mortality.Recorder and catalog.Observer. A nil *Metrics
// records nothing.
type Metrics struct {
	OperationDuration *prometheus.HistogramVec
	OperationFailures *prometheus.CounterVec
	CatalogCache      *prometheus.CounterVec
	CatalogRefreshes  *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "whomortality_operation_duration_seconds",
			Help:    "Duration of aggregation engine operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation", "outcome"}),
		OperationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "whomortality_operation_failures_total",
			Help: "Failed aggregation engine operations by error kind",
		}, []string{"operation", "kind"}),
		CatalogCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "whomortality_catalog_cache_requests_total",
			Help: "Cause catalog cache lookups by result",
		}, []string{"result"}),
		CatalogRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "whomortality_catalog_refreshes_total",
			Help: "Background cause catalog refreshes by outcome",
		}, []string{"outcome"}),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveOperation records the duration and, on failure, the error kind of an
// engine operation.
func (m *Metrics) ObserveOperation(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation, outcome(err)).Observe(d.Seconds())
	if err != nil {
		m.OperationFailures.WithLabelValues(operation, string(mortality.KindOf(err))).Inc()
	}
}

// CatalogCacheLookup records a catalog cache hit or miss.
func (m *Metrics) CatalogCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CatalogCache.WithLabelValues(result).Inc()
}

// ObserveCatalogRefresh records the outcome of a background refresh.
func (m *Metrics) ObserveCatalogRefresh(err error) {
	if m == nil {
		return
	}
	m.CatalogRefreshes.WithLabelValues(outcome(err)).Inc()
}
