package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"whomortality/internal/db"
)

var poolConnectionsDesc = prometheus.NewDesc(
	"whomortality_db_connections",
	"Database connections by state",
	[]string{"driver", "state"},
	nil,
)

// StatsSource reports connection pool usage.
type StatsSource interface {
	Stats() db.PoolStats
}

// PoolCollector is a custom Prometheus collector that reads the connection
// pool statistics on each scrape.
type PoolCollector struct {
	source StatsSource
}

// NewPoolCollector creates a collector over source.
func NewPoolCollector(source StatsSource) *PoolCollector {
	return &PoolCollector{source: source}
}

// Describe sends the metric descriptor to the channel.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- poolConnectionsDesc
}

// Collect emits the current pool gauges.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()
	for state, v := range map[string]int{"total": s.Total, "idle": s.Idle, "in_use": s.InUse} {
		ch <- prometheus.MustNewConstMetric(poolConnectionsDesc, prometheus.GaugeValue, float64(v), s.Driver, state)
	}
}
