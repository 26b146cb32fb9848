package neurodb

import "github.com/prometheus/client_golang/prometheus"

// PoolStatsCollector exposes pgxpool statistics as Prometheus metrics.
// Stats are sampled at scrape time, so no background goroutine is
// needed.
type PoolStatsCollector struct {
	store *Store

	acquiredConns     *prometheus.Desc
	idleConns         *prometheus.Desc
	totalConns        *prometheus.Desc
	maxConns          *prometheus.Desc
	acquireCount      *prometheus.Desc
	emptyAcquireCount *prometheus.Desc
	acquireSeconds    *prometheus.Desc
}

// NewPoolStatsCollector builds a collector for the store's pool under
// the given metric namespace.
func NewPoolStatsCollector(store *Store, namespace string) *PoolStatsCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "db_pool", name), help, nil, nil)
	}
	return &PoolStatsCollector{
		store:             store,
		acquiredConns:     desc("acquired_conns", "Connections currently checked out of the pool"),
		idleConns:         desc("idle_conns", "Idle connections in the pool"),
		totalConns:        desc("total_conns", "Total connections held by the pool"),
		maxConns:          desc("max_conns", "Configured pool size cap"),
		acquireCount:      desc("acquire_count_total", "Cumulative successful acquires"),
		emptyAcquireCount: desc("empty_acquire_count_total", "Cumulative acquires that had to wait for a free connection"),
		acquireSeconds:    desc("acquire_duration_seconds_total", "Cumulative time spent waiting in acquire"),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredConns
	ch <- c.idleConns
	ch <- c.totalConns
	ch <- c.maxConns
	ch <- c.acquireCount
	ch <- c.emptyAcquireCount
	ch <- c.acquireSeconds
}

// Collect implements prometheus.Collector.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.store.Stat()
	ch <- prometheus.MustNewConstMetric(c.acquiredConns, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(stat.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.maxConns, prometheus.GaugeValue, float64(stat.MaxConns()))
	ch <- prometheus.MustNewConstMetric(c.acquireCount, prometheus.CounterValue, float64(stat.AcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.emptyAcquireCount, prometheus.CounterValue, float64(stat.EmptyAcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.acquireSeconds, prometheus.CounterValue, stat.AcquireDuration().Seconds())
}
