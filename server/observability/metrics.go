package observability

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager owns the Prometheus registry and the service metrics.
// It doubles as the store's query observer, so database timings land in
// the same registry as the HTTP metrics.
type MetricsManager struct {
	// HTTP metrics
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestSize     *prometheus.HistogramVec
	responseSize    *prometheus.HistogramVec

	// query metrics
	queriesTotal  *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewMetricsManager creates a manager with its own registry.
func NewMetricsManager(namespace string) *MetricsManager {
	if namespace == "" {
		namespace = "splitbrain"
	}

	m := &MetricsManager{
		registry: prometheus.NewRegistry(),
	}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.requestSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	m.responseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	m.queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dissociation_queries_total",
			Help:      "Total number of database queries by kind and outcome",
		},
		[]string{"kind", "status"},
	)

	m.queryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds by kind",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.requestSize,
		m.responseSize,
		m.queriesTotal,
		m.queryDuration,
	)

	m.registry.MustRegister(prometheus.NewGoCollector())
	m.registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	return m
}

// RegisterCollector adds an external collector, e.g. pool statistics.
func (m *MetricsManager) RegisterCollector(c prometheus.Collector) error {
	return m.registry.Register(c)
}

// ObserveQuery records one database query outcome. It implements the
// store's QueryObserver hook.
func (m *MetricsManager) ObserveQuery(kind string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.queriesTotal.WithLabelValues(kind, status).Inc()
	m.queryDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// Middleware records request counts, latencies, and sizes.
func (m *MetricsManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		reqSize := computeRequestSize(c)
		m.requestSize.WithLabelValues(c.Request.Method, path).Observe(float64(reqSize))

		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		m.requestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			statusClass(status),
		).Inc()

		m.requestDuration.WithLabelValues(
			c.Request.Method,
			path,
		).Observe(duration)

		respSize := c.Writer.Size()
		if respSize > 0 {
			m.responseSize.WithLabelValues(c.Request.Method, path).Observe(float64(respSize))
		}
	}
}

// Handler exposes the registry in Prometheus text format.
func (m *MetricsManager) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return gin.WrapH(h)
}

func computeRequestSize(r *gin.Context) int {
	size := 0
	if r.Request.URL != nil {
		size += len(r.Request.URL.String())
	}
	size += len(r.Request.Method)
	size += len(r.Request.Proto)
	for name, values := range r.Request.Header {
		size += len(name)
		for _, value := range values {
			size += len(value)
		}
	}
	if r.Request.ContentLength > 0 {
		size += int(r.Request.ContentLength)
	}
	return size
}

// statusClass buckets an HTTP status code into its class.
func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
