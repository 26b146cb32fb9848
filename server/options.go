package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/parietal-io/splitbrain/server/observability"
)

// Option is a function that configures a Server
type Option func(*Server)

// WithMiddleware adds custom gin middlewares to the router
func WithMiddleware(middlewares ...gin.HandlerFunc) Option {
	return func(s *Server) {
		for _, mw := range middlewares {
			s.router.Use(mw)
		}
	}
}

// WithHealthCheck registers an additional named health check. It is a
// no-op when health checks are disabled.
func WithHealthCheck(check observability.HealthCheck) Option {
	return func(s *Server) {
		if s.healthChecker != nil {
			s.healthChecker.RegisterCheck(check)
		}
	}
}

// WithCollector registers an additional Prometheus collector on the
// server registry. It is a no-op when metrics are disabled.
func WithCollector(collector prometheus.Collector) Option {
	return func(s *Server) {
		if s.metrics != nil {
			s.metrics.RegisterCollector(collector)
		}
	}
}
