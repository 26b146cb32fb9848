package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parietal-io/splitbrain"
	"github.com/parietal-io/splitbrain/pkg/logging"
	"github.com/parietal-io/splitbrain/pkg/neurodb"
	"github.com/parietal-io/splitbrain/server/observability"
	"github.com/parietal-io/splitbrain/server/ratelimit"
)

// Server serves the dissociation API over the injected study database.
type Server struct {
	config *Config
	router *gin.Engine
	server *http.Server

	deps *Dependencies

	metrics       *observability.MetricsManager
	healthChecker *observability.HealthChecker
	tracing       *observability.TracingManager
	rateLimiter   ratelimit.Limiter
}

// Dependencies holds everything the server needs injected. The store is
// opened and pinged by the caller so a bad database configuration fails
// before the listener starts.
type Dependencies struct {
	Store *neurodb.Store
}

// New creates a new Server instance with the given configuration
func New(config *Config, deps *Dependencies, opts ...Option) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if deps == nil || deps.Store == nil {
		return nil, fmt.Errorf("dependencies cannot be nil")
	}

	// Set Gin mode based on config
	if config.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	s := &Server{
		config: config,
		router: gin.New(),
		deps:   deps,
	}

	logging.Default.SetLevel(logging.ParseLevel(config.Logging.Level))

	s.initializeObservability()

	// Apply options
	for _, opt := range opts {
		opt(s)
	}

	// Setup middleware
	s.setupMiddleware()

	// Setup routes
	s.setupRoutes()

	return s, nil
}

// initializeObservability initializes metrics, health checks, rate
// limiting and tracing, and binds them to the store.
func (s *Server) initializeObservability() {
	// Initialize Metrics
	if s.config.Observability.Metrics.Enabled {
		s.metrics = observability.NewMetricsManager("splitbrain")

		// Query timings land in the same registry as the HTTP metrics.
		s.deps.Store.SetQueryObserver(s.metrics)

		if err := s.metrics.RegisterCollector(neurodb.NewPoolStatsCollector(s.deps.Store, "splitbrain")); err != nil {
			logging.Warn(context.Background(), "metrics.pool_collector_failed", map[string]any{
				"error": err.Error(),
			})
		}
	}

	// Initialize Health Checker
	if s.config.Observability.HealthCheck.Enabled {
		s.healthChecker = observability.NewHealthChecker(splitbrain.Version)
		s.healthChecker.RegisterCheck(observability.NewPingHealthCheck("database", s.deps.Store.Ping))
	}

	// Initialize Rate Limiter
	if s.config.RateLimit.Enabled {
		s.rateLimiter = ratelimit.NewLimiterFromConfig(ratelimit.Config{
			Enabled:       s.config.RateLimit.Enabled,
			RequestsPerIP: s.config.RateLimit.RequestsPerIP,
			WindowSize:    s.config.RateLimit.WindowSize,
			BurstSize:     s.config.RateLimit.BurstSize,
		})
	}

	// Initialize Tracing
	if s.config.Observability.Tracing.Enabled {
		tracing, err := observability.NewTracingManager(observability.TracingConfig{
			Enabled:        s.config.Observability.Tracing.Enabled,
			ServiceName:    s.config.Observability.Tracing.ServiceName,
			ServiceVersion: s.config.Observability.Tracing.ServiceVersion,
			Environment:    s.config.Observability.Tracing.Environment,
			OTLPEndpoint:   s.config.Observability.Tracing.OTLPEndpoint,
			OTLPInsecure:   s.config.Observability.Tracing.OTLPInsecure,
			SamplingRate:   s.config.Observability.Tracing.SamplingRate,
		})
		if err != nil {
			// Log error but don't fail server startup
			logging.Warn(context.Background(), "tracing.init_failed", map[string]any{
				"error": err.Error(),
			})
		} else {
			s.tracing = tracing
		}
	}
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.router.Use(gin.Recovery())

	// Request ID middleware
	s.router.Use(requestIDMiddleware())

	// Tracing middleware (should be early in the chain)
	if s.config.Observability.Enabled && s.config.Observability.Tracing.Enabled && s.tracing != nil {
		s.router.Use(s.tracing.Middleware())
	}

	// Logging middleware
	if s.config.Logging.Structured {
		s.router.Use(structuredLoggingMiddleware())
	} else {
		s.router.Use(gin.Logger())
	}

	// CORS middleware
	if s.config.CORS.Enabled {
		s.router.Use(corsMiddleware(s.config.CORS))
	}

	// Metrics middleware
	if s.config.Observability.Enabled && s.config.Observability.Metrics.Enabled && s.metrics != nil {
		s.router.Use(s.metrics.Middleware())
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check endpoint (never rate limited)
	if s.config.Observability.HealthCheck.Enabled {
		s.router.GET(s.config.Observability.HealthCheck.Endpoint, s.healthCheck)
	}

	// Metrics endpoint (never rate limited)
	if s.config.Observability.Metrics.Enabled {
		s.router.GET(s.config.Observability.Metrics.Endpoint, s.metricsHandler)
	}

	// Study API routes
	api := s.router.Group("/")

	// Apply rate limiting
	if s.config.RateLimit.Enabled && s.rateLimiter != nil {
		api.Use(ratelimit.Middleware(ratelimit.Config{
			Enabled:       s.config.RateLimit.Enabled,
			RequestsPerIP: s.config.RateLimit.RequestsPerIP,
			WindowSize:    s.config.RateLimit.WindowSize,
			BurstSize:     s.config.RateLimit.BurstSize,
		}, s.rateLimiter))
	}

	// Register API routes
	s.registerAssetRoutes(api)
	s.registerStudyRoutes(api)
	s.registerDissociationRoutes(api)
	s.registerDiagnosticRoutes(api)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logging.Info(context.Background(), "server.starting", map[string]any{
		"addr":    addr,
		"mode":    s.config.Mode,
		"version": splitbrain.Version,
	})

	// Start server
	if s.config.TLS.Enabled {
		return s.server.ListenAndServeTLS(s.config.TLS.CertFile, s.config.TLS.KeyFile)
	}
	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	logging.Info(ctx, "server.stopping", nil)

	// Shutdown tracing
	if s.tracing != nil {
		if err := s.tracing.Shutdown(ctx); err != nil {
			logging.Warn(ctx, "tracing.shutdown_failed", map[string]any{
				"error": err.Error(),
			})
		}
	}

	// Attempt graceful shutdown
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logging.Info(ctx, "server.stopped", nil)
	return nil
}

// Router returns the underlying Gin router for advanced customization
func (s *Server) Router() *gin.Engine {
	return s.router
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	if s.healthChecker != nil {
		info := s.healthChecker.Check(c.Request.Context())
		c.JSON(http.StatusOK, info)
	} else {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": splitbrain.Version,
		})
	}
}

// metricsHandler handles Prometheus metrics requests
func (s *Server) metricsHandler(c *gin.Context) {
	if s.metrics != nil {
		s.metrics.Handler()(c)
	} else {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Metrics not enabled",
		})
	}
}
