package server

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/parietal-io/splitbrain"
	"github.com/parietal-io/splitbrain/pkg/neurodb"
)

// Config holds all configuration for the splitbrain HTTP server
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"` // "development" or "production"

	CORS          CORSConfig          `yaml:"cors"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
	Database      DatabaseConfig      `yaml:"database"`

	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	TLS TLSConfig `yaml:"tls"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled"`
	AllowOrigins     []string `yaml:"allow_origins"`
	AllowMethods     []string `yaml:"allow_methods"`
	AllowHeaders     []string `yaml:"allow_headers"`
	ExposeHeaders    []string `yaml:"expose_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled       bool          `yaml:"enabled"`
	RequestsPerIP int           `yaml:"requests_per_ip"`
	WindowSize    time.Duration `yaml:"window_size"`
	BurstSize     int           `yaml:"burst_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	Structured bool   `yaml:"structured"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Tracing     TracingConfig     `yaml:"tracing"`
	HealthCheck HealthCheckConfig `yaml:"health_check"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled        bool    `yaml:"enabled"`
	ServiceName    string  `yaml:"service_name"`
	ServiceVersion string  `yaml:"service_version"`
	Environment    string  `yaml:"environment"`
	OTLPEndpoint   string  `yaml:"otlp_endpoint"` // OTLP endpoint (e.g., "localhost:4318")
	OTLPInsecure   bool    `yaml:"otlp_insecure"`
	SamplingRate   float64 `yaml:"sampling_rate"` // 0.0 - 1.0
}

// HealthCheckConfig holds health check settings
type HealthCheckConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// DatabaseConfig holds connection pool sizing for the study database.
// The connection URL itself is never configured here; it always comes
// from the DB_URL environment variable.
type DatabaseConfig struct {
	MaxConns          int32         `yaml:"max_conns"`
	MinConns          int32         `yaml:"min_conns"`
	MaxConnIdleTime   time.Duration `yaml:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `yaml:"health_check_period"`
}

// PoolConfig merges the pool sizing with a connection URL into the
// store configuration.
func (d DatabaseConfig) PoolConfig(url string) *neurodb.Config {
	cfg := neurodb.DefaultConfig()
	cfg.URL = url
	if d.MaxConns > 0 {
		cfg.MaxConns = d.MaxConns
	}
	if d.MinConns > 0 {
		cfg.MinConns = d.MinConns
	}
	if d.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = d.MaxConnIdleTime
	}
	if d.HealthCheckPeriod > 0 {
		cfg.HealthCheckPeriod = d.HealthCheckPeriod
	}
	return cfg
}

// TLSConfig holds TLS configuration
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// DefaultConfig returns a default configuration for development
func DefaultConfig() *Config {
	return &Config{
		Host: "0.0.0.0",
		Port: 8080,
		Mode: "development",
		CORS: CORSConfig{
			Enabled:       true,
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
			ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
			MaxAge:        86400,
		},
		RateLimit: RateLimitConfig{
			Enabled:       false,
			RequestsPerIP: 100,
			WindowSize:    time.Minute,
			BurstSize:     20,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stdout",
			Structured: true,
		},
		Observability: ObservabilityConfig{
			Enabled: true,
			Metrics: MetricsConfig{
				Enabled:  true,
				Endpoint: "/metrics",
			},
			Tracing: TracingConfig{
				Enabled:        false,
				ServiceName:    "splitbrain",
				ServiceVersion: splitbrain.Version,
				Environment:    "development",
				OTLPEndpoint:   "localhost:4318",
				OTLPInsecure:   true,
				SamplingRate:   1.0,
			},
			HealthCheck: HealthCheckConfig{
				Enabled:  true,
				Endpoint: "/health",
			},
		},
		Database: DatabaseConfig{
			MaxConns:          8,
			MinConns:          0,
			MaxConnIdleTime:   5 * time.Minute,
			HealthCheckPeriod: time.Minute,
		},
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		TLS: TLSConfig{
			Enabled: false,
		},
	}
}

// ProductionConfig returns a configuration suitable for production
func ProductionConfig() *Config {
	config := DefaultConfig()
	config.Mode = "production"
	config.CORS.AllowOrigins = []string{"https://yourdomain.com"}
	config.RateLimit.Enabled = true
	config.RateLimit.RequestsPerIP = 1000
	config.Observability.Tracing.Enabled = true
	config.Observability.Tracing.Environment = "production"
	config.Observability.Tracing.SamplingRate = 0.1
	config.Database.MaxConns = 16
	config.Database.MinConns = 2
	return config
}

// Load reads a YAML config file over the development defaults and then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers SPLITBRAIN_* environment variables on top of the
// loaded configuration. DB_URL is deliberately not handled here; the
// store reads it directly.
func (c *Config) applyEnv() error {
	if v := os.Getenv("SPLITBRAIN_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("SPLITBRAIN_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse SPLITBRAIN_PORT: %w", err)
		}
		c.Port = port
	}
	if v := os.Getenv("SPLITBRAIN_MODE"); v != "" {
		c.Mode = v
	}
	if v := os.Getenv("SPLITBRAIN_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}
