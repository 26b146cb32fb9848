package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "development", cfg.Mode)
	assert.True(t, cfg.Observability.HealthCheck.Enabled)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splitbrain.yaml")
	yaml := `
port: 9000
mode: production
rate_limit:
  enabled: true
  requests_per_ip: 50
database:
  max_conns: 4
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "production", cfg.Mode)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 50, cfg.RateLimit.RequestsPerIP)
	assert.Equal(t, int32(4), cfg.Database.MaxConns)

	// Unset keys keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "/metrics", cfg.Observability.Metrics.Endpoint)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [not a number"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SPLITBRAIN_HOST", "127.0.0.1")
	t.Setenv("SPLITBRAIN_PORT", "5000")
	t.Setenv("SPLITBRAIN_MODE", "production")
	t.Setenv("SPLITBRAIN_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "production", cfg.Mode)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverrideRejectsBadPort(t *testing.T) {
	t.Setenv("SPLITBRAIN_PORT", "not-a-port")

	_, err := Load("")
	require.Error(t, err)
}

func TestPoolConfigMergesSizing(t *testing.T) {
	d := DatabaseConfig{
		MaxConns:        3,
		MaxConnIdleTime: time.Minute,
	}

	cfg := d.PoolConfig("postgresql://ns:ns@localhost/neurosynth")

	assert.Equal(t, "postgresql://ns:ns@localhost/neurosynth", cfg.URL)
	assert.Equal(t, int32(3), cfg.MaxConns)
	assert.Equal(t, time.Minute, cfg.MaxConnIdleTime)

	// Zero fields fall back to the store defaults.
	assert.Equal(t, time.Minute, cfg.HealthCheckPeriod)
}
