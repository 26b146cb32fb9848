package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheckerAggregates(t *testing.T) {
	hc := NewHealthChecker("v1.2.3")
	hc.RegisterCheck(NewPingHealthCheck("database", func(ctx context.Context) error { return nil }))

	info := hc.Check(context.Background())
	assert.Equal(t, HealthStatusHealthy, info.Status)
	assert.Equal(t, "v1.2.3", info.Version)
	require.Contains(t, info.Checks, "database")
	assert.Equal(t, HealthStatusHealthy, info.Checks["database"].Status)
	assert.Equal(t, "OK", info.Checks["database"].Message)
}

func TestHealthCheckerDegradesOnFailure(t *testing.T) {
	hc := NewHealthChecker("v1.2.3")
	hc.RegisterCheck(NewPingHealthCheck("database", func(ctx context.Context) error {
		return errors.New("connection refused")
	}))
	hc.RegisterCheck(NewPingHealthCheck("noop", nil))

	info := hc.Check(context.Background())
	assert.Equal(t, HealthStatusDegraded, info.Status)
	assert.Equal(t, HealthStatusUnhealthy, info.Checks["database"].Status)
	assert.Equal(t, "connection refused", info.Checks["database"].Error)
	assert.Equal(t, HealthStatusHealthy, info.Checks["noop"].Status)
}
