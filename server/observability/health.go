package observability

import (
	"context"
	"sync"
	"time"
)

// HealthStatus classifies the service state.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck is one named dependency probe.
type HealthCheck interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthInfo is the aggregate health report.
type HealthInfo struct {
	Status    HealthStatus           `json:"status"`
	Version   string                 `json:"version"`
	Uptime    time.Duration          `json:"uptime"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of a single probe.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// HealthChecker runs registered probes and aggregates the results.
type HealthChecker struct {
	mu        sync.RWMutex
	checks    map[string]HealthCheck
	startTime time.Time
	version   string
}

// NewHealthChecker creates a checker reporting the given version.
func NewHealthChecker(version string) *HealthChecker {
	return &HealthChecker{
		checks:    make(map[string]HealthCheck),
		startTime: time.Now(),
		version:   version,
	}
}

// RegisterCheck adds a probe. Re-registering a name replaces it.
func (h *HealthChecker) RegisterCheck(check HealthCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[check.Name()] = check
}

// Check runs every probe concurrently and aggregates the results. Any
// failing probe degrades the overall status.
func (h *HealthChecker) Check(ctx context.Context) *HealthInfo {
	h.mu.RLock()
	checks := make(map[string]HealthCheck, len(h.checks))
	for name, check := range h.checks {
		checks[name] = check
	}
	h.mu.RUnlock()

	info := &HealthInfo{
		Status:    HealthStatusHealthy,
		Version:   h.version,
		Uptime:    time.Since(h.startTime),
		Timestamp: time.Now(),
		Checks:    make(map[string]CheckResult),
	}

	type probeResult struct {
		name   string
		result CheckResult
	}

	var wg sync.WaitGroup
	resultChan := make(chan probeResult, len(checks))

	for name, check := range checks {
		wg.Add(1)
		go func(n string, c HealthCheck) {
			defer wg.Done()

			start := time.Now()
			err := c.Check(ctx)

			result := CheckResult{
				Latency: time.Since(start).String(),
			}
			if err != nil {
				result.Status = HealthStatusUnhealthy
				result.Error = err.Error()
			} else {
				result.Status = HealthStatusHealthy
				result.Message = "OK"
			}

			resultChan <- probeResult{name: n, result: result}
		}(name, check)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for r := range resultChan {
		info.Checks[r.name] = r.result
		if r.result.Status == HealthStatusUnhealthy {
			info.Status = HealthStatusDegraded
		}
	}

	return info
}

// Uptime reports how long the checker has been alive.
func (h *HealthChecker) Uptime() time.Duration {
	return time.Since(h.startTime)
}

// PingHealthCheck probes a dependency through a ping function.
type PingHealthCheck struct {
	name string
	ping func(context.Context) error
}

// NewPingHealthCheck wraps a ping function as a HealthCheck.
func NewPingHealthCheck(name string, ping func(context.Context) error) *PingHealthCheck {
	return &PingHealthCheck{name: name, ping: ping}
}

func (c *PingHealthCheck) Name() string {
	return c.name
}

func (c *PingHealthCheck) Check(ctx context.Context) error {
	if c.ping != nil {
		return c.ping(ctx)
	}
	return nil
}
