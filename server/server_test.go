package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parietal-io/splitbrain/pkg/neurodb"
)

// testDatabaseURL points at a closed port. The pool does not dial until
// a query runs, so routing tests stay hermetic and the query routes see
// a store whose backend is down.
const testDatabaseURL = "postgresql://ns:ns@127.0.0.1:1/neurosynth"

func newTestServer(t *testing.T, cfg *Config) *Server {
	t.Helper()

	store, err := neurodb.Open(context.Background(), &neurodb.Config{URL: testDatabaseURL})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv, err := New(cfg, &Dependencies{Store: store})
	require.NoError(t, err)
	return srv
}

func get(srv *Server, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(DefaultConfig(), nil)
	require.Error(t, err)

	_, err = New(DefaultConfig(), &Dependencies{})
	require.Error(t, err)
}

func TestServerRoutes(t *testing.T) {
	srv := newTestServer(t, DefaultConfig())

	t.Run("root banner", func(t *testing.T) {
		w := get(srv, "/", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "<p>Server working!</p>", w.Body.String())
	})

	t.Run("image", func(t *testing.T) {
		w := get(srv, "/img", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/gif", w.Header().Get("Content-Type"))
	})

	t.Run("term studies echo", func(t *testing.T) {
		w := get(srv, "/terms/pain/studies", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pain", w.Body.String())
	})

	t.Run("location studies", func(t *testing.T) {
		w := get(srv, "/locations/0_-52_26/studies", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[0,-52,26]", w.Body.String())
	})

	t.Run("malformed location is rejected", func(t *testing.T) {
		w := get(srv, "/locations/zero_one_two/studies", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"bad_request"`)
	})

	t.Run("term dissociation surfaces store errors", func(t *testing.T) {
		w := get(srv, "/dissociate/terms/pain/memory", nil)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), `"internal_error"`)
	})

	t.Run("malformed dissociation coordinates skip the store", func(t *testing.T) {
		w := get(srv, "/dissociate/locations/a_b_c/0_0_0", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Coordinates must be 'x_y_z' with integers.")
	})

	t.Run("diagnostics report the broken database", func(t *testing.T) {
		w := get(srv, "/test_db", nil)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), `"ok":false`)
		assert.Contains(t, w.Body.String(), `"dialect":"postgresql"`)
	})
}

func TestHealthEndpointDegradesWithoutDatabase(t *testing.T) {
	srv := newTestServer(t, DefaultConfig())

	w := get(srv, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `"status":"degraded"`)
	assert.Contains(t, body, `"database"`)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, DefaultConfig())

	// Generate one observation before scraping.
	get(srv, "/", nil)

	w := get(srv, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "splitbrain_http_requests_total")
	assert.Contains(t, body, "splitbrain_db_pool_max_conns")
	assert.Contains(t, body, "go_goroutines")
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, DefaultConfig())

	t.Run("generated when absent", func(t *testing.T) {
		w := get(srv, "/", nil)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("inbound ID is preserved", func(t *testing.T) {
		w := get(srv, "/", map[string]string{"X-Request-ID": "req-42"})
		assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	})
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, DefaultConfig())

	req := httptest.NewRequest(http.MethodOptions, "/terms/pain/studies", nil)
	req.Header.Set("Origin", "https://example.org")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitAppliesToAPIButNotHealth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RequestsPerIP = 2
	cfg.RateLimit.BurstSize = 2
	cfg.RateLimit.WindowSize = time.Minute

	srv := newTestServer(t, cfg)

	require.Equal(t, http.StatusOK, get(srv, "/", nil).Code)
	require.Equal(t, http.StatusOK, get(srv, "/", nil).Code)

	w := get(srv, "/", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"rate_limit_exceeded"`)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	// Health stays reachable for probes even when a client is throttled.
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, get(srv, "/health", nil).Code)
	}
}

func TestProductionConfigDerivesFromDefaults(t *testing.T) {
	cfg := ProductionConfig()

	assert.Equal(t, "production", cfg.Mode)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.Observability.Tracing.Enabled)
	assert.Greater(t, cfg.Database.MaxConns, DefaultConfig().Database.MaxConns)
}
