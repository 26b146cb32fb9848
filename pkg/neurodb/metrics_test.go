package neurodb

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolStatsCollector(t *testing.T) {
	s, err := Open(context.Background(), &Config{URL: lazyTestURL})
	require.NoError(t, err)
	defer s.Close()

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewPoolStatsCollector(s, "splitbrain")))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "splitbrain_db_pool_max_conns")
	assert.Contains(t, names, "splitbrain_db_pool_idle_conns")
	assert.Contains(t, names, "splitbrain_db_pool_acquire_count_total")
}
