package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistersOnRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("nextplanet", reg)

	m.SyncRuns.WithLabelValues(ResultSuccess).Inc()
	m.PlanetsUpserted.Add(3)
	m.RowsSkipped.WithLabelValues("missing_name").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncRuns.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PlanetsUpserted))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "nextplanet_planets_upserted_total")
	assert.Contains(t, names, "nextplanet_sync_rows_skipped_total")
}

func TestNewMetricsSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics("a", prometheus.NewRegistry())
		NewMetrics("a", prometheus.NewRegistry())
	})
}
