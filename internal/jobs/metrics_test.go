package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue returns the counter for name whose labels include all of want.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	assert.NoError(t, m.Track("catalog:warmup").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("catalog:warmup").End(boom), boom)

	assert.Equal(t, 1.0, counterValue(t, reg, "salesdesk_jobs_total", map[string]string{"job": "catalog:warmup", "status": "success"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "salesdesk_jobs_total", map[string]string{"job": "catalog:warmup", "status": "failure"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "salesdesk_jobs_failures_total", map[string]string{"job": "catalog:warmup"}))
}

func TestAddWarmed(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.AddWarmed(7, 12)
	m.AddWarmed(7, 3)
	m.AddWarmed(0, 4)
	m.AddWarmed(9, 0)

	assert.Equal(t, 15.0, counterValue(t, reg, "salesdesk_catalog_warmed_products_total", map[string]string{"company": "7"}))
	assert.Equal(t, 4.0, counterValue(t, reg, "salesdesk_catalog_warmed_products_total", map[string]string{"company": "0"}))
	assert.Equal(t, 0.0, counterValue(t, reg, "salesdesk_catalog_warmed_products_total", map[string]string{"company": "9"}))
}

func TestNilMetricsAreInert(t *testing.T) {
	var m *Metrics
	m.AddWarmed(1, 5)
	assert.NoError(t, m.Track("job").End(nil))
}
