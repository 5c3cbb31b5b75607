package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSearchMetrics(reg)

	m.ObserveSearch("regex", "ok", 2*time.Millisecond, 3)
	m.ObserveSearch("regex", "invalid", 0, 0)
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.ObserveReload(true, time.Second, 42)
	m.ObserveReload(false, 0, 0)

	assert.InDelta(t, 1, value(t, m.searches.WithLabelValues("regex", "ok")), 0)
	assert.InDelta(t, 1, value(t, m.searches.WithLabelValues("regex", "invalid")), 0)
	assert.InDelta(t, 1, value(t, m.cache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 2, value(t, m.cache.WithLabelValues("miss")), 0)
	assert.InDelta(t, 42, value(t, m.catalogSize), 0)
	assert.InDelta(t, 1, value(t, m.reloads.WithLabelValues("error")), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewSearchMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewSearchMetrics(reg)

	assert.Panics(t, func() { NewSearchMetrics(reg) })
}

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()

	var out dto.Metric
	require.NoError(t, m.Write(&out))

	switch {
	case out.Counter != nil:
		return out.GetCounter().GetValue()
	case out.Gauge != nil:
		return out.GetGauge().GetValue()
	default:
		t.Fatalf("unsupported metric type")
		return 0
	}
}
