package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/traderknot/executor/metrics"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

func TestProvider_RecordsIntoRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := New(reg)

	p.Counter("test_dispatched_total", metrics.WithDescription("dispatched")).Add(3)
	g := p.UpDownCounter("test_running")
	g.Add(2)
	g.Add(-1)
	p.Histogram("test_duration_seconds").Record(0.25)

	families := gather(t, reg)

	c := families["test_dispatched_total"]
	require.NotNil(t, c)
	require.Equal(t, "dispatched", c.GetHelp())
	require.Equal(t, float64(3), c.GetMetric()[0].GetCounter().GetValue())

	ga := families["test_running"]
	require.NotNil(t, ga)
	require.Equal(t, float64(1), ga.GetMetric()[0].GetGauge().GetValue())

	h := families["test_duration_seconds"]
	require.NotNil(t, h)
	require.Equal(t, uint64(1), h.GetMetric()[0].GetHistogram().GetSampleCount())
	require.Equal(t, 0.25, h.GetMetric()[0].GetHistogram().GetSampleSum())
}

func TestProvider_ReusesInstrumentsByName(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := New(reg)

	// a second request for the same name must reuse the registered collector
	// instead of panicking on duplicate registration
	p.Counter("reused_total").Add(1)
	p.Counter("reused_total").Add(1)

	families := gather(t, reg)
	require.Equal(t, float64(2), families["reused_total"].GetMetric()[0].GetCounter().GetValue())
}

func TestProvider_NilRegistererFallsBack(t *testing.T) {
	p := New(nil)
	require.NotNil(t, p)
}
