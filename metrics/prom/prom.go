// Package prom adapts the metrics.Provider seam to a Prometheus registry.
package prom

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/traderknot/executor/metrics"
)

// Provider implements metrics.Provider on top of prometheus/client_golang.
// Instruments are registered with the injected registerer on first use and
// reused by name. Safe for concurrent use.
//
// Instrument names are used verbatim as Prometheus metric names; the
// advisory unit option is ignored since Prometheus conventions encode the
// unit in the name.
type Provider struct {
	reg prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// New constructs a Provider registering into reg. A nil reg falls back to
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Provider {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Provider{
		reg:        reg,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

func (p *Provider) Counter(name string, opts ...metrics.InstrumentOption) metrics.Counter {
	cfg := metrics.Apply(opts)
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.counters[name]
	if !ok {
		c = promauto.With(p.reg).NewCounter(prometheus.CounterOpts{
			Name: name,
			Help: cfg.Description,
		})
		p.counters[name] = c
	}
	return counter{c}
}

func (p *Provider) UpDownCounter(name string, opts ...metrics.InstrumentOption) metrics.UpDownCounter {
	cfg := metrics.Apply(opts)
	p.mu.Lock()
	defer p.mu.Unlock()
	g, ok := p.gauges[name]
	if !ok {
		g = promauto.With(p.reg).NewGauge(prometheus.GaugeOpts{
			Name: name,
			Help: cfg.Description,
		})
		p.gauges[name] = g
	}
	return gauge{g}
}

func (p *Provider) Histogram(name string, opts ...metrics.InstrumentOption) metrics.Histogram {
	cfg := metrics.Apply(opts)
	p.mu.Lock()
	defer p.mu.Unlock()
	h, ok := p.histograms[name]
	if !ok {
		h = promauto.With(p.reg).NewHistogram(prometheus.HistogramOpts{
			Name:    name,
			Help:    cfg.Description,
			Buckets: prometheus.DefBuckets,
		})
		p.histograms[name] = h
	}
	return histogram{h}
}

type counter struct{ c prometheus.Counter }

// Add increments the counter. n must be non-negative; Prometheus counters
// are monotonic.
func (w counter) Add(n int64) { w.c.Add(float64(n)) }

type gauge struct{ g prometheus.Gauge }

func (w gauge) Add(n int64) { w.g.Add(float64(n)) }

type histogram struct{ h prometheus.Histogram }

func (w histogram) Record(v float64) { w.h.Observe(v) }
