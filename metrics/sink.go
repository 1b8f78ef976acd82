package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSink is the seam the rest of the engine counts through. §9 of
// the design calls for isolating the global metrics singleton behind
// an interface so tests can inject a counting stub instead of wiring a
// real backend.
type MetricsSink interface {
	IncCounter(name string, delta int64)
	SetGauge(name string, value int64)
}

// NoopSink discards every observation. It is the FullNode default when
// no concrete sink is configured.
type NoopSink struct{}

func (NoopSink) IncCounter(string, int64) {}
func (NoopSink) SetGauge(string, int64)   {}

// CountingSink is a MetricsSink that records every observation in
// memory, grounded on the Registry above; tests assert against it
// instead of scraping a real exporter.
type CountingSink struct {
	registry Registry
}

// NewCountingSink constructs a CountingSink backed by a fresh Registry.
func NewCountingSink() *CountingSink {
	return &CountingSink{registry: NewRegistry()}
}

func (s *CountingSink) IncCounter(name string, delta int64) {
	GetOrRegisterCounter(name, s.registry).Inc(delta)
}

func (s *CountingSink) SetGauge(name string, value int64) {
	GetOrRegisterGauge(name, s.registry).Update(value)
}

// Count returns the current value of a named counter, or 0 if unset.
func (s *CountingSink) Count(name string) int64 {
	return GetOrRegisterCounter(name, s.registry).Snapshot().Count()
}

// Value returns the current value of a named gauge, or 0 if unset.
func (s *CountingSink) Value(name string) int64 {
	return GetOrRegisterGauge(name, s.registry).Value()
}

// PrometheusSink adapts MetricsSink onto prometheus/client_golang for
// production wiring; it is the one place this repo depends on a real
// metrics exporter, matching the teacher's practice of backing its own
// metrics package onto an external registry.
type PrometheusSink struct {
	counters *prometheus.CounterVec
	gauges   *prometheus.GaugeVec
}

// NewPrometheusSink registers a counter and gauge vector, both labeled
// by metric name, with the given Prometheus registerer.
func NewPrometheusSink(namespace string, reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		counters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Count of ledgerengine pipeline events by name.",
		}, []string{"name"}),
		gauges: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "level",
			Help:      "Current value of ledgerengine pipeline gauges by name.",
		}, []string{"name"}),
	}
	reg.MustRegister(s.counters, s.gauges)
	return s
}

func (s *PrometheusSink) IncCounter(name string, delta int64) {
	s.counters.WithLabelValues(name).Add(float64(delta))
}

func (s *PrometheusSink) SetGauge(name string, value int64) {
	s.gauges.WithLabelValues(name).Set(float64(value))
}
