package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func BenchmarkCounter(b *testing.B) {
	c := NewCounter()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Inc(1)
	}
}

func TestGetOrRegisterCounter(t *testing.T) {
	r := NewRegistry()
	NewRegisteredCounter("foo", r).Inc(47)
	c := GetOrRegisterCounter("foo", r).Snapshot()
	assert.Equal(t, int64(47), c.Count())
}

// TestNoopSinkDiscardsObservations asserts NoopSink, the FullNode
// default when no concrete backend is configured, is a true no-op.
func TestNoopSinkDiscardsObservations(t *testing.T) {
	var sink MetricsSink = NoopSink{}
	assert.NotPanics(t, func() {
		sink.IncCounter("x", 1)
		sink.SetGauge("y", 1)
	})
}

// TestCountingSinkRecordsObservations asserts CountingSink, the stub
// tests inject in place of a real backend, records per-name counters
// and gauges independently.
func TestCountingSinkRecordsObservations(t *testing.T) {
	sink := NewCountingSink()
	var asInterface MetricsSink = sink

	asInterface.IncCounter("a", 3)
	asInterface.IncCounter("a", 4)
	asInterface.IncCounter("b", 1)
	asInterface.SetGauge("g", 9)

	assert.Equal(t, int64(7), sink.Count("a"))
	assert.Equal(t, int64(1), sink.Count("b"))
	assert.Equal(t, int64(0), sink.Count("unset"))
	assert.Equal(t, int64(9), sink.Value("g"))
}
