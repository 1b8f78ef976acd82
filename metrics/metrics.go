// Package metrics provides the counting primitives the rest of
// ledgerengine uses to report pipeline throughput and error rates.
//
// The heavy lifting is rcrowley/go-metrics, the same library the
// teacher vendors under its own metrics package; this file just
// re-exports the handful of types and constructors call sites need so
// nothing outside this package imports rcrowley/go-metrics directly.
package metrics

import gometrics "github.com/rcrowley/go-metrics"

type (
	Counter  = gometrics.Counter
	Gauge    = gometrics.Gauge
	Registry = gometrics.Registry
)

var (
	NewCounter                    = gometrics.NewCounter
	NewGauge                      = gometrics.NewGauge
	NewFunctionalGauge            = gometrics.NewFunctionalGauge
	NewRegistry                   = gometrics.NewRegistry
	NewRegisteredCounter          = gometrics.NewRegisteredCounter
	GetOrRegisterCounter          = gometrics.GetOrRegisterCounter
	NewRegisteredGauge            = gometrics.NewRegisteredGauge
	GetOrRegisterGauge            = gometrics.GetOrRegisterGauge
	NewRegisteredFunctionalGauge  = gometrics.NewRegisteredFunctionalGauge
	DefaultRegistry               = gometrics.DefaultRegistry
)
