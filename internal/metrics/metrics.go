// Package metrics records ledger check outcomes as Prometheus metrics.
// A one-shot CLI has no scrape endpoint, so the collected values are
// written in the node_exporter textfile format instead.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder implements deps.Recorder on its own registry.
type Recorder struct {
	registry   *prometheus.Registry
	checks     *prometheus.CounterVec
	violations prometheus.Counter
	dependents prometheus.Gauge
}

// New returns a Recorder with all metrics registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pkgdep_checks_total",
				Help: "Number of ledger checks by operation and result.",
			},
			[]string{"op", "result"},
		),
		violations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pkgdep_violations_total",
				Help: "Number of providers added to a dependency violation set.",
			},
		),
		dependents: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pkgdep_dependents",
				Help: "Number of dependents returned by the last dependents check.",
			},
		),
	}
	r.registry.MustRegister(r.checks, r.violations, r.dependents)
	return r
}

// Check counts one operation outcome.
func (r *Recorder) Check(op, result string) {
	r.checks.WithLabelValues(op, result).Inc()
}

// Violation counts one inserted violation.
func (r *Recorder) Violation() { r.violations.Inc() }

// Dependents records the last dependents count.
func (r *Recorder) Dependents(n int) { r.dependents.Set(float64(n)) }

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }

// WriteTextfile writes the current values to path, atomically replacing
// any previous file.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
