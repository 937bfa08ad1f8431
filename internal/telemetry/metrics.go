// Package telemetry exposes search progress as Prometheus metrics.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors for one search run. Each run registers into
// its own registry so concurrent runs (and tests) never collide.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	evaluations    prometheus.Counter
	cycles         *prometheus.CounterVec
	corpusSize     prometheus.Gauge
	bestDifference prometheus.Gauge
	evalDuration   prometheus.Histogram
}

// New creates and registers the search collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		evaluations: factory.NewCounter(prometheus.CounterOpts{
			Name: "eqfuzz_evaluations_total",
			Help: "Candidates that passed every condition and were scored",
		}),
		cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eqfuzz_cycles_total",
			Help: "Search cycles by outcome",
		}, []string{"outcome"}),
		corpusSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "eqfuzz_corpus_size",
			Help: "Assignments currently held in the corpus",
		}),
		bestDifference: factory.NewGauge(prometheus.GaugeOpts{
			Name: "eqfuzz_best_difference",
			Help: "Smallest accepted difference between the two expressions",
		}),
		evalDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "eqfuzz_evaluation_duration_seconds",
			Help:    "Time to score one candidate",
			Buckets: []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1},
		}),
	}
}

// ObserveCycle counts one search cycle with the given outcome label.
func (m *Metrics) ObserveCycle(outcome string) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(outcome).Inc()
}

// ObserveEvaluation records one scored candidate.
func (m *Metrics) ObserveEvaluation(d time.Duration) {
	if m == nil {
		return
	}
	m.evaluations.Inc()
	m.evalDuration.Observe(d.Seconds())
}

// ObserveAccept records the corpus size and best difference after an acceptance.
func (m *Metrics) ObserveAccept(corpusSize int, diff float64) {
	if m == nil {
		return
	}
	m.corpusSize.Set(float64(corpusSize))
	m.bestDifference.Set(diff)
}

// SetCorpusSize records the corpus size without an acceptance (initial seed).
func (m *Metrics) SetCorpusSize(n int) {
	if m == nil {
		return
	}
	m.corpusSize.Set(float64(n))
}

// Cycles exposes the per-outcome cycle counter.
func (m *Metrics) Cycles() *prometheus.CounterVec { return m.cycles }
