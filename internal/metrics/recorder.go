// Package metrics exposes Prometheus instrumentation for simulation runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes used as the "outcome" label.
const (
	OutcomeCompleted = "completed"
	OutcomeDeclined  = "declined"
	OutcomeFailed    = "failed"
)

// Recorder records pipeline outcomes. A nil *Recorder is a no-op.
type Recorder struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	points      prometheus.Histogram
	validations *prometheus.CounterVec
}

// NewRecorder creates a recorder backed by its own registry, so several
// recorders can coexist in one process (tests, embedded use).
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wavesim",
			Name:      "runs_total",
			Help:      "Simulation runs by outcome.",
		}, []string{"outcome"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wavesim",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full compile/validate/optimize/run pipeline.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
		}, []string{"outcome"}),
		points: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wavesim",
			Name:      "generated_points",
			Help:      "Number of samples produced per completed run.",
			Buckets:   prometheus.ExponentialBuckets(100, 2, 10),
		}),
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wavesim",
			Name:      "validations_total",
			Help:      "Parameter validations by reason.",
		}, []string{"reason"}),
	}
}

// ObserveRun records one pipeline execution.
func (r *Recorder) ObserveRun(outcome string, points int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(outcome).Inc()
	r.runDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if outcome == OutcomeCompleted {
		r.points.Observe(float64(points))
	}
}

// ObserveValidation records one validation result by its reason string.
func (r *Recorder) ObserveValidation(reason string) {
	if r == nil {
		return
	}
	r.validations.WithLabelValues(reason).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the recorder's metrics in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
