package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the Prometheus metrics for the reading assessment
// service. It carries its own prometheus registry so tests can build as
// many instances as they like without duplicate registration panics.
type Registry struct {
	registry *prometheus.Registry

	Attempts             *prometheus.CounterVec
	TranscriptionSeconds *prometheus.HistogramVec
	ScoringAccuracy      prometheus.Histogram
}

// NewRegistry creates and registers all service metrics.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		Attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fitenglish_attempts_total",
				Help: "Total reading attempts by provider and outcome",
			},
			[]string{"provider", "status"},
		),

		TranscriptionSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fitenglish_transcription_seconds",
				Help:    "Wall clock duration of transcription calls in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"provider"},
		),

		ScoringAccuracy: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fitenglish_scoring_accuracy",
				Help:    "Distribution of accuracy scores handed to learners",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),
	}

	r.registry.MustRegister(
		r.Attempts,
		r.TranscriptionSeconds,
		r.ScoringAccuracy,
	)

	return r
}

// RecordAttempt counts one attempt outcome.
func (r *Registry) RecordAttempt(provider, status string) {
	r.Attempts.WithLabelValues(provider, status).Inc()
}

// ObserveTranscription records how long a transcription call took.
func (r *Registry) ObserveTranscription(provider string, d time.Duration) {
	r.TranscriptionSeconds.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveAccuracy records a score handed back to a learner.
func (r *Registry) ObserveAccuracy(accuracy int) {
	r.ScoringAccuracy.Observe(float64(accuracy))
}

// Handler exposes the registry in Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
