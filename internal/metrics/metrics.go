// Package metrics exports pipeline diagnostics to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rcliao/buzzbuster/internal/pipeline"
)

const namespace = "buzzbuster"

// Pipeline is a pipeline.Diagnostics sink backed by Prometheus collectors.
type Pipeline struct {
	// EventsTotal counts handled notifications by outcome.
	EventsTotal *prometheus.CounterVec

	// SuppressedTotal counts suppressed notifications by match type.
	SuppressedTotal *prometheus.CounterVec

	// FailuresTotal counts events that carried an error, by outcome.
	FailuresTotal *prometheus.CounterVec

	// ProcessingDuration is the worker time spent per event.
	ProcessingDuration prometheus.Histogram
}

var _ pipeline.Diagnostics = (*Pipeline)(nil)

// NewPipeline registers the pipeline collectors with reg.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	f := promauto.With(reg)
	return &Pipeline{
		EventsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "events_total",
			Help:      "Total number of notification events handled",
		}, []string{"outcome"}),
		SuppressedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "suppressed_total",
			Help:      "Total number of suppressed notifications",
		}, []string{"match_type"}),
		FailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "failures_total",
			Help:      "Total number of notification events that hit an error",
		}, []string{"outcome"}),
		ProcessingDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "processing_duration_seconds",
			Help:      "Notification processing duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

func (p *Pipeline) Observe(ev pipeline.Event) {
	outcome := ev.Outcome.String()
	p.EventsTotal.WithLabelValues(outcome).Inc()
	if ev.Outcome == pipeline.OutcomeSuppressed {
		p.SuppressedTotal.WithLabelValues(string(ev.MatchType)).Inc()
	}
	if ev.Err != nil {
		p.FailuresTotal.WithLabelValues(outcome).Inc()
	}
	if ev.Duration > 0 {
		p.ProcessingDuration.Observe(ev.Duration.Seconds())
	}
}

// Handler serves the collectors registered with g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
