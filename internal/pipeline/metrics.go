package pipeline

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects pipeline counters. A nil *Metrics records nothing.
type Metrics struct {
	framesProcessed prometheus.Counter
	effectApplied   *prometheus.CounterVec
	effectFailures  *prometheus.CounterVec
	effectDuration  *prometheus.HistogramVec
}

// NewMetrics creates the pipeline collectors and registers them with registerer
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		framesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frameforge_frames_processed_total",
			Help: "Number of frames written to the output stream",
		}),
		effectApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "frameforge_effect_applied_total",
			Help: "Number of successful effect applications by effect name",
		}, []string{"effect"}),
		effectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "frameforge_effect_failures_total",
			Help: "Number of failed effect applications by effect name",
		}, []string{"effect"}),
		effectDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "frameforge_effect_duration_seconds",
			Help:    "Time spent in a single effect application",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"effect"}),
	}

	err := errors.Join(
		registerer.Register(m.framesProcessed),
		registerer.Register(m.effectApplied),
		registerer.Register(m.effectFailures),
		registerer.Register(m.effectDuration),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) frameWritten() {
	if m == nil {
		return
	}
	m.framesProcessed.Inc()
}

func (m *Metrics) effectDone(effect string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.effectDuration.WithLabelValues(effect).Observe(elapsed.Seconds())
	if err != nil {
		m.effectFailures.WithLabelValues(effect).Inc()
		return
	}
	m.effectApplied.WithLabelValues(effect).Inc()
}
