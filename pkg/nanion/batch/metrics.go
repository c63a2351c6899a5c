package batch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the batch collectors.
type Metrics struct {
	files    *prometheus.CounterVec
	duration prometheus.Histogram
	timeouts prometheus.Counter
	workers  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg when it
// is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nanion",
			Name:      "files_total",
			Help:      "Files processed, by batch stage and outcome.",
		}, []string{"stage", "outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nanion",
			Name:      "extract_duration_seconds",
			Help:      "Time spent extracting one file.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nanion",
			Name:      "batch_timeouts_total",
			Help:      "Runs that exceeded the monitoring timeout.",
		}),
		workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nanion",
			Name:      "batch_workers",
			Help:      "Workers used by the last run, 1 when sequential.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.files, m.duration, m.timeouts, m.workers)
	}
	return m
}
