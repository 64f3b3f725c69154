package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus instruments.
type Metrics struct {
	Runs            *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	SignalsDetected prometheus.Gauge
	WarningsIssued  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "analytics",
			Name:      "pipeline_runs_total",
			Help:      "Analysis runs by outcome.",
		}, []string{"status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "analytics",
			Name:      "pipeline_run_duration_seconds",
			Help:      "Wall-clock duration of a full analysis run.",
			Buckets:   prometheus.DefBuckets,
		}),
		SignalsDetected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "analytics",
			Name:      "signals_detected",
			Help:      "Signals found by the most recent run.",
		}),
		WarningsIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "analytics",
			Name:      "warnings_issued_total",
			Help:      "Early warnings raised across all runs.",
		}),
	}
}
