package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes optimization pipeline metrics via Prometheus.
type Recorder struct {
	optimizations  *prometheus.CounterVec
	solverFailures *prometheus.CounterVec
	fetchFailures  *prometheus.CounterVec
	universeSize   prometheus.Histogram
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		optimizations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portopt_optimizations_total",
				Help: "Total number of optimization runs",
			},
			[]string{"outcome"},
		),
		solverFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portopt_solver_failures_total",
				Help: "Total number of infeasible or failed frontier points",
			},
			[]string{"kind"},
		),
		fetchFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portopt_fetch_failures_total",
				Help: "Total number of market data fetch failures",
			},
			[]string{"source"},
		),
		universeSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "portopt_universe_size",
				Help:    "Number of assets entering the optimizer",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portopt_operation_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordOptimization records a completed optimization run.
func (r *Recorder) RecordOptimization(outcome string) {
	r.optimizations.WithLabelValues(outcome).Inc()
}

// RecordSolverFailure records an infeasible or failed frontier point.
func (r *Recorder) RecordSolverFailure(kind string) {
	r.solverFailures.WithLabelValues(kind).Inc()
}

// RecordFetchFailure records a market data fetch failure.
func (r *Recorder) RecordFetchFailure(source string) {
	r.fetchFailures.WithLabelValues(source).Inc()
}

// RecordUniverseSize records how many assets entered the optimizer.
func (r *Recorder) RecordUniverseSize(n int) {
	r.universeSize.Observe(float64(n))
}

// RecordLatency records the duration of a pipeline stage.
func (r *Recorder) RecordLatency(op string, d time.Duration) {
	r.latency.WithLabelValues(op).Observe(d.Seconds())
}
