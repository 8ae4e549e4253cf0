package engine

import "github.com/prometheus/client_golang/prometheus"

var (
	evaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jsengine_evaluations_total",
			Help: "Total number of script evaluations by engine and outcome.",
		},
		[]string{"engine", "status"},
	)

	evaluationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jsengine_evaluation_duration_seconds",
			Help:    "Script evaluation duration in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"engine"},
	)

	crossMismatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jsengine_cross_mismatches_total",
			Help: "Total number of evaluations whose output differed across engines.",
		},
	)
)

func init() {
	prometheus.MustRegister(evaluationsTotal)
	prometheus.MustRegister(evaluationDuration)
	prometheus.MustRegister(crossMismatches)
}
