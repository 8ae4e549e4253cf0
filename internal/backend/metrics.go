package backend

import "github.com/prometheus/client_golang/prometheus"

var probeFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jsengine_backend_probe_failures_total",
		Help: "Total number of failed runtime availability probes.",
	},
	[]string{"engine"},
)

func init() {
	prometheus.MustRegister(probeFailures)
}
