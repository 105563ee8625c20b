// Package metrics holds the Prometheus collectors shared by the pipeline
// and the job server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Evaluations counts objective evaluations by strategy and objective.
	Evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lightmix_evaluations_total",
		Help: "Total objective evaluations by strategy and objective",
	}, []string{"strategy", "objective"})

	// Runs counts finished search runs by strategy and result (ok, error, cancelled).
	Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lightmix_runs_total",
		Help: "Total search runs by strategy and result",
	}, []string{"strategy", "result"})

	// RunDuration tracks wall time of a search run.
	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lightmix_run_duration_seconds",
		Help:    "Search run duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
	}, []string{"strategy"})

	// Jobs counts server jobs reaching a terminal state.
	Jobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lightmix_jobs_total",
		Help: "Total server jobs by final state",
	}, []string{"state"})

	// RunningJobs is the number of jobs currently executing.
	RunningJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lightmix_jobs_running",
		Help: "Number of server jobs currently running",
	})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
