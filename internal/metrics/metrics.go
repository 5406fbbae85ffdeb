// Package metrics registers Prometheus instruments for the pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	adapterRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "genarrative",
		Subsystem: "adapter",
		Name:      "requests_total",
		Help:      "Capability adapter calls by modality and outcome.",
	}, []string{"modality", "outcome"})

	adapterDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "genarrative",
		Subsystem: "adapter",
		Name:      "duration_seconds",
		Help:      "Capability adapter call latency.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"modality"})

	workflowRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "genarrative",
		Subsystem: "workflow",
		Name:      "runs_total",
		Help:      "Pipeline runs by terminal status.",
	}, []string{"status"})
)

// ObserveAdapterCall records one capability adapter invocation.
func ObserveAdapterCall(modality string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	adapterRequests.WithLabelValues(modality, outcome).Inc()
	adapterDuration.WithLabelValues(modality).Observe(time.Since(start).Seconds())
}

// ObserveWorkflowRun records one finished pipeline run.
func ObserveWorkflowRun(status string) {
	workflowRuns.WithLabelValues(status).Inc()
}
