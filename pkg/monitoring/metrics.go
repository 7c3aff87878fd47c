package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

// Domain-specific metric collectors.
//
// These complement the generic controller-runtime metrics (reconcile counts,
// durations, work queue depth, etc.) with operator-specific state that the
// framework cannot know about.
var (
	jobInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kalavai_operator_job_info",
			Help: "Info-style metric for KalavaiJob discovery and correlation id tracking. Always 1.",
		},
		[]string{"name", "namespace", "job_id"},
	)

	jobPodRestarts = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kalavai_operator_job_pod_restarts",
			Help: "Summed container restart count of one pod belonging to a KalavaiJob.",
		},
		[]string{"job", "namespace", "pod"},
	)

	jobPodCrashEvents = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kalavai_operator_job_pod_crash_events",
			Help: "Number of retained crash events for one pod belonging to a KalavaiJob.",
		},
		[]string{"job", "namespace", "pod"},
	)
)

func init() {
	metrics.Registry.MustRegister(
		jobInfo,
		jobPodRestarts,
		jobPodCrashEvents,
	)
}
