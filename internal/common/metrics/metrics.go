// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlp_classifications_total",
			Help: "Classified messages by resulting intent",
		},
		[]string{"intent"},
	)

	ClassificationsDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nlp_classifications_degraded_total",
			Help: "Classifications that fell back to the degraded result",
		},
	)

	ClassificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nlp_classification_duration_seconds",
			Help:    "Time spent classifying one message",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
	)

	ClassificationCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlp_classification_cache_lookups_total",
			Help: "Classification cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	ServiceCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_service_calls_total",
			Help: "Calls to onboarding services by outcome (ok, error, mock)",
		},
		[]string{"service", "operation", "outcome"},
	)

	ServiceUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "onboarding_service_up",
			Help: "1 when the last health check of the service succeeded",
		},
		[]string{"service"},
	)
)

// Outcome labels for ServiceCalls.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeMock  = "mock"
)

// ObserveClassification records one classifier run.
func ObserveClassification(intent string, degraded bool, seconds float64) {
	Classifications.WithLabelValues(intent).Inc()
	if degraded {
		ClassificationsDegraded.Inc()
	}
	ClassificationDuration.Observe(seconds)
}

// ObserveJob records a finished job. An empty errorCode counts as completed.
func ObserveJob(taskType, errorCode string, d time.Duration) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(d.Seconds())
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}
