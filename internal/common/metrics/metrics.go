// internal/common/metrics/metrics.go
package metrics

import (
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
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of job processing in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
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

	RiskVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_verdicts_total",
			Help: "Credit risk verdicts produced, by verdict",
		},
		[]string{"verdict"},
	)

	ReviewNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_review_notifications_total",
			Help: "Review notifications by channel and outcome",
		},
		[]string{"channel", "status"},
	)

	ArtifactsLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_artifacts_loaded",
			Help: "1 when the artifact was loaded at startup",
		},
		[]string{"artifact", "source"},
	)
)
