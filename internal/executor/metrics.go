package executor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Task status label values
const (
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
)

var (
	tasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batchrun_tasks_total",
			Help: "Total number of tasks that completed, by substrate and status.",
		},
		[]string{"substrate", "status"},
	)

	taskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "batchrun_task_duration_seconds",
			Help:    "Duration of successful tasks as measured inside the worker.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"substrate"},
	)

	batchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batchrun_batches_total",
			Help: "Total number of batches fully resolved.",
		},
		[]string{"substrate"},
	)

	cancelledTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batchrun_cancelled_tasks_total",
			Help: "Total number of queued tasks cancelled after a sibling failed.",
		},
		[]string{"substrate"},
	)

	activeWorkers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "batchrun_active_workers",
			Help: "Number of pool workers currently alive.",
		},
		[]string{"substrate"},
	)
)

func init() {
	prometheus.MustRegister(tasksTotal, taskDuration, batchesTotal, cancelledTasks, activeWorkers)
}
