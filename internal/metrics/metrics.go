package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "agentq"

var (
	TaskEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_enqueued_total",
			Help:      "Total number of tasks submitted to the queue.",
		},
		[]string{"task_type"},
	)

	TaskDispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_dispatched_total",
			Help:      "Total number of tasks handed to agents.",
		},
		[]string{"task_type"},
	)

	TaskCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_completed_total",
			Help:      "Total number of task results recorded, labeled by final status.",
		},
		[]string{"task_type", "status"},
	)

	TaskExecutionSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_execution_seconds",
			Help:      "Agent-reported task execution time (seconds).",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600, 1800, 3600},
		},
		[]string{"task_type", "status"},
	)

	AgentRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_registrations_total",
			Help:      "Total number of agent registrations, labeled by agent type.",
		},
		[]string{"agent_type"},
	)
)

func init() {
	prometheus.MustRegister(
		TaskEnqueuedTotal,
		TaskDispatchedTotal,
		TaskCompletedTotal,
		TaskExecutionSeconds,
		AgentRegistrationsTotal,
	)
}
