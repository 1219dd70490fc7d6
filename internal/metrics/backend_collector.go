package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentsched/agentq/pkg/persistence"
)

// backendCollector reads gauges straight from the persistence backend at
// scrape time, so depth and agent counts stay accurate regardless of which
// process mutated them last.
type backendCollector struct {
	backend persistence.Backend
	logger  *slog.Logger

	queueDepthDesc *prometheus.Desc
	agentsDesc     *prometheus.Desc
	agentTasksDesc *prometheus.Desc
}

func newBackendCollector(backend persistence.Backend, logger *slog.Logger) *backendCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &backendCollector{
		backend: backend,
		logger:  logger,
		queueDepthDesc: prometheus.NewDesc(
			"agentq_queue_depth",
			"Current number of pending tasks in the queue.",
			nil,
			nil,
		),
		agentsDesc: prometheus.NewDesc(
			"agentq_agents",
			"Current number of registered agents by status.",
			[]string{"status"},
			nil,
		),
		agentTasksDesc: prometheus.NewDesc(
			"agentq_agent_tasks_in_flight",
			"Sum of current task counts across registered agents.",
			nil,
			nil,
		),
	}
}

func (c *backendCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.queueDepthDesc
	ch <- c.agentsDesc
	ch <- c.agentTasksDesc
}

func (c *backendCollector) Collect(ch chan<- prometheus.Metric) {
	if c.backend == nil {
		return
	}

	// Keep backend reads bounded so scrapes do not hang.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	depth, err := c.backend.TaskQueue().PendingCount(ctx)
	if err != nil {
		c.logger.Warn("prometheus backend collector failed", "err", err)
		return
	}
	emitGauge(ch, c.queueDepthDesc, float64(depth))

	agents, err := c.backend.AgentRegistry().GetAll(ctx)
	if err != nil {
		c.logger.Warn("prometheus backend collector failed", "err", err)
		return
	}
	byStatus := map[string]int{}
	inFlight := 0
	for _, a := range agents {
		byStatus[a.Status.String()]++
		inFlight += a.CurrentTaskCount
	}
	for status, n := range byStatus {
		emitGauge(ch, c.agentsDesc, float64(n), status)
	}
	emitGauge(ch, c.agentTasksDesc, float64(inFlight))
}

func emitGauge(ch chan<- prometheus.Metric, desc *prometheus.Desc, v float64, labelValues ...string) {
	m, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, v, labelValues...)
	if err != nil {
		return
	}
	ch <- m
}

var registerBackendCollectorOnce sync.Once

func RegisterBackendCollector(backend persistence.Backend, logger *slog.Logger) {
	registerBackendCollectorOnce.Do(func() {
		prometheus.MustRegister(newBackendCollector(backend, logger))
	})
}
