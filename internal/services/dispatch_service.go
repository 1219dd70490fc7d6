package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agentsched/agentq/internal/metrics"
	"github.com/agentsched/agentq/pkg/domain"
	"github.com/agentsched/agentq/pkg/persistence"
)

// DispatchService is the scheduling facade: it keeps the durable task record
// and the pending queue consistent, and maintains the registry's view of how
// busy each agent is.
type DispatchService interface {
	Submit(ctx context.Context, task *domain.WorkerTask) (*domain.WorkerTask, error)
	Next(ctx context.Context, agentID string) (*domain.WorkerTask, bool, error)
	Start(ctx context.Context, taskID string) error
	Complete(ctx context.Context, result *domain.WorkerTaskResult) error
	Cancel(ctx context.Context, taskID string) error

	GetTask(ctx context.Context, taskID string) (*domain.WorkerTask, error)
	GetResult(ctx context.Context, taskID string) (*domain.WorkerTaskResult, error)
	GetStatus(ctx context.Context, taskID string) (domain.TaskStatus, error)
	QueueDepth(ctx context.Context) (int64, error)

	RegisterAgent(ctx context.Context, caps *domain.AgentCapabilities) error
	UnregisterAgent(ctx context.Context, agentID string) error
	Heartbeat(ctx context.Context, agentID string) error
	Agents(ctx context.Context) ([]*domain.AgentInfo, error)
	AgentsByCapability(ctx context.Context, name string) ([]*domain.AgentInfo, error)
	AgentsByType(ctx context.Context, agentType string) ([]*domain.AgentInfo, error)
}

type dispatchService struct {
	backend persistence.Backend
	logger  *slog.Logger
	now     func() time.Time
}

func NewDispatchService(backend persistence.Backend, logger *slog.Logger, now func() time.Time) DispatchService {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &dispatchService{backend: backend, logger: logger, now: now}
}

func (s *dispatchService) Submit(ctx context.Context, task *domain.WorkerTask) (*domain.WorkerTask, error) {
	if task == nil {
		return nil, fmt.Errorf("%w: nil task", persistence.ErrInvalid)
	}
	task = task.Clone()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = s.now().UTC()
	}

	ctx, span := otel.Tracer("agentq/dispatch").Start(ctx, "agentq.task.submit",
		trace.WithAttributes(
			attribute.String("agentq.task_id", task.ID),
			attribute.String("agentq.task_type", task.Type),
			attribute.Int("agentq.priority", task.Priority),
		),
	)
	defer span.End()

	if err := s.backend.TaskStore().Save(ctx, task); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.backend.TaskQueue().Enqueue(ctx, task); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.TaskEnqueuedTotal.WithLabelValues(task.Type).Inc()
	s.logger.Info("task submitted", "taskId", task.ID, "type", task.Type, "priority", task.Priority)
	return task, nil
}

func (s *dispatchService) Next(ctx context.Context, agentID string) (*domain.WorkerTask, bool, error) {
	task, ok, err := s.backend.TaskQueue().Dequeue(ctx, agentID)
	if err != nil || !ok {
		return nil, false, err
	}

	if err := s.backend.TaskStore().UpdateStatus(ctx, task.ID, domain.StatusAssigned); err != nil {
		s.logger.Warn("mark task assigned failed", "taskId", task.ID, "err", err)
	}
	if agentID != "" {
		s.bumpAgentLoad(ctx, agentID, +1)
	}

	metrics.TaskDispatchedTotal.WithLabelValues(task.Type).Inc()
	s.logger.Info("task dispatched", "taskId", task.ID, "type", task.Type, "agentId", agentID)
	return task, true, nil
}

func (s *dispatchService) Start(ctx context.Context, taskID string) error {
	return s.backend.TaskStore().UpdateStatus(ctx, taskID, domain.StatusInProgress)
}

func (s *dispatchService) Complete(ctx context.Context, result *domain.WorkerTaskResult) error {
	if result == nil {
		return fmt.Errorf("%w: nil result", persistence.ErrInvalid)
	}
	result = result.Clone()
	if result.CompletedAt.IsZero() {
		result.CompletedAt = s.now().UTC()
	}

	ctx, span := otel.Tracer("agentq/dispatch").Start(ctx, "agentq.task.complete",
		trace.WithAttributes(
			attribute.String("agentq.task_id", result.TaskID),
			attribute.String("agentq.agent_id", result.AgentID),
			attribute.Bool("agentq.success", result.Success),
		),
	)
	defer span.End()

	taskType := "unknown"
	if task, err := s.backend.TaskStore().Get(ctx, result.TaskID); err == nil {
		taskType = task.Type
	}

	if err := s.backend.TaskStore().SaveResult(ctx, result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if result.AgentID != "" {
		s.bumpAgentLoad(ctx, result.AgentID, -1)
	}

	status := result.Status().String()
	metrics.TaskCompletedTotal.WithLabelValues(taskType, status).Inc()
	if d := result.ExecutionTime.Seconds(); d > 0 {
		metrics.TaskExecutionSeconds.WithLabelValues(taskType, status).Observe(d)
	}
	s.logger.Info("task completed", "taskId", result.TaskID, "status", status, "agentId", result.AgentID)
	return nil
}

func (s *dispatchService) Cancel(ctx context.Context, taskID string) error {
	return s.backend.TaskStore().UpdateStatus(ctx, taskID, domain.StatusCancelled)
}

// bumpAgentLoad shifts the agent's task count by delta and flips its status
// between Available and Busy around its concurrency limit. Registry failures
// only degrade load accounting, never the dispatch itself.
func (s *dispatchService) bumpAgentLoad(ctx context.Context, agentID string, delta int) {
	registry := s.backend.AgentRegistry()
	info, err := registry.GetByID(ctx, agentID)
	if err != nil {
		return
	}
	count := info.CurrentTaskCount + delta
	if count < 0 {
		count = 0
	}
	if err := registry.UpdateTaskCount(ctx, agentID, count); err != nil {
		s.logger.Warn("update agent task count failed", "agentId", agentID, "err", err)
		return
	}
	max := info.Capabilities.MaxConcurrentTasks
	if max > 0 && info.Status != domain.AgentOffline {
		status := domain.AgentAvailable
		if count >= max {
			status = domain.AgentBusy
		}
		if err := registry.UpdateStatus(ctx, agentID, status); err != nil {
			s.logger.Warn("update agent status failed", "agentId", agentID, "err", err)
		}
	}
}

func (s *dispatchService) GetTask(ctx context.Context, taskID string) (*domain.WorkerTask, error) {
	return s.backend.TaskStore().Get(ctx, taskID)
}

func (s *dispatchService) GetResult(ctx context.Context, taskID string) (*domain.WorkerTaskResult, error) {
	return s.backend.TaskStore().GetResult(ctx, taskID)
}

func (s *dispatchService) GetStatus(ctx context.Context, taskID string) (domain.TaskStatus, error) {
	return s.backend.TaskStore().GetStatus(ctx, taskID)
}

func (s *dispatchService) QueueDepth(ctx context.Context) (int64, error) {
	return s.backend.TaskQueue().PendingCount(ctx)
}

func (s *dispatchService) RegisterAgent(ctx context.Context, caps *domain.AgentCapabilities) error {
	if err := s.backend.AgentRegistry().Register(ctx, caps); err != nil {
		return err
	}
	metrics.AgentRegistrationsTotal.WithLabelValues(caps.AgentType).Inc()
	s.logger.Info("agent registered", "agentId", caps.AgentID, "type", caps.AgentType)
	return nil
}

func (s *dispatchService) UnregisterAgent(ctx context.Context, agentID string) error {
	return s.backend.AgentRegistry().Unregister(ctx, agentID)
}

func (s *dispatchService) Heartbeat(ctx context.Context, agentID string) error {
	return s.backend.AgentRegistry().RecordHeartbeat(ctx, agentID)
}

func (s *dispatchService) Agents(ctx context.Context) ([]*domain.AgentInfo, error) {
	return s.backend.AgentRegistry().GetAll(ctx)
}

func (s *dispatchService) AgentsByCapability(ctx context.Context, name string) ([]*domain.AgentInfo, error) {
	return s.backend.AgentRegistry().FindByCapability(ctx, name)
}

func (s *dispatchService) AgentsByType(ctx context.Context, agentType string) ([]*domain.AgentInfo, error) {
	return s.backend.AgentRegistry().FindByType(ctx, agentType)
}
