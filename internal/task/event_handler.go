package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sniplyy/VibeWall/internal/events"
	"github.com/Sniplyy/VibeWall/internal/generation"
	"github.com/google/uuid"
)

// GenerationTaskCreator builds generation tasks. GenerationTaskFactory
// implements it.
type GenerationTaskCreator interface {
	CreateTask(id uuid.UUID, req generation.Request, count int) (*GenerationTask, error)
}

// Submitter accepts tasks for background execution. TaskRunner implements it.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler turns GenerationRequested events into queued
// GenerationTasks.
type TaskFactoryEventHandler struct {
	factory GenerationTaskCreator
	runner  Submitter
	logger  *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler that uses the given task factory
// to create tasks, and submits them to the provided task runner.
func NewTaskFactoryEventHandler(
	factory GenerationTaskCreator,
	runner Submitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent processes events by creating and submitting tasks.
func (h *TaskFactoryEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeGenerationRequested {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.GenerationRequested
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	logger := h.logger.With("task_id", payload.TaskID, "event_id", event.ID)

	task, err := h.factory.CreateTask(payload.TaskID, payload.Request, payload.Count)
	if err != nil {
		logger.Error("failed to create task", "error", err)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.runner.Submit(ctx, task); err != nil {
		logger.Error("failed to submit task", "error", err)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	logger.Info("task created and submitted",
		"mode", payload.Request.Mode,
		"variations", payload.Count)
	return nil
}

var _ events.Handler = (*TaskFactoryEventHandler)(nil)
