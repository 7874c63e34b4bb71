package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Sniplyy/VibeWall/internal/generation"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrNilGenerator = errors.New("generator cannot be nil")
	ErrNilLogger    = errors.New("logger cannot be nil")
	ErrEmptyTaskID  = errors.New("task ID cannot be empty")
)

// Generator produces media for a request. The orchestrator's Coordinator
// satisfies it.
type Generator interface {
	GenerateN(ctx context.Context, req generation.Request, count int) ([]generation.Media, error)
}

// GenerationResult is a point-in-time view of a GenerationTask.
type GenerationResult struct {
	ID        uuid.UUID
	Status    TaskStatus
	Mode      generation.Mode
	Media     []generation.Media
	Failure   *generation.ClassifiedError
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GenerationTask runs one generation request through a Generator.
type GenerationTask struct {
	id        uuid.UUID
	request   generation.Request
	count     int
	generator Generator
	logger    *slog.Logger
	createdAt time.Time

	mu        sync.RWMutex
	status    TaskStatus
	media     []generation.Media
	failure   *generation.ClassifiedError
	updatedAt time.Time
}

// NewGenerationTask creates a pending task. count is the number of image
// variations; zero uses the generator's default.
func NewGenerationTask(
	id uuid.UUID,
	req generation.Request,
	count int,
	generator Generator,
	logger *slog.Logger,
) (*GenerationTask, error) {
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if id == uuid.Nil {
		return nil, ErrEmptyTaskID
	}
	if count < 0 {
		return nil, fmt.Errorf("variation count cannot be negative: %d", count)
	}

	now := time.Now().UTC()
	return &GenerationTask{
		id:        id,
		request:   req,
		count:     count,
		generator: generator,
		logger:    logger.With("task_type", TaskTypeGeneration, "task_id", id, "mode", req.Mode),
		createdAt: now,
		status:    TaskStatusPending,
		updatedAt: now,
	}, nil
}

// ID returns the task's unique identifier
func (t *GenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *GenerationTask) Type() string {
	return TaskTypeGeneration
}

// Status returns the current task status
func (t *GenerationTask) Status() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Result returns a snapshot of the task.
func (t *GenerationTask) Result() GenerationResult {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return GenerationResult{
		ID:        t.id,
		Status:    t.status,
		Mode:      t.request.Mode,
		Media:     t.media,
		Failure:   t.failure,
		CreatedAt: t.createdAt,
		UpdatedAt: t.updatedAt,
	}
}

// Execute runs the generation. Every failure is stored as a
// ClassifiedError so clients can tell an auth problem from an empty quota.
func (t *GenerationTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)
	t.logger.InfoContext(ctx, "starting generation task")

	if err := ctx.Err(); err != nil {
		return t.fail(ctx, fmt.Errorf("task cancelled before start: %w", err))
	}

	start := time.Now()
	media, err := t.generator.GenerateN(ctx, t.request, t.count)
	if err != nil {
		return t.fail(ctx, err)
	}

	t.mu.Lock()
	t.media = media
	t.status = TaskStatusCompleted
	t.updatedAt = time.Now().UTC()
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "generation task completed",
		"media_count", len(media),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (t *GenerationTask) fail(ctx context.Context, err error) error {
	classified := generation.Classify(err)

	t.mu.Lock()
	t.failure = classified
	t.status = TaskStatusFailed
	t.updatedAt = time.Now().UTC()
	t.mu.Unlock()

	t.logger.ErrorContext(ctx, "generation task failed",
		"error", err,
		"error_kind", classified.Kind.String())
	return classified
}

func (t *GenerationTask) setStatus(status TaskStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
	t.updatedAt = time.Now().UTC()
}

// GenerationTaskFactory creates GenerationTask instances
type GenerationTaskFactory struct {
	generator Generator
	logger    *slog.Logger
}

// NewGenerationTaskFactory creates a new factory for GenerationTasks
func NewGenerationTaskFactory(generator Generator, logger *slog.Logger) *GenerationTaskFactory {
	return &GenerationTaskFactory{
		generator: generator,
		logger:    logger.With("component", "generation_task_factory"),
	}
}

// CreateTask creates a GenerationTask with the given ID.
func (f *GenerationTaskFactory) CreateTask(id uuid.UUID, req generation.Request, count int) (*GenerationTask, error) {
	return NewGenerationTask(id, req, count, f.generator, f.logger)
}

// LookupGeneration returns the snapshot of a generation task held by store.
func LookupGeneration(ctx context.Context, store TaskStore, id uuid.UUID) (GenerationResult, error) {
	record, err := store.GetTask(ctx, id)
	if err != nil {
		return GenerationResult{}, err
	}
	gt, ok := record.Task.(*GenerationTask)
	if !ok {
		return GenerationResult{}, fmt.Errorf("%w: %s is a %s task", ErrTaskNotFound, id, record.Task.Type())
	}
	result := gt.Result()
	// The runner owns lifecycle transitions it observed but the task did
	// not, such as a task that never got a worker before shutdown.
	if result.Status == TaskStatusPending && record.Status.Terminal() {
		result.Status = record.Status
	}
	return result, nil
}
