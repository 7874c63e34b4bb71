package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Sniplyy/VibeWall/internal/platform/metrics"
)

// ErrRunnerStopped is returned by Submit after Stop.
var ErrRunnerStopped = errors.New("task runner is stopped")

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// Retention is how long finished tasks stay queryable. Zero keeps them
	// forever.
	Retention time.Duration

	// PruneInterval defines how often finished tasks older than Retention
	// are dropped. If zero, defaults to 5 minutes
	PruneInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:   2,
		QueueSize:     100,
		Retention:     time.Hour,
		PruneInterval: 5 * time.Minute,
	}
}

// Pruner is implemented by stores that can drop old terminal tasks.
type Pruner interface {
	Prune(cutoff time.Time) int
}

// TaskRunner manages background task processing
type TaskRunner struct {
	store   TaskStore
	queue   *TaskQueue
	pool    *WorkerPool
	config  TaskRunnerConfig
	logger  *slog.Logger
	metrics *metrics.Metrics

	errHandler func(task Task, err error)

	mu      sync.Mutex
	started bool
	stopped bool
	janitor chan struct{}
	done    sync.WaitGroup
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.PruneInterval <= 0 {
		config.PruneInterval = 5 * time.Minute
	}
	logger = logger.With("component", "task_runner")

	r := &TaskRunner{
		store:  store,
		queue:  NewTaskQueue(config.QueueSize, logger),
		config: config,
		logger: logger,
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
		janitor: make(chan struct{}),
	}
	r.pool = NewWorkerPool(r.queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, r.processTask, logger)
	return r
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// SetMetrics records in-flight task counts on m.
func (r *TaskRunner) SetMetrics(m *metrics.Metrics) {
	r.metrics = m
}

// Submit records the task and queues it. A task that cannot be queued is
// marked failed so pollers see a final state.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	r.mu.Lock()
	stopped := r.stopped
	r.mu.Unlock()
	if stopped {
		return ErrRunnerStopped
	}

	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if err := r.queue.Enqueue(task); err != nil {
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			r.logger.Error("failed to mark unqueued task as failed", "task_id", task.ID(), "error", updateErr)
		}
		if errors.Is(err, ErrQueueClosed) {
			return ErrRunnerStopped
		}
		return err
	}
	return nil
}

// Start begins processing tasks
func (r *TaskRunner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return errors.New("task runner already started")
	}
	if r.stopped {
		return ErrRunnerStopped
	}
	r.started = true

	r.pool.Start()

	if pruner, ok := r.store.(Pruner); ok && r.config.Retention > 0 {
		r.done.Add(1)
		go r.pruneLoop(pruner)
	}
	return nil
}

// Stop stops accepting tasks and lets queued and running tasks finish
// until ctx is done, then cancels whatever is still running.
func (r *TaskRunner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	started := r.started
	r.mu.Unlock()

	r.queue.Close()
	close(r.janitor)
	defer r.done.Wait()

	if !started {
		return nil
	}

	drained := make(chan struct{})
	go func() {
		r.pool.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		r.pool.Stop()
		return nil
	case <-ctx.Done():
		r.logger.Warn("shutdown deadline reached, cancelling running tasks",
			"queued", r.queue.Len())
		r.pool.Stop()
		return ctx.Err()
	}
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(ctx context.Context, task Task, workerID int) {
	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""); err != nil {
		logger.Error("failed to update task status to processing", "error", err)
		return
	}

	r.metrics.TaskStarted()
	defer r.metrics.TaskFinished()

	logger.Info("processing task")
	err := task.Execute(ctx)

	// Status updates must land even when ctx was cancelled mid-task.
	statusCtx := context.WithoutCancel(ctx)
	if err != nil {
		if updateErr := r.store.UpdateTaskStatus(statusCtx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			logger.Error("failed to update task status to failed", "error", updateErr)
		}
		r.errHandler(task, err)
		return
	}

	logger.Info("task completed successfully")
	if updateErr := r.store.UpdateTaskStatus(statusCtx, task.ID(), TaskStatusCompleted, ""); updateErr != nil {
		logger.Error("failed to update task status to completed", "error", updateErr)
	}
}

// pruneLoop periodically drops finished tasks older than the retention period.
func (r *TaskRunner) pruneLoop(pruner Pruner) {
	defer r.done.Done()

	ticker := time.NewTicker(r.config.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.janitor:
			return
		case <-ticker.C:
			if removed := pruner.Prune(time.Now().Add(-r.config.Retention)); removed > 0 {
				r.logger.Info("pruned finished tasks", "count", removed)
			}
		}
	}
}

var _ Submitter = (*TaskRunner)(nil)
