package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sniplyy/VibeWall/internal/platform/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForStatus polls store until taskID reaches want.
func waitForStatus(t *testing.T, store TaskStore, taskID uuid.UUID, want TaskStatus) TaskRecord {
	t.Helper()
	var record TaskRecord
	require.Eventually(t, func() bool {
		var err error
		record, err = store.GetTask(context.Background(), taskID)
		return err == nil && record.Status == want
	}, 2*time.Second, 10*time.Millisecond)
	return record
}

func TestTaskRunner_Submit(t *testing.T) {
	t.Parallel()

	t.Run("queue full marks task failed", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		config := DefaultTaskRunnerConfig()
		config.QueueSize = 1
		runner := NewTaskRunner(store, config, setupTestLogger())

		require.NoError(t, runner.Submit(context.Background(), newFakeTask(nil)))

		overflow := newFakeTask(nil)
		err := runner.Submit(context.Background(), overflow)

		assert.ErrorIs(t, err, ErrQueueFull)
		record, getErr := store.GetTask(context.Background(), overflow.ID())
		require.NoError(t, getErr)
		assert.Equal(t, TaskStatusFailed, record.Status)
	})

	t.Run("duplicate task", func(t *testing.T) {
		t.Parallel()

		runner := NewTaskRunner(NewMemoryStore(), DefaultTaskRunnerConfig(), setupTestLogger())
		task := newFakeTask(nil)
		require.NoError(t, runner.Submit(context.Background(), task))

		err := runner.Submit(context.Background(), task)
		assert.ErrorContains(t, err, "failed to save task")
	})

	t.Run("after stop", func(t *testing.T) {
		t.Parallel()

		runner := NewTaskRunner(NewMemoryStore(), DefaultTaskRunnerConfig(), setupTestLogger())
		require.NoError(t, runner.Stop(context.Background()))

		err := runner.Submit(context.Background(), newFakeTask(nil))
		assert.ErrorIs(t, err, ErrRunnerStopped)
		assert.ErrorIs(t, runner.Start(), ErrRunnerStopped)
	})
}

func TestTaskRunner_ProcessesTasks(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	m := metrics.New()
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), setupTestLogger())
	runner.SetMetrics(m)
	require.NoError(t, runner.Start())
	assert.Error(t, runner.Start(), "second start is rejected")

	ok := newFakeTask(nil)
	failing := newFakeTask(func(ctx context.Context) error { return errors.New("intentional test failure") })
	failures := make(chan uuid.UUID, 1)
	runner.SetErrorHandler(func(task Task, err error) { failures <- task.ID() })

	require.NoError(t, runner.Submit(context.Background(), ok))
	require.NoError(t, runner.Submit(context.Background(), failing))

	waitForStatus(t, store, ok.ID(), TaskStatusCompleted)
	record := waitForStatus(t, store, failing.ID(), TaskStatusFailed)
	assert.Equal(t, "intentional test failure", record.ErrorMsg)

	select {
	case id := <-failures:
		assert.Equal(t, failing.ID(), id)
	case <-time.After(2 * time.Second):
		t.Fatal("error handler was not called")
	}

	require.NoError(t, runner.Stop(context.Background()))
	assert.Zero(t, testutil.ToFloat64(m.TasksInFlight))
}

func TestTaskRunner_StopDrainsQueue(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	config := DefaultTaskRunnerConfig()
	config.WorkerCount = 1
	runner := NewTaskRunner(store, config, setupTestLogger())

	var tasks []*fakeTask
	for i := 0; i < 3; i++ {
		task := newFakeTask(nil)
		tasks = append(tasks, task)
		require.NoError(t, runner.Submit(context.Background(), task))
	}

	require.NoError(t, runner.Start())
	require.NoError(t, runner.Stop(context.Background()))

	for _, task := range tasks {
		record, err := store.GetTask(context.Background(), task.ID())
		require.NoError(t, err)
		assert.Equal(t, TaskStatusCompleted, record.Status)
	}
}

func TestTaskRunner_StopDeadlineCancelsTasks(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), setupTestLogger())
	require.NoError(t, runner.Start())

	started := make(chan struct{})
	stuck := newFakeTask(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, runner.Submit(context.Background(), stuck))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := runner.Stop(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	record, getErr := store.GetTask(context.Background(), stuck.ID())
	require.NoError(t, getErr)
	assert.Equal(t, TaskStatusFailed, record.Status)
}

func TestTaskRunner_GenerationTaskEndToEnd(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), setupTestLogger())
	require.NoError(t, runner.Start())
	defer func() { _ = runner.Stop(context.Background()) }()

	gen := &stubGenerator{err: errors.New("caller does not have permission")}
	task, err := NewGenerationTaskFactory(gen, setupTestLogger()).CreateTask(uuid.New(), imageRequest(), 0)
	require.NoError(t, err)
	require.NoError(t, runner.Submit(context.Background(), task))

	waitForStatus(t, store, task.ID(), TaskStatusFailed)
	result, err := LookupGeneration(context.Background(), store, task.ID())
	require.NoError(t, err)
	require.NotNil(t, result.Failure)
	assert.Equal(t, "API_KEY_INVALID", result.Failure.UserMessage())
}
