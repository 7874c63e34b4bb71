package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool(t *testing.T) {
	queue := NewTaskQueue(1, setupTestLogger())
	noop := func(context.Context, Task, int) {}

	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 5}, noop, setupTestLogger())
	assert.Equal(t, 5, pool.workerCount)

	pool = NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 0}, noop, setupTestLogger())
	assert.Equal(t, 1, pool.workerCount)

	pool = NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: -5}, noop, setupTestLogger())
	assert.Equal(t, 1, pool.workerCount)

	assert.Equal(t, 2, DefaultWorkerPoolConfig().WorkerCount)
}

func TestWorkerPool_DrainsClosedQueue(t *testing.T) {
	queue := NewTaskQueue(10, setupTestLogger())
	var mu sync.Mutex
	seen := make(map[uuid.UUID]int)

	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 3}, func(ctx context.Context, task Task, workerID int) {
		mu.Lock()
		seen[task.ID()] = workerID
		mu.Unlock()
	}, setupTestLogger())

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		task := newFakeTask(nil)
		ids = append(ids, task.ID())
		require.NoError(t, queue.Enqueue(task))
	}

	pool.Start()
	queue.Close()

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not exit after the queue drained")
	}

	mu.Lock()
	defer mu.Unlock()
	for _, id := range ids {
		assert.Contains(t, seen, id)
	}
}

func TestWorkerPool_StopCancelsRunningTasks(t *testing.T) {
	queue := NewTaskQueue(1, setupTestLogger())
	started := make(chan struct{})
	cancelled := make(chan struct{})

	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, func(ctx context.Context, task Task, workerID int) {
		close(started)
		<-ctx.Done()
		close(cancelled)
	}, setupTestLogger())

	require.NoError(t, queue.Enqueue(newFakeTask(nil)))
	pool.Start()
	<-started

	pool.Stop()

	select {
	case <-cancelled:
	default:
		t.Fatal("running task did not observe cancellation")
	}
}
