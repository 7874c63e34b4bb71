package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process TaskStore. Records live until Prune removes
// them or the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*TaskRecord
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]*TaskRecord),
		now:     time.Now,
	}
}

// SaveTask records task as pending. Saving the same ID twice is an error.
func (s *MemoryStore) SaveTask(_ context.Context, task Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[task.ID()]; exists {
		return fmt.Errorf("task %s already saved", task.ID())
	}
	now := s.now()
	s.records[task.ID()] = &TaskRecord{
		Task:      task,
		Status:    TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

// UpdateTaskStatus moves a task to status.
func (s *MemoryStore) UpdateTaskStatus(_ context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	record.Status = status
	record.ErrorMsg = errorMsg
	record.UpdatedAt = s.now()
	return nil
}

// GetTask returns a copy of the record for taskID.
func (s *MemoryStore) GetTask(_ context.Context, taskID uuid.UUID) (TaskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[taskID]
	if !ok {
		return TaskRecord{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	return *record, nil
}

// Prune drops terminal records last updated before cutoff and reports how
// many were removed.
func (s *MemoryStore) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, record := range s.records {
		if record.Status.Terminal() && record.UpdatedAt.Before(cutoff) {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}

var _ TaskStore = (*MemoryStore)(nil)
