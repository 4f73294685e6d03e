package tasklog

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/halcyonlab/genstudio-api/internal/domain"
	"github.com/halcyonlab/genstudio-api/internal/store"
)

// MockTaskLogStore implements store.TaskLogStore in memory for testing.
type MockTaskLogStore struct {
	mutex    sync.RWMutex
	entries  []domain.TaskLogEntry
	AppendFn func(ctx context.Context, entry *domain.TaskLogEntry) error
}

// NewMockTaskLogStore creates a MockTaskLogStore with default behavior.
func NewMockTaskLogStore() *MockTaskLogStore {
	return &MockTaskLogStore{}
}

// Append persists one entry, or delegates to AppendFn when set.
func (m *MockTaskLogStore) Append(ctx context.Context, entry *domain.TaskLogEntry) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, entry)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

// ListByRunID returns entries for a run in insertion order.
func (m *MockTaskLogStore) ListByRunID(ctx context.Context, taskRunID uuid.UUID) ([]domain.TaskLogEntry, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []domain.TaskLogEntry
	for _, e := range m.entries {
		if e.TaskRunID == taskRunID {
			result = append(result, e)
		}
	}
	return result, nil
}

// WithTx returns the store unchanged; the mock has no transaction scope.
func (m *MockTaskLogStore) WithTx(_ *sql.Tx) store.TaskLogStore {
	return m
}

// Entries returns a copy of everything appended so far.
func (m *MockTaskLogStore) Entries() []domain.TaskLogEntry {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	out := make([]domain.TaskLogEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

var _ store.TaskLogStore = (*MockTaskLogStore)(nil)
