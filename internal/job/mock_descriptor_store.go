package job

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockDescriptorStore implements the DescriptorStore interface for testing
type MockDescriptorStore struct {
	mutex          sync.RWMutex
	descriptors    map[uuid.UUID]*Descriptor
	SaveFn         func(ctx context.Context, j Job) error
	UpdateStatusFn func(ctx context.Context, jobID uuid.UUID, status Status, errorMsg string) error
}

// NewMockDescriptorStore creates a new MockDescriptorStore with default implementations
func NewMockDescriptorStore() *MockDescriptorStore {
	store := &MockDescriptorStore{
		descriptors: make(map[uuid.UUID]*Descriptor),
	}

	store.SaveFn = func(ctx context.Context, j Job) error {
		store.mutex.Lock()
		defer store.mutex.Unlock()

		now := time.Now().UTC()
		store.descriptors[j.ID()] = &Descriptor{
			ID:         j.ID(),
			Type:       j.Type(),
			Payload:    j.Payload(),
			Status:     j.Status(),
			EnqueuedAt: now,
			UpdatedAt:  now,
		}
		return nil
	}

	store.UpdateStatusFn = func(ctx context.Context, jobID uuid.UUID, status Status, errorMsg string) error {
		store.mutex.Lock()
		defer store.mutex.Unlock()

		desc, exists := store.descriptors[jobID]
		if !exists {
			return nil // not-found is a no-op for testing simplicity
		}
		desc.Status = status
		desc.ErrorMessage = errorMsg
		desc.UpdatedAt = time.Now().UTC()
		return nil
	}

	return store
}

// SaveJob persists a job descriptor to the mock store
func (s *MockDescriptorStore) SaveJob(ctx context.Context, j Job) error {
	return s.SaveFn(ctx, j)
}

// UpdateJobStatus updates the status of a descriptor in the mock store
func (s *MockDescriptorStore) UpdateJobStatus(
	ctx context.Context,
	jobID uuid.UUID,
	status Status,
	errorMsg string,
) error {
	return s.UpdateStatusFn(ctx, jobID, status, errorMsg)
}

// GetQueuedJobs retrieves all descriptors with "queued" status
func (s *MockDescriptorStore) GetQueuedJobs(ctx context.Context) ([]*Descriptor, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var queued []*Descriptor
	for _, desc := range s.descriptors {
		if desc.Status == StatusQueued {
			copied := *desc
			queued = append(queued, &copied)
		}
	}
	return queued, nil
}

// GetRunningJobs retrieves descriptors with "running" status
func (s *MockDescriptorStore) GetRunningJobs(ctx context.Context, olderThan time.Duration) ([]*Descriptor, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var running []*Descriptor
	now := time.Now().UTC()
	for _, desc := range s.descriptors {
		if desc.Status == StatusRunning {
			if olderThan == 0 || now.Sub(desc.UpdatedAt) > olderThan {
				copied := *desc
				running = append(running, &copied)
			}
		}
	}
	return running, nil
}

// GetDescriptor returns the stored descriptor for inspection in tests
func (s *MockDescriptorStore) GetDescriptor(jobID uuid.UUID) (*Descriptor, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	desc, ok := s.descriptors[jobID]
	if !ok {
		return nil, false
	}
	copied := *desc
	return &copied, true
}

// WithTx implements DescriptorStore.WithTx for the mock store
// In the mock implementation, we just return the same store instance
func (s *MockDescriptorStore) WithTx(tx *sql.Tx) DescriptorStore {
	return s
}
