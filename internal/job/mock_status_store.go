package job

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStatusStore is an in-memory StatusStore implementation for testing
type MockStatusStore struct {
	mutex   sync.RWMutex
	records map[uuid.UUID]*StatusRecord

	// SetRunningFn overrides the default SetRunning behavior when set
	SetRunningFn func(ctx context.Context, jobID uuid.UUID) error
}

// NewMockStatusStore creates an empty MockStatusStore
func NewMockStatusStore() *MockStatusStore {
	return &MockStatusStore{
		records: make(map[uuid.UUID]*StatusRecord),
	}
}

// SetQueued creates the record in "queued" state
func (s *MockStatusStore) SetQueued(ctx context.Context, jobID uuid.UUID, meta map[string]string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now().UTC()
	s.records[jobID] = &StatusRecord{
		JobID:      jobID,
		Status:     StatusQueued,
		Meta:       meta,
		EnqueuedAt: now,
		UpdatedAt:  now,
	}
	return nil
}

// SetRunning transitions the record to "running"
func (s *MockStatusStore) SetRunning(ctx context.Context, jobID uuid.UUID) error {
	if s.SetRunningFn != nil {
		return s.SetRunningFn(ctx, jobID)
	}
	return s.update(jobID, func(r *StatusRecord) {
		r.Status = StatusRunning
	})
}

// SetFinished transitions the record to "finished" with its result payload
func (s *MockStatusStore) SetFinished(ctx context.Context, jobID uuid.UUID, result json.RawMessage) error {
	return s.update(jobID, func(r *StatusRecord) {
		r.Status = StatusFinished
		r.Result = result
	})
}

// SetFailed transitions the record to "failed" with an error message
func (s *MockStatusStore) SetFailed(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	return s.update(jobID, func(r *StatusRecord) {
		r.Status = StatusFailed
		r.Error = errMsg
	})
}

// Get performs a point lookup of the record
func (s *MockStatusStore) Get(ctx context.Context, jobID uuid.UUID) (*StatusRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	record, ok := s.records[jobID]
	if !ok {
		return nil, ErrStatusNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *MockStatusStore) update(jobID uuid.UUID, fn func(r *StatusRecord)) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	record, ok := s.records[jobID]
	if !ok {
		record = &StatusRecord{JobID: jobID, EnqueuedAt: time.Now().UTC()}
		s.records[jobID] = record
	}
	fn(record)
	record.UpdatedAt = time.Now().UTC()
	return nil
}
