// Package redisstore implements the poller-facing job status store on
// Redis. Records are stored as JSON values keyed by job ID with a TTL
// that doubles as the retention window, so expired records simply
// disappear and lookups report them as not found.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/halcyonlab/genstudio-api/internal/job"
)

const statusKeyPrefix = "job:status:"

// StatusStore implements job.StatusStore backed by a Redis client.
// Writes are last-writer-wins per key; the runner guarantees only one
// worker writes a given job ID at a time.
type StatusStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewStatusStore creates a Redis-backed StatusStore. The TTL applies to
// every write; a zero TTL keeps records until Redis evicts them.
func NewStatusStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *StatusStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &StatusStore{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "status_store")),
	}
}

// Ensure StatusStore implements job.StatusStore interface
var _ job.StatusStore = (*StatusStore)(nil)

func statusKey(jobID uuid.UUID) string {
	return statusKeyPrefix + jobID.String()
}

// SetQueued implements job.StatusStore.SetQueued
func (s *StatusStore) SetQueued(ctx context.Context, jobID uuid.UUID, meta map[string]string) error {
	now := time.Now().UTC()
	record := &job.StatusRecord{
		JobID:      jobID,
		Status:     job.StatusQueued,
		Meta:       meta,
		EnqueuedAt: now,
		UpdatedAt:  now,
	}
	return s.write(ctx, record)
}

// SetRunning implements job.StatusStore.SetRunning
func (s *StatusStore) SetRunning(ctx context.Context, jobID uuid.UUID) error {
	return s.transition(ctx, jobID, func(r *job.StatusRecord) {
		r.Status = job.StatusRunning
	})
}

// SetFinished implements job.StatusStore.SetFinished
func (s *StatusStore) SetFinished(ctx context.Context, jobID uuid.UUID, result json.RawMessage) error {
	return s.transition(ctx, jobID, func(r *job.StatusRecord) {
		r.Status = job.StatusFinished
		r.Result = result
	})
}

// SetFailed implements job.StatusStore.SetFailed
func (s *StatusStore) SetFailed(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	return s.transition(ctx, jobID, func(r *job.StatusRecord) {
		r.Status = job.StatusFailed
		r.Error = errMsg
	})
}

// Get implements job.StatusStore.Get
func (s *StatusStore) Get(ctx context.Context, jobID uuid.UUID) (*job.StatusRecord, error) {
	data, err := s.client.Get(ctx, statusKey(jobID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, job.ErrStatusNotFound
		}
		return nil, fmt.Errorf("failed to get job status: %w", err)
	}

	var record job.StatusRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job status: %w", err)
	}
	return &record, nil
}

// transition reads the current record, applies the mutation, and writes
// it back. A missing record (expired mid-flight) is recreated so the
// terminal outcome of a long job is still observable.
func (s *StatusStore) transition(ctx context.Context, jobID uuid.UUID, fn func(r *job.StatusRecord)) error {
	record, err := s.Get(ctx, jobID)
	if err != nil {
		if !errors.Is(err, job.ErrStatusNotFound) {
			return err
		}
		record = &job.StatusRecord{
			JobID:      jobID,
			EnqueuedAt: time.Now().UTC(),
		}
	}

	fn(record)
	record.UpdatedAt = time.Now().UTC()
	return s.write(ctx, record)
}

func (s *StatusStore) write(ctx context.Context, record *job.StatusRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal job status: %w", err)
	}

	if err := s.client.Set(ctx, statusKey(record.JobID), data, s.ttl).Err(); err != nil {
		s.logger.Error("failed to write job status",
			slog.String("job_id", record.JobID.String()),
			slog.String("status", string(record.Status)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to write job status: %w", err)
	}
	return nil
}
