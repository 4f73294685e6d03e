package job

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrStatusNotFound is returned by StatusStore.Get when the job ID was
// never enqueued or its record has expired from the retention window.
var ErrStatusNotFound = errors.New("job status not found")

// StatusRecord is the poller-visible state of one job. While the job is
// non-terminal, Result and Error are both absent; exactly one of them is
// set once the status is terminal.
type StatusRecord struct {
	JobID      uuid.UUID         `json:"job_id"`
	Status     Status            `json:"status"`
	Result     json.RawMessage   `json:"result,omitempty"`
	Error      string            `json:"error,omitempty"`
	Meta       map[string]string `json:"meta,omitempty"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Terminal reports whether the record's status is finished or failed.
func (r *StatusRecord) Terminal() bool {
	return r.Status == StatusFinished || r.Status == StatusFailed
}

// StatusStore is the key-value store polled by callers, keyed by job ID.
// It is the single source of truth for a job's externally visible status;
// only the worker assigned to a job ID writes to that ID, so writes are
// last-writer-wins without coordination.
//
// Retention is a store-level concern (TTL), not logic in this subsystem.
type StatusStore interface {
	// SetQueued creates the record in "queued" state with optional metadata.
	SetQueued(ctx context.Context, jobID uuid.UUID, meta map[string]string) error

	// SetRunning transitions the record to "running".
	SetRunning(ctx context.Context, jobID uuid.UUID) error

	// SetFinished transitions the record to "finished" with its result payload.
	SetFinished(ctx context.Context, jobID uuid.UUID, result json.RawMessage) error

	// SetFailed transitions the record to "failed" with a human-readable error.
	SetFailed(ctx context.Context, jobID uuid.UUID, errMsg string) error

	// Get performs a point lookup of the record.
	// Returns ErrStatusNotFound when the ID is unknown or expired.
	Get(ctx context.Context, jobID uuid.UUID) (*StatusRecord, error)
}
