package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a job. Transitions are monotonic
// per job ID: queued → running → finished|failed, never reverting from a
// terminal state.
type Status string

// Possible job status values
const (
	StatusQueued   Status = "queued"
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
	StatusFailed   Status = "failed"
)

// Job type constants
const (
	// TypeImageGeneration renders a placeholder image for a prompt and
	// uploads it to object storage.
	TypeImageGeneration = "image_generation"

	// TypePodcastGeneration produces a podcast from a document or chat
	// through the generation pipeline.
	TypePodcastGeneration = "podcast_generation"
)

// Job represents a unit of background work to be processed.
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier
	Type() string

	// Payload returns the job data as a byte slice
	Payload() []byte

	// Status returns the current job status
	Status() Status

	// Execute runs the job logic
	Execute(ctx context.Context) error

	// Result returns the serialized result payload after a successful
	// Execute. It returns nil before completion or after a failure.
	Result() json.RawMessage
}

// MetaProvider is implemented by jobs that want extra key/value metadata
// recorded in their status record at submission time (e.g. the image
// prompt).
type MetaProvider interface {
	Meta() map[string]string
}

// Descriptor is the persisted form of a job: what the durable store keeps
// so that unfinished work survives a crash and can be rehydrated into an
// executable Job through the Registry.
type Descriptor struct {
	ID           uuid.UUID
	Type         string
	Payload      []byte
	Status       Status
	ErrorMessage string
	EnqueuedAt   time.Time
	UpdatedAt    time.Time
}

// QueueReader provides read-only access to the job channel
// allowing workers to consume jobs without the ability to enqueue.
type QueueReader interface {
	// GetChannel returns a read-only channel for consuming jobs
	GetChannel() <-chan Job
}

// QueueWriter provides write access to the job queue
// allowing services to enqueue jobs for processing.
type QueueWriter interface {
	// Enqueue adds a job to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(job Job) error

	// Close closes the job queue, preventing further job submission
	Close()
}

// DescriptorStore defines the interface for persisting job descriptors.
// It backs the at-least-once guarantee: descriptors of unfinished jobs
// are reloaded and requeued on startup.
type DescriptorStore interface {
	// SaveJob persists a job descriptor.
	SaveJob(ctx context.Context, j Job) error

	// UpdateJobStatus updates the status (and error message) of a job.
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status Status, errorMsg string) error

	// GetQueuedJobs retrieves all descriptors with "queued" status.
	GetQueuedJobs(ctx context.Context) ([]*Descriptor, error)

	// GetRunningJobs retrieves descriptors with "running" status.
	// If olderThan is non-zero, only returns jobs that have been in this
	// state longer than the specified duration.
	GetRunningJobs(ctx context.Context, olderThan time.Duration) ([]*Descriptor, error)

	// WithTx returns a new DescriptorStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) DescriptorStore
}
