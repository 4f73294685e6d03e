package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskLogStatus represents the lifecycle state recorded by a task log entry.
type TaskLogStatus string

// Possible task log status values. A logical execution opens with exactly
// one STARTED entry, may append any number of PROGRESS entries, and closes
// with exactly one SUCCESS or FAILED entry.
const (
	TaskLogStatusStarted  TaskLogStatus = "started"
	TaskLogStatusProgress TaskLogStatus = "progress"
	TaskLogStatusSuccess  TaskLogStatus = "success"
	TaskLogStatusFailed   TaskLogStatus = "failed"
)

// Common validation errors for TaskLogEntry
var (
	ErrEmptyTaskLogID       = errors.New("task log entry ID cannot be empty")
	ErrEmptyTaskLogRunID    = errors.New("task log run ID cannot be empty")
	ErrEmptyTaskLogName     = errors.New("task log task name cannot be empty")
	ErrEmptyTaskLogScope    = errors.New("task log search space ID cannot be empty")
	ErrInvalidTaskLogStatus = errors.New("invalid task log status")
)

// TaskLogEntry is one append-only record in the audit trail of a task
// execution. All entries of one logical execution share a TaskRunID; the
// STARTED entry's own ID doubles as that run ID. Entries are never mutated
// after insertion.
type TaskLogEntry struct {
	ID            uuid.UUID         `json:"id"`
	TaskRunID     uuid.UUID         `json:"task_run_id"`
	TaskName      string            `json:"task_name"`
	Source        string            `json:"source"`
	SearchSpaceID uuid.UUID         `json:"search_space_id"`
	Status        TaskLogStatus     `json:"status"`
	Message       string            `json:"message"`
	Stage         string            `json:"stage,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Validate checks if the TaskLogEntry has valid data.
func (e *TaskLogEntry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyTaskLogID
	}

	if e.TaskRunID == uuid.Nil {
		return ErrEmptyTaskLogRunID
	}

	if e.TaskName == "" {
		return ErrEmptyTaskLogName
	}

	if e.SearchSpaceID == uuid.Nil {
		return ErrEmptyTaskLogScope
	}

	if !isValidTaskLogStatus(e.Status) {
		return ErrInvalidTaskLogStatus
	}

	return nil
}

// IsTerminal reports whether the entry closes a logical execution.
func (e *TaskLogEntry) IsTerminal() bool {
	return e.Status == TaskLogStatusSuccess || e.Status == TaskLogStatusFailed
}

func isValidTaskLogStatus(status TaskLogStatus) bool {
	switch status {
	case TaskLogStatusStarted, TaskLogStatusProgress,
		TaskLogStatusSuccess, TaskLogStatusFailed:
		return true
	default:
		return false
	}
}
