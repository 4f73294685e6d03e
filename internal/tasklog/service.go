// Package tasklog records the audit trail of background task executions.
//
// Each logical execution opens with one started entry, appends any number
// of progress entries, and closes with exactly one success or failed
// entry. The service only appends; it never rejects late writes — callers
// are responsible for not logging against a handle after its terminal
// entry (see Service.LogTaskSuccess / LogTaskFailure).
package tasklog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/halcyonlab/genstudio-api/internal/domain"
	"github.com/halcyonlab/genstudio-api/internal/store"
)

// Common errors returned by the Service
var (
	ErrNilStore  = errors.New("task log store cannot be nil")
	ErrNilHandle = errors.New("task log handle cannot be nil")
)

// Service appends structured lifecycle events to the persistent audit
// log, scoped to one search space. It is cheap to construct per execution.
type Service struct {
	store         store.TaskLogStore
	searchSpaceID uuid.UUID
	logger        *slog.Logger
}

// NewService creates a task logging service scoped to a search space.
func NewService(logStore store.TaskLogStore, searchSpaceID uuid.UUID, logger *slog.Logger) (*Service, error) {
	if logStore == nil {
		return nil, ErrNilStore
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:         logStore,
		searchSpaceID: searchSpaceID,
		logger:        logger.With("component", "task_log_service"),
	}, nil
}

// LogTaskStart appends the opening entry of a logical execution and
// returns it as the handle for all subsequent calls. The entry's own ID
// becomes the run ID shared by the whole trail.
func (s *Service) LogTaskStart(
	ctx context.Context,
	taskName, source, message string,
	metadata map[string]string,
) (*domain.TaskLogEntry, error) {
	id := uuid.New()
	entry := &domain.TaskLogEntry{
		ID:            id,
		TaskRunID:     id,
		TaskName:      taskName,
		Source:        source,
		SearchSpaceID: s.searchSpaceID,
		Status:        domain.TaskLogStatusStarted,
		Message:       message,
		Metadata:      metadata,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to log task start: %w", err)
	}

	s.logger.Info("task started",
		"task_run_id", entry.TaskRunID,
		"task_name", taskName,
		"source", source)
	return entry, nil
}

// LogTaskProgress appends a progress entry referencing the handle. The
// stage tag is free-form and used for coarse-grained observability, not
// for resuming work.
func (s *Service) LogTaskProgress(
	ctx context.Context,
	handle *domain.TaskLogEntry,
	message, stage string,
	metadata map[string]string,
) error {
	if handle == nil {
		return ErrNilHandle
	}

	entry := &domain.TaskLogEntry{
		ID:            uuid.New(),
		TaskRunID:     handle.TaskRunID,
		TaskName:      handle.TaskName,
		Source:        handle.Source,
		SearchSpaceID: s.searchSpaceID,
		Status:        domain.TaskLogStatusProgress,
		Message:       message,
		Stage:         stage,
		Metadata:      metadata,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.append(ctx, entry); err != nil {
		return fmt.Errorf("failed to log task progress: %w", err)
	}
	return nil
}

// LogTaskSuccess appends the closing success entry for the handle.
// No further entries may be appended against the handle afterwards.
func (s *Service) LogTaskSuccess(
	ctx context.Context,
	handle *domain.TaskLogEntry,
	message string,
	metadata map[string]string,
) error {
	if handle == nil {
		return ErrNilHandle
	}

	entry := &domain.TaskLogEntry{
		ID:            uuid.New(),
		TaskRunID:     handle.TaskRunID,
		TaskName:      handle.TaskName,
		Source:        handle.Source,
		SearchSpaceID: s.searchSpaceID,
		Status:        domain.TaskLogStatusSuccess,
		Message:       message,
		Metadata:      metadata,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.append(ctx, entry); err != nil {
		return fmt.Errorf("failed to log task success: %w", err)
	}

	s.logger.Info("task succeeded",
		"task_run_id", handle.TaskRunID,
		"task_name", handle.TaskName)
	return nil
}

// LogTaskFailure appends the closing failure entry for the handle. The
// error string and metadata (typically including an error_type tag) are
// preserved verbatim in the audit trail.
func (s *Service) LogTaskFailure(
	ctx context.Context,
	handle *domain.TaskLogEntry,
	message, errorDetail string,
	metadata map[string]string,
) error {
	if handle == nil {
		return ErrNilHandle
	}

	if metadata == nil {
		metadata = map[string]string{}
	}
	metadata["error"] = errorDetail

	entry := &domain.TaskLogEntry{
		ID:            uuid.New(),
		TaskRunID:     handle.TaskRunID,
		TaskName:      handle.TaskName,
		Source:        handle.Source,
		SearchSpaceID: s.searchSpaceID,
		Status:        domain.TaskLogStatusFailed,
		Message:       message,
		Metadata:      metadata,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.append(ctx, entry); err != nil {
		return fmt.Errorf("failed to log task failure: %w", err)
	}

	s.logger.Warn("task failed",
		"task_run_id", handle.TaskRunID,
		"task_name", handle.TaskName,
		"error", errorDetail)
	return nil
}

func (s *Service) append(ctx context.Context, entry *domain.TaskLogEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	return s.store.Append(ctx, entry)
}
