package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/halcyonlab/genstudio-api/internal/job"
	"github.com/halcyonlab/genstudio-api/internal/platform/logger"
	"github.com/halcyonlab/genstudio-api/internal/store"
)

// PostgresJobStore implements the job.DescriptorStore interface using PostgreSQL
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a new PostgresJobStore.
// If logger is nil, a default logger will be used.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure PostgresJobStore implements job.DescriptorStore interface
var _ job.DescriptorStore = (*PostgresJobStore)(nil)

// SaveJob persists a job descriptor to the database
func (s *PostgresJobStore) SaveJob(ctx context.Context, j job.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO jobs (id, type, payload, status, enqueued_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, query,
		j.ID(),
		j.Type(),
		j.Payload(),
		j.Status(),
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save job",
			slog.String("job_id", j.ID().String()),
			slog.String("job_type", j.Type()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save job to database: %w", MapError(err))
	}

	return nil
}

// UpdateJobStatus updates the status of a job in the database
func (s *PostgresJobStore) UpdateJobStatus(
	ctx context.Context,
	jobID uuid.UUID,
	status job.Status,
	errorMsg string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		status,
		errorMsg,
		time.Now().UTC(),
		jobID,
	)
	if err != nil {
		log.Error("failed to update job status",
			slog.String("job_id", jobID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update job status: %w", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Descriptor already pruned; nothing to update.
		log.Warn("no job found with ID to update status",
			slog.String("job_id", jobID.String()))
		return nil
	}

	return nil
}

// GetQueuedJobs retrieves all descriptors with "queued" status
func (s *PostgresJobStore) GetQueuedJobs(ctx context.Context) ([]*job.Descriptor, error) {
	return s.getJobsByStatus(ctx, job.StatusQueued, 0)
}

// GetRunningJobs retrieves descriptors with "running" status, optionally
// filtered to those untouched for longer than olderThan
func (s *PostgresJobStore) GetRunningJobs(ctx context.Context, olderThan time.Duration) ([]*job.Descriptor, error) {
	return s.getJobsByStatus(ctx, job.StatusRunning, olderThan)
}

func (s *PostgresJobStore) getJobsByStatus(
	ctx context.Context,
	status job.Status,
	olderThan time.Duration,
) ([]*job.Descriptor, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var query string
	var args []interface{}

	if olderThan > 0 {
		query = `
			SELECT id, type, payload, status, error_message, enqueued_at, updated_at
			FROM jobs
			WHERE status = $1 AND updated_at < $2
			ORDER BY enqueued_at ASC
		`
		args = []interface{}{status, time.Now().UTC().Add(-olderThan)}
	} else {
		query = `
			SELECT id, type, payload, status, error_message, enqueued_at, updated_at
			FROM jobs
			WHERE status = $1
			ORDER BY enqueued_at ASC
		`
		args = []interface{}{status}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query jobs by status",
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query jobs by status: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var descriptors []*job.Descriptor

	for rows.Next() {
		var desc job.Descriptor
		var errorMessage sql.NullString

		if err := rows.Scan(
			&desc.ID,
			&desc.Type,
			&desc.Payload,
			&desc.Status,
			&errorMessage,
			&desc.EnqueuedAt,
			&desc.UpdatedAt,
		); err != nil {
			log.Error("failed to scan job row",
				slog.String("status", string(status)),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		desc.ErrorMessage = errorMessage.String

		descriptors = append(descriptors, &desc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}

	return descriptors, nil
}

// WithTx implements job.DescriptorStore.WithTx
func (s *PostgresJobStore) WithTx(tx *sql.Tx) job.DescriptorStore {
	return &PostgresJobStore{
		db:     tx,
		logger: s.logger,
	}
}
