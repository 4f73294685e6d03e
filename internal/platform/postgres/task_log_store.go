package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/halcyonlab/genstudio-api/internal/domain"
	"github.com/halcyonlab/genstudio-api/internal/platform/logger"
	"github.com/halcyonlab/genstudio-api/internal/store"
)

// PostgresTaskLogStore implements the store.TaskLogStore interface
// using a PostgreSQL database as the storage backend. The table is
// append-only: rows are never updated or deleted by this store.
type PostgresTaskLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskLogStore creates a new PostgreSQL implementation of the
// TaskLogStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskLogStore(db store.DBTX, logger *slog.Logger) *PostgresTaskLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_log_store")),
	}
}

// Ensure PostgresTaskLogStore implements store.TaskLogStore interface
var _ store.TaskLogStore = (*PostgresTaskLogStore)(nil)

// Append implements store.TaskLogStore.Append
func (s *PostgresTaskLogStore) Append(ctx context.Context, entry *domain.TaskLogEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("task log entry validation failed",
			slog.String("error", err.Error()),
			slog.String("task_run_id", entry.TaskRunID.String()))
		return err
	}

	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal task log metadata: %w", err)
	}

	query := `
		INSERT INTO task_logs (id, task_run_id, task_name, source, search_space_id,
			status, message, stage, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = s.db.ExecContext(ctx, query,
		entry.ID,
		entry.TaskRunID,
		entry.TaskName,
		entry.Source,
		entry.SearchSpaceID,
		entry.Status,
		entry.Message,
		entry.Stage,
		metadata,
		entry.CreatedAt,
	)
	if err != nil {
		log.Error("failed to append task log entry",
			slog.String("error", err.Error()),
			slog.String("task_run_id", entry.TaskRunID.String()))
		return fmt.Errorf("failed to append task log entry: %w", MapError(err))
	}

	return nil
}

// ListByRunID implements store.TaskLogStore.ListByRunID
func (s *PostgresTaskLogStore) ListByRunID(
	ctx context.Context,
	taskRunID uuid.UUID,
) ([]domain.TaskLogEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, task_run_id, task_name, source, search_space_id,
			status, message, stage, metadata, created_at
		FROM task_logs
		WHERE task_run_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, taskRunID)
	if err != nil {
		log.Error("failed to query task log entries",
			slog.String("error", err.Error()),
			slog.String("task_run_id", taskRunID.String()))
		return nil, fmt.Errorf("failed to query task log entries: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	entries := make([]domain.TaskLogEntry, 0)
	for rows.Next() {
		var entry domain.TaskLogEntry
		var metadata []byte

		if err := rows.Scan(
			&entry.ID,
			&entry.TaskRunID,
			&entry.TaskName,
			&entry.Source,
			&entry.SearchSpaceID,
			&entry.Status,
			&entry.Message,
			&entry.Stage,
			&metadata,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task log row: %w", err)
		}

		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal task log metadata: %w", err)
			}
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task log rows: %w", err)
	}

	return entries, nil
}

// WithTx implements store.TaskLogStore.WithTx
func (s *PostgresTaskLogStore) WithTx(tx *sql.Tx) store.TaskLogStore {
	return &PostgresTaskLogStore{
		db:     tx,
		logger: s.logger,
	}
}
