package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/halcyonlab/genstudio-api/internal/domain"
	"github.com/halcyonlab/genstudio-api/internal/platform/logger"
	"github.com/halcyonlab/genstudio-api/internal/store"
)

// PostgresDocumentStore implements the store.DocumentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDocumentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDocumentStore creates a new PostgreSQL implementation of the
// DocumentStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresDocumentStore(db store.DBTX, logger *slog.Logger) *PostgresDocumentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDocumentStore{
		db:     db,
		logger: logger.With(slog.String("component", "document_store")),
	}
}

// Ensure PostgresDocumentStore implements store.DocumentStore interface
var _ store.DocumentStore = (*PostgresDocumentStore)(nil)

// Create implements store.DocumentStore.Create
// Returns validation errors from the domain Document if data is invalid.
func (s *PostgresDocumentStore) Create(ctx context.Context, document *domain.Document) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := document.Validate(); err != nil {
		log.Warn("document validation failed during create",
			slog.String("error", err.Error()),
			slog.String("document_id", document.ID.String()))
		return err
	}

	query := `
		INSERT INTO documents (id, search_space_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		document.ID,
		document.SearchSpaceID,
		document.Title,
		document.Content,
		document.CreatedAt,
		document.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create document",
			slog.String("error", err.Error()),
			slog.String("document_id", document.ID.String()))
		return fmt.Errorf("failed to create document: %w", MapError(err))
	}

	return nil
}

// GetByID implements store.DocumentStore.GetByID
// The lookup is scoped: a document in another search space is treated as
// absent, not as a permission error.
func (s *PostgresDocumentStore) GetByID(
	ctx context.Context,
	id, searchSpaceID uuid.UUID,
) (*domain.Document, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, search_space_id, title, content, created_at, updated_at
		FROM documents
		WHERE id = $1 AND search_space_id = $2
	`

	var document domain.Document
	err := s.db.QueryRowContext(ctx, query, id, searchSpaceID).Scan(
		&document.ID,
		&document.SearchSpaceID,
		&document.Title,
		&document.Content,
		&document.CreatedAt,
		&document.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("document not found",
				slog.String("document_id", id.String()),
				slog.String("search_space_id", searchSpaceID.String()))
			return nil, store.ErrDocumentNotFound
		}
		log.Error("failed to get document",
			slog.String("error", err.Error()),
			slog.String("document_id", id.String()))
		return nil, fmt.Errorf("failed to get document: %w", MapError(err))
	}

	return &document, nil
}

// GetChunks implements store.DocumentStore.GetChunks
// Chunks come back ordered by creation time; a document without chunks
// yields an empty slice.
func (s *PostgresDocumentStore) GetChunks(
	ctx context.Context,
	documentID uuid.UUID,
) ([]domain.DocumentChunk, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, document_id, content, created_at
		FROM document_chunks
		WHERE document_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		log.Error("failed to query document chunks",
			slog.String("error", err.Error()),
			slog.String("document_id", documentID.String()))
		return nil, fmt.Errorf("failed to query document chunks: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	chunks := make([]domain.DocumentChunk, 0)
	for rows.Next() {
		var chunk domain.DocumentChunk
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content, &chunk.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document chunk row: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document chunk rows: %w", err)
	}

	return chunks, nil
}

// WithTx implements store.DocumentStore.WithTx
func (s *PostgresDocumentStore) WithTx(tx *sql.Tx) store.DocumentStore {
	return &PostgresDocumentStore{
		db:     tx,
		logger: s.logger,
	}
}

// touchUpdatedAt is shared by stores that bump updated_at on writes.
func touchUpdatedAt() time.Time {
	return time.Now().UTC()
}
