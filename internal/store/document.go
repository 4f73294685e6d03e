package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/halcyonlab/genstudio-api/internal/domain"
)

// DocumentStore defines the interface for document persistence.
type DocumentStore interface {
	// Create saves a new document to the store.
	Create(ctx context.Context, document *domain.Document) error

	// GetByID retrieves a document scoped to a search space.
	// Returns ErrDocumentNotFound if no document matches both the ID and
	// the search space.
	GetByID(ctx context.Context, id, searchSpaceID uuid.UUID) (*domain.Document, error)

	// GetChunks retrieves a document's chunks ordered by creation time.
	// A document with no chunks returns an empty slice, not an error.
	GetChunks(ctx context.Context, documentID uuid.UUID) ([]domain.DocumentChunk, error)

	// WithTx returns a new DocumentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) DocumentStore
}

// ChatStore defines the interface for chat persistence.
type ChatStore interface {
	// Create saves a new chat to the store.
	Create(ctx context.Context, chat *domain.Chat) error

	// GetByID retrieves a chat scoped to a search space.
	// Returns ErrChatNotFound if no chat matches both the ID and the search space.
	GetByID(ctx context.Context, id, searchSpaceID uuid.UUID) (*domain.Chat, error)

	// WithTx returns a new ChatStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ChatStore
}
