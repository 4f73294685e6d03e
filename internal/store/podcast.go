package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/halcyonlab/genstudio-api/internal/domain"
)

// PodcastStore defines the interface for podcast artifact persistence.
// The two Find methods implement the identity lookups that make artifact
// upserts idempotent: a chat podcast is identified by its chat ID, a
// document podcast by (search space, title) with no chat attached.
type PodcastStore interface {
	// Create saves a new podcast artifact.
	Create(ctx context.Context, podcast *domain.Podcast) error

	// Update overwrites the mutable fields (transcript, file location,
	// chat state version) of an existing podcast in place.
	// Returns ErrPodcastNotFound if the podcast does not exist.
	Update(ctx context.Context, podcast *domain.Podcast) error

	// FindByChatID retrieves the podcast generated from the given chat.
	// Returns ErrPodcastNotFound if none exists.
	FindByChatID(ctx context.Context, chatID uuid.UUID) (*domain.Podcast, error)

	// FindByScopeAndTitle retrieves the document-derived podcast with the
	// given title inside a search space (chat podcasts are excluded).
	// Returns ErrPodcastNotFound if none exists.
	FindByScopeAndTitle(ctx context.Context, searchSpaceID uuid.UUID, title string) (*domain.Podcast, error)

	// WithTx returns a new PodcastStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) PodcastStore
}

// TaskLogStore defines the interface for the append-only audit log.
type TaskLogStore interface {
	// Append persists one task log entry. Entries are immutable once written.
	Append(ctx context.Context, entry *domain.TaskLogEntry) error

	// ListByRunID retrieves all entries of one logical execution in
	// insertion order.
	ListByRunID(ctx context.Context, taskRunID uuid.UUID) ([]domain.TaskLogEntry, error)

	// WithTx returns a new TaskLogStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskLogStore
}
