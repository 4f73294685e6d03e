package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/halcyonlab/genstudio-api/internal/domain"
	"github.com/halcyonlab/genstudio-api/internal/platform/logger"
	"github.com/halcyonlab/genstudio-api/internal/store"
)

// PostgresPodcastStore implements the store.PodcastStore interface
// using a PostgreSQL database as the storage backend.
//
// The table carries a partial unique index on chat_id and another on
// (search_space_id, title) WHERE chat_id IS NULL, so the two artifact
// identities are enforced at the storage level as well as by the
// find-then-write upsert in the service layer.
type PostgresPodcastStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPodcastStore creates a new PostgreSQL implementation of the
// PodcastStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresPodcastStore(db store.DBTX, logger *slog.Logger) *PostgresPodcastStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPodcastStore{
		db:     db,
		logger: logger.With(slog.String("component", "podcast_store")),
	}
}

// Ensure PostgresPodcastStore implements store.PodcastStore interface
var _ store.PodcastStore = (*PostgresPodcastStore)(nil)

// Create implements store.PodcastStore.Create
// Returns store.ErrDuplicate if another podcast already claims the same
// identity (chat ID, or scope and title for document podcasts).
func (s *PostgresPodcastStore) Create(ctx context.Context, podcast *domain.Podcast) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := podcast.Validate(); err != nil {
		log.Warn("podcast validation failed during create",
			slog.String("error", err.Error()),
			slog.String("podcast_id", podcast.ID.String()))
		return err
	}

	transcript, err := json.Marshal(podcast.Transcript)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	query := `
		INSERT INTO podcasts (id, search_space_id, title, transcript, file_location,
			chat_id, chat_state_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = s.db.ExecContext(ctx, query,
		podcast.ID,
		podcast.SearchSpaceID,
		podcast.Title,
		transcript,
		podcast.FileLocation,
		podcast.ChatID,
		podcast.ChatStateVersion,
		podcast.CreatedAt,
		podcast.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create podcast",
			slog.String("error", err.Error()),
			slog.String("podcast_id", podcast.ID.String()))
		return fmt.Errorf("failed to create podcast: %w", MapError(err))
	}

	return nil
}

// Update implements store.PodcastStore.Update
// Only the regeneratable fields change; identity columns stay fixed.
func (s *PostgresPodcastStore) Update(ctx context.Context, podcast *domain.Podcast) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := podcast.Validate(); err != nil {
		log.Warn("podcast validation failed during update",
			slog.String("error", err.Error()),
			slog.String("podcast_id", podcast.ID.String()))
		return err
	}

	transcript, err := json.Marshal(podcast.Transcript)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	query := `
		UPDATE podcasts
		SET transcript = $1, file_location = $2, chat_state_version = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := s.db.ExecContext(ctx, query,
		transcript,
		podcast.FileLocation,
		podcast.ChatStateVersion,
		touchUpdatedAt(),
		podcast.ID,
	)
	if err != nil {
		log.Error("failed to update podcast",
			slog.String("error", err.Error()),
			slog.String("podcast_id", podcast.ID.String()))
		return fmt.Errorf("failed to update podcast: %w", MapError(err))
	}

	return CheckRowsAffected(result, store.ErrPodcastNotFound)
}

// FindByChatID implements store.PodcastStore.FindByChatID
func (s *PostgresPodcastStore) FindByChatID(ctx context.Context, chatID uuid.UUID) (*domain.Podcast, error) {
	query := `
		SELECT id, search_space_id, title, transcript, file_location,
			chat_id, chat_state_version, created_at, updated_at
		FROM podcasts
		WHERE chat_id = $1
	`
	return s.findOne(ctx, query, chatID)
}

// FindByScopeAndTitle implements store.PodcastStore.FindByScopeAndTitle
// Chat-derived podcasts are excluded so a chat podcast can never shadow a
// document podcast that happens to share its title.
func (s *PostgresPodcastStore) FindByScopeAndTitle(
	ctx context.Context,
	searchSpaceID uuid.UUID,
	title string,
) (*domain.Podcast, error) {
	query := `
		SELECT id, search_space_id, title, transcript, file_location,
			chat_id, chat_state_version, created_at, updated_at
		FROM podcasts
		WHERE search_space_id = $1 AND title = $2 AND chat_id IS NULL
	`
	return s.findOne(ctx, query, searchSpaceID, title)
}

func (s *PostgresPodcastStore) findOne(
	ctx context.Context,
	query string,
	args ...interface{},
) (*domain.Podcast, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var podcast domain.Podcast
	var transcript []byte

	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&podcast.ID,
		&podcast.SearchSpaceID,
		&podcast.Title,
		&transcript,
		&podcast.FileLocation,
		&podcast.ChatID,
		&podcast.ChatStateVersion,
		&podcast.CreatedAt,
		&podcast.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPodcastNotFound
		}
		log.Error("failed to find podcast", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to find podcast: %w", MapError(err))
	}

	if err := json.Unmarshal(transcript, &podcast.Transcript); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}

	return &podcast, nil
}

// WithTx implements store.PodcastStore.WithTx
func (s *PostgresPodcastStore) WithTx(tx *sql.Tx) store.PodcastStore {
	return &PostgresPodcastStore{
		db:     tx,
		logger: s.logger,
	}
}
