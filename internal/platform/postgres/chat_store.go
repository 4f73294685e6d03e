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

// PostgresChatStore implements the store.ChatStore interface
// using a PostgreSQL database as the storage backend.
// Chat messages are stored as a JSONB column rather than a child table;
// a chat is always read and written as a whole.
type PostgresChatStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresChatStore creates a new PostgreSQL implementation of the
// ChatStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresChatStore(db store.DBTX, logger *slog.Logger) *PostgresChatStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresChatStore{
		db:     db,
		logger: logger.With(slog.String("component", "chat_store")),
	}
}

// Ensure PostgresChatStore implements store.ChatStore interface
var _ store.ChatStore = (*PostgresChatStore)(nil)

// Create implements store.ChatStore.Create
func (s *PostgresChatStore) Create(ctx context.Context, chat *domain.Chat) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := chat.Validate(); err != nil {
		log.Warn("chat validation failed during create",
			slog.String("error", err.Error()),
			slog.String("chat_id", chat.ID.String()))
		return err
	}

	messages, err := json.Marshal(chat.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal chat messages: %w", err)
	}

	query := `
		INSERT INTO chats (id, search_space_id, title, messages, state_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = s.db.ExecContext(ctx, query,
		chat.ID,
		chat.SearchSpaceID,
		chat.Title,
		messages,
		chat.StateVersion,
		chat.CreatedAt,
		chat.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create chat",
			slog.String("error", err.Error()),
			slog.String("chat_id", chat.ID.String()))
		return fmt.Errorf("failed to create chat: %w", MapError(err))
	}

	return nil
}

// GetByID implements store.ChatStore.GetByID
func (s *PostgresChatStore) GetByID(ctx context.Context, id, searchSpaceID uuid.UUID) (*domain.Chat, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, search_space_id, title, messages, state_version, created_at, updated_at
		FROM chats
		WHERE id = $1 AND search_space_id = $2
	`

	var chat domain.Chat
	var messages []byte

	err := s.db.QueryRowContext(ctx, query, id, searchSpaceID).Scan(
		&chat.ID,
		&chat.SearchSpaceID,
		&chat.Title,
		&messages,
		&chat.StateVersion,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("chat not found",
				slog.String("chat_id", id.String()),
				slog.String("search_space_id", searchSpaceID.String()))
			return nil, store.ErrChatNotFound
		}
		log.Error("failed to get chat",
			slog.String("error", err.Error()),
			slog.String("chat_id", id.String()))
		return nil, fmt.Errorf("failed to get chat: %w", MapError(err))
	}

	if err := json.Unmarshal(messages, &chat.Messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat messages: %w", err)
	}

	return &chat, nil
}

// WithTx implements store.ChatStore.WithTx
func (s *PostgresChatStore) WithTx(tx *sql.Tx) store.ChatStore {
	return &PostgresChatStore{
		db:     tx,
		logger: s.logger,
	}
}
