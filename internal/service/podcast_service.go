package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/halcyonlab/genstudio-api/internal/domain"
	"github.com/halcyonlab/genstudio-api/internal/generation"
	"github.com/halcyonlab/genstudio-api/internal/store"
	"github.com/halcyonlab/genstudio-api/internal/tasklog"
)

// PodcastService provides podcast generation operations. Both methods run
// the full pipeline synchronously: fetch the source, generate, and upsert
// the artifact. They are invoked from background jobs, not request
// handlers, so callers get at-least-once semantics from the job runner
// and rely on the upsert for idempotency.
type PodcastService interface {
	// GenerateDocumentPodcast produces (or regenerates) the podcast for a
	// document. The artifact is identified by (searchSpaceID, title);
	// repeating the call overwrites the previous transcript and file
	// rather than creating a second record. An empty title defaults to
	// "Podcast: <document title>", so regeneration without a title keeps
	// targeting the same record.
	GenerateDocumentPodcast(
		ctx context.Context,
		documentID, searchSpaceID uuid.UUID,
		userID, title, userPrompt string,
	) (*domain.Podcast, error)

	// GenerateChatPodcast produces (or regenerates) the podcast for a
	// chat. The artifact is identified by the chat ID. An empty title
	// defaults to a fixed fallback.
	GenerateChatPodcast(
		ctx context.Context,
		chatID, searchSpaceID uuid.UUID,
		userID, title, userPrompt string,
	) (*domain.Podcast, error)
}

// podcastServiceImpl implements the PodcastService interface
type podcastServiceImpl struct {
	db           *sql.DB
	documents    store.DocumentStore
	chats        store.ChatStore
	podcasts     store.PodcastStore
	taskLogStore store.TaskLogStore
	generator    generation.PodcastGenerator
	logger       *slog.Logger

	// runTx executes fn within a transaction. Indirected so tests can
	// substitute a pass-through without a live database.
	runTx func(ctx context.Context, fn store.TxFn) error
}

// NewPodcastService creates a new PodcastService.
// It returns an error if any of the required dependencies are nil.
func NewPodcastService(
	db *sql.DB,
	documents store.DocumentStore,
	chats store.ChatStore,
	podcasts store.PodcastStore,
	taskLogStore store.TaskLogStore,
	generator generation.PodcastGenerator,
	logger *slog.Logger,
) (PodcastService, error) {
	if db == nil {
		return nil, &PodcastServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if documents == nil {
		return nil, &PodcastServiceError{Operation: "create_service", Message: "documents cannot be nil"}
	}
	if chats == nil {
		return nil, &PodcastServiceError{Operation: "create_service", Message: "chats cannot be nil"}
	}
	if podcasts == nil {
		return nil, &PodcastServiceError{Operation: "create_service", Message: "podcasts cannot be nil"}
	}
	if taskLogStore == nil {
		return nil, &PodcastServiceError{Operation: "create_service", Message: "taskLogStore cannot be nil"}
	}
	if generator == nil {
		return nil, &PodcastServiceError{Operation: "create_service", Message: "generator cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &podcastServiceImpl{
		db:           db,
		documents:    documents,
		chats:        chats,
		podcasts:     podcasts,
		taskLogStore: taskLogStore,
		generator:    generator,
		logger:       logger.With("component", "podcast_service"),
	}
	s.runTx = func(ctx context.Context, fn store.TxFn) error {
		return store.RunInTransaction(ctx, s.db, fn)
	}
	return s, nil
}

// defaultChatPodcastTitle names chat podcasts submitted without a title.
const defaultChatPodcastTitle = "GenStudio Podcast"

// run holds the per-invocation state shared by the pipeline helpers.
type run struct {
	taskLogger *tasklog.Service
	handle     *domain.TaskLogEntry
	operation  string
}

// fail writes the terminal failure entry tagged with the error type and
// wraps the cause into the service error contract. It is the single exit
// path for every failed run, so the log always ends with exactly one
// terminal entry.
func (s *podcastServiceImpl) fail(
	ctx context.Context,
	r *run,
	errorType, message string,
	cause error,
) error {
	if logErr := r.taskLogger.LogTaskFailure(ctx, r.handle, message, cause.Error(),
		map[string]string{"error_type": errorType}); logErr != nil {
		s.logger.Error("failed to record task failure",
			"operation", r.operation, "error", logErr)
	}
	return NewPodcastServiceError(r.operation, message, cause)
}

// progress writes a progress entry; a logging failure never aborts the run.
func (s *podcastServiceImpl) progress(ctx context.Context, r *run, message, stage string, metadata map[string]string) {
	if err := r.taskLogger.LogTaskProgress(ctx, r.handle, message, stage, metadata); err != nil {
		s.logger.Error("failed to record task progress",
			"operation", r.operation, "stage", stage, "error", err)
	}
}

// GenerateDocumentPodcast implements PodcastService.GenerateDocumentPodcast
func (s *podcastServiceImpl) GenerateDocumentPodcast(
	ctx context.Context,
	documentID, searchSpaceID uuid.UUID,
	userID, title, userPrompt string,
) (*domain.Podcast, error) {
	const operation = "generate_document_podcast"

	taskLogger, err := tasklog.NewService(s.taskLogStore, searchSpaceID, s.logger)
	if err != nil {
		return nil, NewPodcastServiceError(operation, "failed to create task logger", err)
	}

	handle, err := taskLogger.LogTaskStart(ctx, operation, "podcast_task",
		fmt.Sprintf("Generating podcast %q from document", title),
		map[string]string{
			"document_id": documentID.String(),
			"title":       title,
		})
	if err != nil {
		return nil, NewPodcastServiceError(operation, "failed to log task start", err)
	}

	r := &run{taskLogger: taskLogger, handle: handle, operation: operation}

	s.progress(ctx, r, "Fetching source document", "fetch_document", nil)

	document, err := s.documents.GetByID(ctx, documentID, searchSpaceID)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return nil, s.fail(ctx, r, errTypeDocumentNotFound,
				fmt.Sprintf("Document %s not found in search space", documentID), err)
		}
		return nil, s.fail(ctx, r, errTypePersistence, "Failed to fetch document", err)
	}

	// The title is part of the upsert identity, so the default must be
	// stable across regenerations of the same document.
	if title == "" {
		title = "Podcast: " + document.Title
	}

	s.progress(ctx, r, "Processing document chunks", "process_chunks", nil)

	chunks, err := s.documents.GetChunks(ctx, documentID)
	if err != nil {
		return nil, s.fail(ctx, r, errTypePersistence, "Failed to fetch document chunks", err)
	}

	sourceContent := buildDocumentSource(document, chunks)

	result, err := s.generate(ctx, r, sourceContent, generation.PodcastConfig{
		Title:         title,
		UserID:        userID,
		SearchSpaceID: searchSpaceID,
		UserPrompt:    userPrompt,
	})
	if err != nil {
		return nil, err
	}

	podcast, err := s.upsert(ctx, r, searchSpaceID, title, result, nil, nil)
	if err != nil {
		return nil, err
	}

	if err := taskLogger.LogTaskSuccess(ctx, handle, "Podcast generated",
		map[string]string{
			"podcast_id":    podcast.ID.String(),
			"file_location": podcast.FileLocation,
		}); err != nil {
		s.logger.Error("failed to record task success", "operation", operation, "error", err)
	}

	s.logger.Info("document podcast generated",
		"podcast_id", podcast.ID,
		"document_id", documentID,
		"title", title)
	return podcast, nil
}

// GenerateChatPodcast implements PodcastService.GenerateChatPodcast
func (s *podcastServiceImpl) GenerateChatPodcast(
	ctx context.Context,
	chatID, searchSpaceID uuid.UUID,
	userID, title, userPrompt string,
) (*domain.Podcast, error) {
	const operation = "generate_chat_podcast"

	taskLogger, err := tasklog.NewService(s.taskLogStore, searchSpaceID, s.logger)
	if err != nil {
		return nil, NewPodcastServiceError(operation, "failed to create task logger", err)
	}

	handle, err := taskLogger.LogTaskStart(ctx, operation, "podcast_task",
		fmt.Sprintf("Generating podcast %q from chat", title),
		map[string]string{
			"chat_id": chatID.String(),
			"title":   title,
		})
	if err != nil {
		return nil, NewPodcastServiceError(operation, "failed to log task start", err)
	}

	r := &run{taskLogger: taskLogger, handle: handle, operation: operation}

	s.progress(ctx, r, "Fetching source chat", "fetch_chat", nil)

	chat, err := s.chats.GetByID(ctx, chatID, searchSpaceID)
	if err != nil {
		if errors.Is(err, store.ErrChatNotFound) {
			return nil, s.fail(ctx, r, errTypeChatNotFound,
				fmt.Sprintf("Chat %s not found in search space", chatID), err)
		}
		return nil, s.fail(ctx, r, errTypePersistence, "Failed to fetch chat", err)
	}

	if title == "" {
		title = defaultChatPodcastTitle
	}

	sourceContent := buildChatSource(chat)

	result, err := s.generate(ctx, r, sourceContent, generation.PodcastConfig{
		Title:         title,
		UserID:        userID,
		SearchSpaceID: searchSpaceID,
		UserPrompt:    userPrompt,
	})
	if err != nil {
		return nil, err
	}

	stateVersion := chat.StateVersion
	podcast, err := s.upsert(ctx, r, searchSpaceID, title, result, &chatID, &stateVersion)
	if err != nil {
		return nil, err
	}

	if err := taskLogger.LogTaskSuccess(ctx, handle, "Podcast generated",
		map[string]string{
			"podcast_id":    podcast.ID.String(),
			"file_location": podcast.FileLocation,
		}); err != nil {
		s.logger.Error("failed to record task success", "operation", operation, "error", err)
	}

	s.logger.Info("chat podcast generated",
		"podcast_id", podcast.ID,
		"chat_id", chatID,
		"chat_state_version", stateVersion,
		"title", title)
	return podcast, nil
}

// generate runs the generation pipeline with progress logging around it.
func (s *podcastServiceImpl) generate(
	ctx context.Context,
	r *run,
	sourceContent string,
	cfg generation.PodcastConfig,
) (*generation.PodcastResult, error) {
	s.progress(ctx, r, "Initializing podcast generation", "initialize_podcast_generation", nil)
	s.progress(ctx, r, "Running podcast generation pipeline", "run_podcast_graph", nil)

	result, err := s.generator.Generate(ctx, sourceContent, cfg)
	if err != nil {
		return nil, s.fail(ctx, r, errTypeUpstream, "Podcast generation pipeline failed", err)
	}
	if result == nil || len(result.Transcript) == 0 {
		return nil, s.fail(ctx, r, errTypeUpstream, "Generation pipeline returned an empty transcript",
			generation.ErrInvalidResponse)
	}

	s.progress(ctx, r, "Processing generated transcript", "process_transcript",
		map[string]string{"transcript_lines": fmt.Sprintf("%d", len(result.Transcript))})

	return result, nil
}

// upsert creates or overwrites the podcast artifact inside one
// transaction. The identity lookup (chat ID, or scope and title for
// document podcasts) decides between insert and in-place update, which
// keeps re-deliveries of the same job from producing duplicate artifacts.
func (s *podcastServiceImpl) upsert(
	ctx context.Context,
	r *run,
	searchSpaceID uuid.UUID,
	title string,
	result *generation.PodcastResult,
	chatID *uuid.UUID,
	chatStateVersion *int64,
) (*domain.Podcast, error) {
	s.progress(ctx, r, "Persisting podcast artifact", "create_podcast_entry", nil)

	var podcast *domain.Podcast

	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txPodcasts := s.podcasts.WithTx(tx)

		existing, err := s.findExisting(ctx, txPodcasts, searchSpaceID, title, chatID)
		if err != nil && !errors.Is(err, store.ErrPodcastNotFound) {
			return fmt.Errorf("failed to look up existing podcast: %w", err)
		}

		if existing != nil {
			existing.Transcript = result.Transcript
			existing.FileLocation = result.FinalFilePath
			existing.ChatStateVersion = chatStateVersion
			if err := txPodcasts.Update(ctx, existing); err != nil {
				return fmt.Errorf("failed to update podcast: %w", err)
			}
			podcast = existing
			return nil
		}

		created, err := domain.NewPodcast(searchSpaceID, title, result.Transcript,
			result.FinalFilePath, chatID, chatStateVersion)
		if err != nil {
			return fmt.Errorf("failed to build podcast: %w", err)
		}
		if err := txPodcasts.Create(ctx, created); err != nil {
			return fmt.Errorf("failed to create podcast: %w", err)
		}
		podcast = created
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, r, errTypePersistence, "Failed to persist podcast artifact", err)
	}

	return podcast, nil
}

func (s *podcastServiceImpl) findExisting(
	ctx context.Context,
	podcasts store.PodcastStore,
	searchSpaceID uuid.UUID,
	title string,
	chatID *uuid.UUID,
) (*domain.Podcast, error) {
	if chatID != nil {
		return podcasts.FindByChatID(ctx, *chatID)
	}
	return podcasts.FindByScopeAndTitle(ctx, searchSpaceID, title)
}
