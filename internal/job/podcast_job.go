package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/halcyonlab/genstudio-api/internal/domain"
)

// Common errors for PodcastJob construction
var (
	ErrNilPodcastService = errors.New("podcast service cannot be nil")
	ErrInvalidSource     = errors.New("exactly one of document_id or chat_id must be set")
)

// PodcastService is the application-layer collaborator that runs the
// full podcast pipeline (fetch source, generate, upsert). Implemented
// by internal/service.PodcastService.
type PodcastService interface {
	GenerateDocumentPodcast(ctx context.Context, documentID, searchSpaceID uuid.UUID, userID, title, userPrompt string) (*domain.Podcast, error)
	GenerateChatPodcast(ctx context.Context, chatID, searchSpaceID uuid.UUID, userID, title, userPrompt string) (*domain.Podcast, error)
}

// PodcastJobPayload represents the serialized data stored in the job descriptor.
// Exactly one of DocumentID or ChatID identifies the source.
type PodcastJobPayload struct {
	DocumentID    *uuid.UUID `json:"document_id,omitempty"`
	ChatID        *uuid.UUID `json:"chat_id,omitempty"`
	SearchSpaceID uuid.UUID  `json:"search_space_id"`
	UserID        string     `json:"user_id"`
	Title         string     `json:"title"`
	UserPrompt    string     `json:"user_prompt,omitempty"`
}

// PodcastResult is the result payload exposed to pollers when a podcast
// job finishes.
type PodcastResult struct {
	PodcastID    uuid.UUID `json:"podcast_id"`
	Title        string    `json:"title"`
	FileLocation string    `json:"file_location"`
}

// PodcastJob implements the Job interface for podcast generation. The
// heavy lifting lives in the PodcastService; the job is the durable
// queue envelope around one invocation.
type PodcastJob struct {
	id      uuid.UUID
	payload PodcastJobPayload
	service PodcastService
	logger  *slog.Logger
	status  Status
	result  json.RawMessage
}

// NewPodcastJob creates a new podcast generation job.
func NewPodcastJob(payload PodcastJobPayload, service PodcastService, logger *slog.Logger) (*PodcastJob, error) {
	if service == nil {
		return nil, ErrNilPodcastService
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if (payload.DocumentID == nil) == (payload.ChatID == nil) {
		return nil, ErrInvalidSource
	}
	if payload.SearchSpaceID == uuid.Nil {
		return nil, errors.New("search space ID cannot be empty")
	}
	// An empty title is allowed; the service derives a default from the
	// source after fetching it.

	return &PodcastJob{
		id:      uuid.New(),
		payload: payload,
		service: service,
		logger:  logger.With("job_type", TypePodcastGeneration),
		status:  StatusQueued,
	}, nil
}

// hydratePodcastJob rebuilds a PodcastJob from a stored descriptor,
// keeping the original job ID.
func hydratePodcastJob(desc *Descriptor, service PodcastService, logger *slog.Logger) (*PodcastJob, error) {
	var payload PodcastJobPayload
	if err := json.Unmarshal(desc.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal podcast job payload: %w", err)
	}

	j, err := NewPodcastJob(payload, service, logger)
	if err != nil {
		return nil, err
	}
	j.id = desc.ID
	return j, nil
}

// ID returns the job's unique identifier
func (j *PodcastJob) ID() uuid.UUID {
	return j.id
}

// Type returns the job type identifier
func (j *PodcastJob) Type() string {
	return TypePodcastGeneration
}

// Payload returns the job data as a byte slice
func (j *PodcastJob) Payload() []byte {
	data, err := json.Marshal(j.payload)
	if err != nil {
		j.logger.Error("failed to marshal job payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current job status
func (j *PodcastJob) Status() Status {
	return j.status
}

// Result returns the serialized PodcastResult after a successful Execute.
func (j *PodcastJob) Result() json.RawMessage {
	return j.result
}

// Meta exposes the podcast title and source kind in the status record.
func (j *PodcastJob) Meta() map[string]string {
	meta := map[string]string{"title": j.payload.Title}
	if j.payload.ChatID != nil {
		meta["source"] = "chat"
	} else {
		meta["source"] = "document"
	}
	return meta
}

// Execute dispatches to the podcast service based on the payload source.
// The service owns task logging and artifact persistence; the job only
// translates the outcome into queue status and a result payload.
func (j *PodcastJob) Execute(ctx context.Context) error {
	j.status = StatusRunning

	var (
		podcast *domain.Podcast
		err     error
	)
	if j.payload.ChatID != nil {
		podcast, err = j.service.GenerateChatPodcast(ctx,
			*j.payload.ChatID, j.payload.SearchSpaceID,
			j.payload.UserID, j.payload.Title, j.payload.UserPrompt)
	} else {
		podcast, err = j.service.GenerateDocumentPodcast(ctx,
			*j.payload.DocumentID, j.payload.SearchSpaceID,
			j.payload.UserID, j.payload.Title, j.payload.UserPrompt)
	}
	if err != nil {
		j.status = StatusFailed
		return fmt.Errorf("podcast generation failed: %w", err)
	}

	result, marshalErr := json.Marshal(PodcastResult{
		PodcastID:    podcast.ID,
		Title:        podcast.Title,
		FileLocation: podcast.FileLocation,
	})
	if marshalErr != nil {
		j.status = StatusFailed
		return fmt.Errorf("failed to marshal result: %w", marshalErr)
	}
	j.result = result

	j.status = StatusFinished
	return nil
}
