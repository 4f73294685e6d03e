package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/halcyonlab/genstudio-api/internal/api/shared"
	"github.com/halcyonlab/genstudio-api/internal/job"
)

// PodcastHandler handles podcast generation HTTP requests.
type PodcastHandler struct {
	submitter JobSubmitter
	service   job.PodcastService
	logger    *slog.Logger
	validator *validator.Validate
}

// NewPodcastHandler creates a new PodcastHandler.
func NewPodcastHandler(submitter JobSubmitter, service job.PodcastService, logger *slog.Logger) *PodcastHandler {
	return &PodcastHandler{
		submitter: submitter,
		service:   service,
		logger:    logger,
		validator: validator.New(),
	}
}

// GeneratePodcast handles POST /api/v1/podcasts/generate requests
func (h *PodcastHandler) GeneratePodcast(w http.ResponseWriter, r *http.Request) {
	// Parse request body
	var req PodcastGenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if (req.DocumentID == nil) == (req.ChatID == nil) {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Exactly one of document_id or chat_id must be provided")
		return
	}

	searchSpaceID, err := uuid.Parse(req.SearchSpaceID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid search space ID")
		return
	}

	payload := job.PodcastJobPayload{
		SearchSpaceID: searchSpaceID,
		UserID:        req.UserID,
		Title:         req.Title,
		UserPrompt:    req.UserPrompt,
	}

	if req.DocumentID != nil {
		documentID, err := uuid.Parse(*req.DocumentID)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid document ID")
			return
		}
		payload.DocumentID = &documentID
	}
	if req.ChatID != nil {
		chatID, err := uuid.Parse(*req.ChatID)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid chat ID")
			return
		}
		payload.ChatID = &chatID
	}

	podcastJob, err := job.NewPodcastJob(payload, h.service, h.logger)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job parameters: "+err.Error())
		return
	}

	if err := h.submitter.Submit(r.Context(), podcastJob); err != nil {
		if errors.Is(err, job.ErrQueueFull) || errors.Is(err, job.ErrQueueClosed) {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable,
				"Service is at capacity, try again later", err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to submit podcast generation job", err)
		return
	}

	response := JobSubmittedResponse{
		JobID:  podcastJob.ID().String(),
		Status: string(job.StatusQueued),
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, response)
}
