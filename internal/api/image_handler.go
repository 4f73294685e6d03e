package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/halcyonlab/genstudio-api/internal/api/shared"
	"github.com/halcyonlab/genstudio-api/internal/job"
	"github.com/halcyonlab/genstudio-api/internal/store"
)

// ImageHandler handles image generation HTTP requests. It assembles an
// ImageJob from the request and hands it to the submitter; rendering and
// upload happen asynchronously in the worker pool.
type ImageHandler struct {
	submitter  JobSubmitter
	renderer   job.Renderer
	storage    job.ObjectStorage
	logStore   store.TaskLogStore
	presignTTL time.Duration
	logger     *slog.Logger
	validator  *validator.Validate
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(
	submitter JobSubmitter,
	renderer job.Renderer,
	storage job.ObjectStorage,
	logStore store.TaskLogStore,
	presignTTL time.Duration,
	logger *slog.Logger,
) *ImageHandler {
	return &ImageHandler{
		submitter:  submitter,
		renderer:   renderer,
		storage:    storage,
		logStore:   logStore,
		presignTTL: presignTTL,
		logger:     logger,
		validator:  validator.New(),
	}
}

// GenerateImage handles POST /api/v1/generate/image requests
func (h *ImageHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	// Parse request body
	var req ImageGenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	searchSpaceID, err := uuid.Parse(req.SearchSpaceID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid search space ID")
		return
	}

	payload := job.ImageJobPayload{
		Prompt:        req.Prompt,
		Width:         req.Width,
		Height:        req.Height,
		Format:        req.Format,
		SearchSpaceID: searchSpaceID,
	}

	imageJob, err := job.NewImageJob(payload, h.renderer, h.storage, h.logStore, h.presignTTL, h.logger)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job parameters: "+err.Error())
		return
	}

	if err := h.submitter.Submit(r.Context(), imageJob); err != nil {
		if errors.Is(err, job.ErrQueueFull) || errors.Is(err, job.ErrQueueClosed) {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable,
				"Service is at capacity, try again later", err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to submit image generation job", err)
		return
	}

	response := JobSubmittedResponse{
		JobID:  imageJob.ID().String(),
		Status: string(job.StatusQueued),
	}

	// Return response with 202 Accepted status (since processing happens asynchronously)
	shared.RespondWithJSON(w, r, http.StatusAccepted, response)
}
