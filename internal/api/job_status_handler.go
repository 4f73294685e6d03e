package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/halcyonlab/genstudio-api/internal/api/shared"
	"github.com/halcyonlab/genstudio-api/internal/job"
)

// JobStatusHandler handles job status polling requests.
type JobStatusHandler struct {
	statusStore job.StatusStore
}

// NewJobStatusHandler creates a new JobStatusHandler.
func NewJobStatusHandler(statusStore job.StatusStore) *JobStatusHandler {
	return &JobStatusHandler{statusStore: statusStore}
}

// GetJobStatus handles GET /api/v1/jobs/{job_id} requests. A job whose
// status record has expired from the retention window is indistinguishable
// from one that never existed; both return 404.
func (h *JobStatusHandler) GetJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "job_id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job ID")
		return
	}

	record, err := h.statusStore.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, job.ErrStatusNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Job not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to fetch job status", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, record)
}
