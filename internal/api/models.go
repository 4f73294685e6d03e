package api

import (
	"context"

	"github.com/halcyonlab/genstudio-api/internal/job"
)

// JobSubmitter persists and enqueues a job for asynchronous execution.
// Implemented by job.Runner.
type JobSubmitter interface {
	Submit(ctx context.Context, j job.Job) error
}

// JobSubmittedResponse is returned from submit endpoints with 202 Accepted.
// The caller polls GET /jobs/{job_id} with the returned ID.
type JobSubmittedResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// ImageGenerateRequest represents the request body for submitting an
// image generation job.
type ImageGenerateRequest struct {
	Prompt        string `json:"prompt" validate:"required,min=1"`
	Width         int    `json:"width" validate:"omitempty,min=1"`
	Height        int    `json:"height" validate:"omitempty,min=1"`
	Format        string `json:"format" validate:"omitempty,oneof=png jpeg jpg"`
	SearchSpaceID string `json:"search_space_id" validate:"required,uuid"`
}

// PodcastGenerateRequest represents the request body for submitting a
// podcast generation job. Exactly one of DocumentID or ChatID selects
// the source; the handler rejects requests that set both or neither.
// Title is optional — when omitted, a default is derived from the source
// once it is fetched.
type PodcastGenerateRequest struct {
	DocumentID    *string `json:"document_id,omitempty" validate:"omitempty,uuid"`
	ChatID        *string `json:"chat_id,omitempty" validate:"omitempty,uuid"`
	SearchSpaceID string  `json:"search_space_id" validate:"required,uuid"`
	UserID        string  `json:"user_id" validate:"required,min=1"`
	Title         string  `json:"title,omitempty"`
	UserPrompt    string  `json:"user_prompt,omitempty"`
}
