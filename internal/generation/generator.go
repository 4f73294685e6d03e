package generation

import (
	"context"

	"github.com/google/uuid"
	"github.com/halcyonlab/genstudio-api/internal/domain"
)

// PodcastConfig carries the per-invocation settings handed to the
// generation pipeline alongside the source content.
type PodcastConfig struct {
	Title         string
	UserID        string
	SearchSpaceID uuid.UUID
	UserPrompt    string
}

// PodcastResult is the pipeline's output: the ordered dialog transcript
// and the location of the materialized audio file.
type PodcastResult struct {
	Transcript    []domain.TranscriptEntry
	FinalFilePath string
}

// PodcastGenerator defines the interface for the podcast generation
// pipeline. This interface serves as a boundary between the application
// core and the external agent graph, following the hexagonal architecture
// pattern: the pipeline is consumed only through this input/output
// contract, and tests substitute stub implementations.
type PodcastGenerator interface {
	// Generate turns structured source content (a document wrapper or a
	// serialized chat history) into a podcast transcript and file.
	//
	// Returns one of the sentinel errors from errors.go (possibly
	// wrapped) when generation fails.
	Generate(ctx context.Context, sourceContent string, cfg PodcastConfig) (*PodcastResult, error)
}
