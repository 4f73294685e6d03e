package generation

import (
	"context"

	"github.com/halcyonlab/genstudio-api/internal/domain"
)

// MockPodcastGenerator is a configurable PodcastGenerator for testing.
type MockPodcastGenerator struct {
	GenerateFn func(ctx context.Context, sourceContent string, cfg PodcastConfig) (*PodcastResult, error)

	// Calls records every invocation for assertion purposes.
	Calls []MockGenerateCall
}

// MockGenerateCall captures the arguments of one Generate invocation.
type MockGenerateCall struct {
	SourceContent string
	Config        PodcastConfig
}

// Generate records the call and delegates to GenerateFn, falling back to
// a fixed two-line transcript when none is set.
func (m *MockPodcastGenerator) Generate(
	ctx context.Context,
	sourceContent string,
	cfg PodcastConfig,
) (*PodcastResult, error) {
	m.Calls = append(m.Calls, MockGenerateCall{SourceContent: sourceContent, Config: cfg})

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, sourceContent, cfg)
	}

	return &PodcastResult{
		Transcript: []domain.TranscriptEntry{
			{SpeakerID: "host", Dialog: "Welcome."},
			{SpeakerID: "guest", Dialog: "Thanks for having me."},
		},
		FinalFilePath: "podcasts/mock.mp3",
	}, nil
}

var _ PodcastGenerator = (*MockPodcastGenerator)(nil)
