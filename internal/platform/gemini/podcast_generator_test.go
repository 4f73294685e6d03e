package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/halcyonlab/genstudio-api/internal/config"
	"github.com/halcyonlab/genstudio-api/internal/domain"
	"github.com/halcyonlab/genstudio-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	key         string
	data        []byte
	contentType string
	err         error
}

func (f *fakeUploader) UploadBytes(_ context.Context, objectKey string, data []byte, contentType string) error {
	if f.err != nil {
		return f.err
	}
	f.key = objectKey
	f.data = data
	f.contentType = contentType
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewPodcastGenerator_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	validCfg := config.LLMConfig{GeminiAPIKey: "test-key", ModelName: "gemini-2.0-flash"}

	t.Run("nil logger", func(t *testing.T) {
		t.Parallel()
		_, err := NewPodcastGenerator(ctx, nil, validCfg, &fakeUploader{})
		assert.Error(t, err)
	})

	t.Run("nil uploader", func(t *testing.T) {
		t.Parallel()
		_, err := NewPodcastGenerator(ctx, testLogger(), validCfg, nil)
		assert.Error(t, err)
	})

	t.Run("missing API key", func(t *testing.T) {
		t.Parallel()
		cfg := config.LLMConfig{ModelName: "gemini-2.0-flash"}
		_, err := NewPodcastGenerator(ctx, testLogger(), cfg, &fakeUploader{})
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("missing model name", func(t *testing.T) {
		t.Parallel()
		cfg := config.LLMConfig{GeminiAPIKey: "test-key"}
		_, err := NewPodcastGenerator(ctx, testLogger(), cfg, &fakeUploader{})
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	g := &PodcastGenerator{logger: testLogger()}

	t.Run("default guidance", func(t *testing.T) {
		t.Parallel()

		prompt := g.buildPrompt("<document_content>body</document_content>", generation.PodcastConfig{
			Title: "Quarterly Review",
		})

		assert.Contains(t, prompt, `"Quarterly Review"`)
		assert.Contains(t, prompt, "<document_content>body</document_content>")
		assert.Contains(t, prompt, "conversational")
	})

	t.Run("listener guidance from user prompt", func(t *testing.T) {
		t.Parallel()

		prompt := g.buildPrompt("source", generation.PodcastConfig{
			Title:      "Quarterly Review",
			UserPrompt: "focus on the financial highlights",
		})

		assert.Contains(t, prompt, "focus on the financial highlights")
		assert.NotContains(t, prompt, "conversational")
	})
}

func TestMaterialize(t *testing.T) {
	t.Parallel()

	transcript := []domain.TranscriptEntry{
		{SpeakerID: "host_a", Dialog: "Welcome back to the show."},
		{SpeakerID: "host_b", Dialog: "Glad to be here."},
	}

	t.Run("uploads transcript artifact", func(t *testing.T) {
		t.Parallel()

		uploader := &fakeUploader{}
		g := &PodcastGenerator{logger: testLogger(), uploader: uploader}

		key, err := g.materialize(context.Background(), transcript)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(key, "podcasts/"))
		assert.True(t, strings.HasSuffix(key, ".json"))
		assert.Equal(t, key, uploader.key)
		assert.Equal(t, "application/json", uploader.contentType)

		var roundTrip []domain.TranscriptEntry
		require.NoError(t, json.Unmarshal(uploader.data, &roundTrip))
		assert.Equal(t, transcript, roundTrip)
	})

	t.Run("upload failure wraps generation error", func(t *testing.T) {
		t.Parallel()

		uploader := &fakeUploader{err: errors.New("bucket unavailable")}
		g := &PodcastGenerator{logger: testLogger(), uploader: uploader}

		_, err := g.materialize(context.Background(), transcript)
		assert.ErrorIs(t, err, generation.ErrGenerationFailed)
	})
}
