package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/halcyonlab/genstudio-api/internal/config"
	"github.com/halcyonlab/genstudio-api/internal/domain"
	"github.com/halcyonlab/genstudio-api/internal/generation"
)

// ErrEmptySourceContent is returned when Generate is called without any
// source content to work from.
var ErrEmptySourceContent = errors.New("source content cannot be empty")

const (
	defaultMaxRetries        = 3
	defaultRetryDelaySeconds = 2
)

// promptTemplate instructs the model to return the transcript as JSON
// matching responseSchema. The source content block is already wrapped
// by the caller (document or chat history markup).
const promptTemplate = `You are producing a two-host podcast episode titled %q.

Write a natural, engaging dialog between speakers "host_a" and "host_b"
that covers the source material below. %s

Respond with JSON only, in this exact shape:
{"transcript":[{"speaker_id":"host_a","dialog":"..."},{"speaker_id":"host_b","dialog":"..."}]}

Source material:
%s`

// responseSchema is the JSON structure the model is asked to return.
type responseSchema struct {
	Transcript []transcriptLine `json:"transcript"`
}

type transcriptLine struct {
	SpeakerID string `json:"speaker_id"`
	Dialog    string `json:"dialog"`
}

// artifactUploader is the slice of object storage the generator needs to
// materialize the finished transcript.
type artifactUploader interface {
	UploadBytes(ctx context.Context, objectKey string, data []byte, contentType string) error
}

// PodcastGenerator implements generation.PodcastGenerator using the
// Gemini API.
type PodcastGenerator struct {
	logger   *slog.Logger
	client   *genai.Client
	model    string
	uploader artifactUploader

	maxRetries        int
	retryDelaySeconds int
}

// NewPodcastGenerator creates a Gemini-backed podcast generator.
func NewPodcastGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
	uploader artifactUploader,
) (*PodcastGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if uploader == nil {
		return nil, errors.New("uploader cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &PodcastGenerator{
		logger:            logger.With(slog.String("component", "podcast_generator")),
		client:            client,
		model:             cfg.ModelName,
		uploader:          uploader,
		maxRetries:        defaultMaxRetries,
		retryDelaySeconds: defaultRetryDelaySeconds,
	}, nil
}

// Ensure PodcastGenerator implements generation.PodcastGenerator
var _ generation.PodcastGenerator = (*PodcastGenerator)(nil)

// Generate implements generation.PodcastGenerator.Generate
func (g *PodcastGenerator) Generate(
	ctx context.Context,
	sourceContent string,
	cfg generation.PodcastConfig,
) (*generation.PodcastResult, error) {
	if strings.TrimSpace(sourceContent) == "" {
		return nil, ErrEmptySourceContent
	}

	prompt := g.buildPrompt(sourceContent, cfg)

	response, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if len(response.Transcript) == 0 {
		return nil, fmt.Errorf("%w: model returned an empty transcript", generation.ErrInvalidResponse)
	}

	transcript := make([]domain.TranscriptEntry, 0, len(response.Transcript))
	for _, line := range response.Transcript {
		if line.Dialog == "" {
			continue
		}
		transcript = append(transcript, domain.TranscriptEntry{
			SpeakerID: line.SpeakerID,
			Dialog:    line.Dialog,
		})
	}
	if len(transcript) == 0 {
		return nil, fmt.Errorf("%w: transcript contains no dialog", generation.ErrInvalidResponse)
	}

	filePath, err := g.materialize(ctx, transcript)
	if err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "podcast generated",
		slog.String("title", cfg.Title),
		slog.Int("transcript_lines", len(transcript)),
		slog.String("file_path", filePath))

	return &generation.PodcastResult{
		Transcript:    transcript,
		FinalFilePath: filePath,
	}, nil
}

func (g *PodcastGenerator) buildPrompt(sourceContent string, cfg generation.PodcastConfig) string {
	guidance := "Keep the tone conversational and accurate to the material."
	if cfg.UserPrompt != "" {
		guidance = "Follow this listener guidance: " + cfg.UserPrompt
	}
	return fmt.Sprintf(promptTemplate, cfg.Title, guidance, sourceContent)
}

// callWithRetry makes the Gemini API call with exponential backoff and
// jitter. Permanent errors (blocked content, malformed responses) return
// immediately; only transport-level failures are retried.
func (g *PodcastGenerator) callWithRetry(ctx context.Context, prompt string) (*responseSchema, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		g.logger.InfoContext(ctx, "calling Gemini API",
			slog.Int("attempt", attemptNum),
			slog.Int("max_attempts", g.maxRetries+1))

		response, transient, err := g.callOnce(ctx, prompt)
		if err == nil {
			return response, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			slog.Int("attempt", attemptNum),
			slog.String("error", err.Error()))

		if !transient || attempt >= g.maxRetries {
			if transient {
				return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
					generation.ErrTransientFailure, g.maxRetries)
			}
			return nil, err
		}

		// delay = baseDelay * 2^attempt * jitter(0.5..1.0)
		backoff := float64(g.retryDelaySeconds) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5) * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// callOnce performs a single API call. The boolean reports whether a
// failure is worth retrying.
func (g *PodcastGenerator) callOnce(ctx context.Context, prompt string) (*responseSchema, bool, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		})
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, false, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, false, fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}

	text := resp.Text()
	if text == "" {
		return nil, false, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var parsed responseSchema
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, false, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err)
	}

	return &parsed, false, nil
}

// materialize uploads the transcript artifact and returns its object key.
// TODO: swap the serialized transcript for synthesized audio once a TTS
// backend is wired in.
func (g *PodcastGenerator) materialize(ctx context.Context, transcript []domain.TranscriptEntry) (string, error) {
	data, err := json.Marshal(transcript)
	if err != nil {
		return "", fmt.Errorf("failed to marshal transcript: %w", err)
	}

	objectKey := fmt.Sprintf("podcasts/%s.json", uuid.New())
	if err := g.uploader.UploadBytes(ctx, objectKey, data, "application/json"); err != nil {
		return "", fmt.Errorf("%w: failed to upload transcript artifact: %v",
			generation.ErrGenerationFailed, err)
	}

	return objectKey, nil
}
