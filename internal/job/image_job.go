package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/halcyonlab/genstudio-api/internal/store"
	"github.com/halcyonlab/genstudio-api/internal/tasklog"
)

// Common errors for ImageJob construction
var (
	ErrNilRenderer      = errors.New("renderer cannot be nil")
	ErrNilObjectStorage = errors.New("object storage cannot be nil")
	ErrNilTaskLogStore  = errors.New("task log store cannot be nil")
	ErrNilLogger        = errors.New("logger cannot be nil")
	ErrEmptyPrompt      = errors.New("prompt cannot be empty")
)

// Renderer produces placeholder image bytes for a prompt. The concrete
// implementation lives under internal/platform/imagerender.
type Renderer interface {
	RenderPlaceholder(prompt string, width, height int, format string) ([]byte, error)
}

// ObjectStorage is the object-storage collaborator consumed by jobs:
// upload artifact bytes and resolve a time-limited download URL.
type ObjectStorage interface {
	UploadBytes(ctx context.Context, objectKey string, data []byte, contentType string) error
	PresignedURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
}

// ImageJobPayload represents the serialized data stored in the job descriptor.
type ImageJobPayload struct {
	Prompt        string    `json:"prompt"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	Format        string    `json:"format"`
	SearchSpaceID uuid.UUID `json:"search_space_id"`
}

// ImageResult is the result payload exposed to pollers when an image job
// finishes.
type ImageResult struct {
	ResultURLs []string `json:"result_urls"`
}

// ImageJob implements the Job interface for placeholder image generation:
// render the prompt onto an image, upload it to object storage, and
// expose a presigned URL as the result.
type ImageJob struct {
	id       uuid.UUID
	payload  ImageJobPayload
	renderer Renderer
	storage  ObjectStorage
	logStore store.TaskLogStore
	logger   *slog.Logger
	presign  time.Duration
	status   Status
	result   json.RawMessage
}

// NewImageJob creates a new image generation job.
func NewImageJob(
	payload ImageJobPayload,
	renderer Renderer,
	storage ObjectStorage,
	logStore store.TaskLogStore,
	presignTTL time.Duration,
	logger *slog.Logger,
) (*ImageJob, error) {
	if renderer == nil {
		return nil, ErrNilRenderer
	}
	if storage == nil {
		return nil, ErrNilObjectStorage
	}
	if logStore == nil {
		return nil, ErrNilTaskLogStore
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if payload.Prompt == "" {
		return nil, ErrEmptyPrompt
	}
	if payload.Format == "" {
		payload.Format = "png"
	}
	if presignTTL <= 0 {
		presignTTL = time.Hour
	}

	return &ImageJob{
		id:       uuid.New(),
		payload:  payload,
		renderer: renderer,
		storage:  storage,
		logStore: logStore,
		presign:  presignTTL,
		logger:   logger.With("job_type", TypeImageGeneration),
		status:   StatusQueued,
	}, nil
}

// hydrateImageJob rebuilds an ImageJob from a stored descriptor, keeping
// the original job ID so status continuity is preserved across restarts.
func hydrateImageJob(
	desc *Descriptor,
	renderer Renderer,
	storage ObjectStorage,
	logStore store.TaskLogStore,
	presignTTL time.Duration,
	logger *slog.Logger,
) (*ImageJob, error) {
	var payload ImageJobPayload
	if err := json.Unmarshal(desc.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal image job payload: %w", err)
	}

	j, err := NewImageJob(payload, renderer, storage, logStore, presignTTL, logger)
	if err != nil {
		return nil, err
	}
	j.id = desc.ID
	return j, nil
}

// ID returns the job's unique identifier
func (j *ImageJob) ID() uuid.UUID {
	return j.id
}

// Type returns the job type identifier
func (j *ImageJob) Type() string {
	return TypeImageGeneration
}

// Payload returns the job data as a byte slice
func (j *ImageJob) Payload() []byte {
	data, err := json.Marshal(j.payload)
	if err != nil {
		j.logger.Error("failed to marshal job payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current job status
func (j *ImageJob) Status() Status {
	return j.status
}

// Result returns the serialized ImageResult after a successful Execute.
func (j *ImageJob) Result() json.RawMessage {
	return j.result
}

// Meta exposes the prompt in the status record, mirroring how the
// submission gateway reports job metadata to pollers.
func (j *ImageJob) Meta() map[string]string {
	return map[string]string{"prompt": j.payload.Prompt}
}

// Execute renders the placeholder image and uploads it. Every exit path
// writes exactly one terminal task log entry before returning.
func (j *ImageJob) Execute(ctx context.Context) error {
	j.status = StatusRunning

	taskLogger, err := tasklog.NewService(j.logStore, j.payload.SearchSpaceID, j.logger)
	if err != nil {
		j.status = StatusFailed
		return fmt.Errorf("failed to create task logger: %w", err)
	}

	handle, err := taskLogger.LogTaskStart(ctx, "generate_image", "image_task",
		fmt.Sprintf("Starting image generation for prompt %q", truncate(j.payload.Prompt, 120)),
		map[string]string{
			"prompt": truncate(j.payload.Prompt, 500),
			"width":  strconv.Itoa(j.payload.Width),
			"height": strconv.Itoa(j.payload.Height),
			"format": j.payload.Format,
		})
	if err != nil {
		j.status = StatusFailed
		return fmt.Errorf("failed to log task start: %w", err)
	}

	fail := func(message string, errorType string, cause error) error {
		j.status = StatusFailed
		if logErr := taskLogger.LogTaskFailure(ctx, handle, message, cause.Error(),
			map[string]string{"error_type": errorType}); logErr != nil {
			j.logger.Error("failed to log task failure", "error", logErr)
		}
		return fmt.Errorf("%s: %w", message, cause)
	}

	if err := taskLogger.LogTaskProgress(ctx, handle, "Rendering placeholder image", "render_image", nil); err != nil {
		j.logger.Error("failed to log task progress", "error", err)
	}

	data, err := j.renderer.RenderPlaceholder(j.payload.Prompt, j.payload.Width, j.payload.Height, j.payload.Format)
	if err != nil {
		return fail("failed to render image", "RenderError", err)
	}

	objectKey := fmt.Sprintf("generated/%s.%s", j.id, j.payload.Format)

	if err := taskLogger.LogTaskProgress(ctx, handle, "Uploading image to object storage", "upload_artifact",
		map[string]string{"object_key": objectKey}); err != nil {
		j.logger.Error("failed to log task progress", "error", err)
	}

	if err := j.storage.UploadBytes(ctx, objectKey, data, "image/"+j.payload.Format); err != nil {
		return fail("failed to upload image", "StorageError", err)
	}

	url, err := j.storage.PresignedURL(ctx, objectKey, j.presign)
	if err != nil {
		return fail("failed to resolve presigned URL", "StorageError", err)
	}

	result, err := json.Marshal(ImageResult{ResultURLs: []string{url}})
	if err != nil {
		return fail("failed to marshal result", "UnexpectedError", err)
	}
	j.result = result

	if err := taskLogger.LogTaskSuccess(ctx, handle, "Generated image uploaded",
		map[string]string{"object_key": objectKey}); err != nil {
		j.logger.Error("failed to log task success", "error", err)
	}

	j.status = StatusFinished
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
