package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonlab/genstudio-api/internal/domain"
	"github.com/halcyonlab/genstudio-api/internal/tasklog"
)

type fakeRenderer struct {
	renderFn func(prompt string, width, height int, format string) ([]byte, error)
}

func (r *fakeRenderer) RenderPlaceholder(prompt string, width, height int, format string) ([]byte, error) {
	if r.renderFn != nil {
		return r.renderFn(prompt, width, height, format)
	}
	return []byte("png-bytes"), nil
}

type fakeObjectStorage struct {
	uploads   map[string][]byte
	uploadErr error
	signErr   error
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{uploads: make(map[string][]byte)}
}

func (s *fakeObjectStorage) UploadBytes(ctx context.Context, objectKey string, data []byte, contentType string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploads[objectKey] = data
	return nil
}

func (s *fakeObjectStorage) PresignedURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	return "https://storage.example.test/" + objectKey + "?signed=1", nil
}

func newTestImageJob(t *testing.T, storage ObjectStorage, renderer Renderer, logStore *tasklog.MockTaskLogStore) *ImageJob {
	t.Helper()

	j, err := NewImageJob(ImageJobPayload{
		Prompt:        "a lighthouse at dusk",
		Width:         512,
		Height:        512,
		Format:        "png",
		SearchSpaceID: uuid.New(),
	}, renderer, storage, logStore, time.Hour, newTestLogger())
	require.NoError(t, err)
	return j
}

func TestNewImageJob_Validation(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{}
	storage := newFakeObjectStorage()
	logStore := tasklog.NewMockTaskLogStore()
	logger := newTestLogger()

	testCases := []struct {
		name     string
		payload  ImageJobPayload
		renderer Renderer
		storage  ObjectStorage
		wantErr  error
	}{
		{
			name:     "nil renderer",
			payload:  ImageJobPayload{Prompt: "x"},
			renderer: nil,
			storage:  storage,
			wantErr:  ErrNilRenderer,
		},
		{
			name:     "nil storage",
			payload:  ImageJobPayload{Prompt: "x"},
			renderer: renderer,
			storage:  nil,
			wantErr:  ErrNilObjectStorage,
		},
		{
			name:     "empty prompt",
			payload:  ImageJobPayload{},
			renderer: renderer,
			storage:  storage,
			wantErr:  ErrEmptyPrompt,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewImageJob(tc.payload, tc.renderer, tc.storage, logStore, time.Hour, logger)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	t.Run("defaults applied", func(t *testing.T) {
		t.Parallel()
		j, err := NewImageJob(ImageJobPayload{Prompt: "x"}, renderer, storage, logStore, 0, logger)
		require.NoError(t, err)
		assert.Equal(t, "png", j.payload.Format)
		assert.Equal(t, time.Hour, j.presign)
	})
}

func TestImageJob_Execute_Success(t *testing.T) {
	t.Parallel()

	storage := newFakeObjectStorage()
	logStore := tasklog.NewMockTaskLogStore()
	j := newTestImageJob(t, storage, &fakeRenderer{}, logStore)

	err := j.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, j.Status())

	// The artifact landed under the job-scoped object key.
	wantKey := fmt.Sprintf("generated/%s.png", j.ID())
	assert.Equal(t, []byte("png-bytes"), storage.uploads[wantKey])

	var result ImageResult
	require.NoError(t, json.Unmarshal(j.Result(), &result))
	require.Len(t, result.ResultURLs, 1)
	assert.Contains(t, result.ResultURLs[0], wantKey)

	// started, 2x progress, success — exactly one terminal entry.
	entries := logStore.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, domain.TaskLogStatusStarted, entries[0].Status)
	assert.Equal(t, domain.TaskLogStatusSuccess, entries[3].Status)
	for _, e := range entries {
		assert.Equal(t, entries[0].TaskRunID, e.TaskRunID)
	}
}

func TestImageJob_Execute_RenderFailure(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{
		renderFn: func(prompt string, width, height int, format string) ([]byte, error) {
			return nil, errors.New("encoder exploded")
		},
	}
	logStore := tasklog.NewMockTaskLogStore()
	j := newTestImageJob(t, newFakeObjectStorage(), renderer, logStore)

	err := j.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, StatusFailed, j.Status())
	assert.Nil(t, j.Result())

	entries := logStore.Entries()
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, domain.TaskLogStatusFailed, last.Status)
	assert.Equal(t, "RenderError", last.Metadata["error_type"])
	assert.Contains(t, last.Metadata["error"], "encoder exploded")
}

func TestImageJob_Execute_UploadFailure(t *testing.T) {
	t.Parallel()

	storage := newFakeObjectStorage()
	storage.uploadErr = errors.New("bucket unavailable")
	logStore := tasklog.NewMockTaskLogStore()
	j := newTestImageJob(t, storage, &fakeRenderer{}, logStore)

	err := j.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, StatusFailed, j.Status())

	last := logStore.Entries()[len(logStore.Entries())-1]
	assert.Equal(t, domain.TaskLogStatusFailed, last.Status)
	assert.Equal(t, "StorageError", last.Metadata["error_type"])
}

func TestImageJob_HydrateRoundTrip(t *testing.T) {
	t.Parallel()

	storage := newFakeObjectStorage()
	logStore := tasklog.NewMockTaskLogStore()
	original := newTestImageJob(t, storage, &fakeRenderer{}, logStore)

	registry := NewRegistry()
	RegisterImageJobHydrator(registry, &fakeRenderer{}, storage, logStore, time.Hour, newTestLogger())

	desc := &Descriptor{
		ID:      original.ID(),
		Type:    original.Type(),
		Payload: original.Payload(),
		Status:  StatusQueued,
	}

	hydrated, err := registry.Hydrate(desc)
	require.NoError(t, err)

	// The job ID survives the round trip so status continuity holds.
	assert.Equal(t, original.ID(), hydrated.ID())
	assert.Equal(t, TypeImageGeneration, hydrated.Type())
	assert.JSONEq(t, string(original.Payload()), string(hydrated.Payload()))
}

func TestPodcastJob_Meta(t *testing.T) {
	t.Parallel()

	docID := uuid.New()
	chatID := uuid.New()

	svc := &stubPodcastService{}

	docJob, err := NewPodcastJob(PodcastJobPayload{
		DocumentID:    &docID,
		SearchSpaceID: uuid.New(),
		Title:         "Doc cast",
	}, svc, newTestLogger())
	require.NoError(t, err)
	assert.Equal(t, "document", docJob.Meta()["source"])

	chatJob, err := NewPodcastJob(PodcastJobPayload{
		ChatID:        &chatID,
		SearchSpaceID: uuid.New(),
		Title:         "Chat cast",
	}, svc, newTestLogger())
	require.NoError(t, err)
	assert.Equal(t, "chat", chatJob.Meta()["source"])

	// Title may be omitted; the service derives a default from the source.
	untitled, err := NewPodcastJob(PodcastJobPayload{
		DocumentID:    &docID,
		SearchSpaceID: uuid.New(),
	}, svc, newTestLogger())
	require.NoError(t, err)
	assert.Equal(t, "document", untitled.Meta()["source"])

	// Both or neither source set is rejected.
	_, err = NewPodcastJob(PodcastJobPayload{
		DocumentID:    &docID,
		ChatID:        &chatID,
		SearchSpaceID: uuid.New(),
		Title:         "Both",
	}, svc, newTestLogger())
	assert.ErrorIs(t, err, ErrInvalidSource)
}

type stubPodcastService struct {
	docCalls  int
	chatCalls int
	err       error
	podcast   *domain.Podcast
}

func (s *stubPodcastService) GenerateDocumentPodcast(ctx context.Context, documentID, searchSpaceID uuid.UUID, userID, title, userPrompt string) (*domain.Podcast, error) {
	s.docCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.stubPodcast(searchSpaceID, title), nil
}

func (s *stubPodcastService) GenerateChatPodcast(ctx context.Context, chatID, searchSpaceID uuid.UUID, userID, title, userPrompt string) (*domain.Podcast, error) {
	s.chatCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.stubPodcast(searchSpaceID, title), nil
}

func (s *stubPodcastService) stubPodcast(searchSpaceID uuid.UUID, title string) *domain.Podcast {
	if s.podcast != nil {
		return s.podcast
	}
	return &domain.Podcast{
		ID:            uuid.New(),
		SearchSpaceID: searchSpaceID,
		Title:         title,
		FileLocation:  "podcasts/stub.mp3",
	}
}

func TestPodcastJob_Execute(t *testing.T) {
	t.Parallel()

	t.Run("document source dispatches to document pipeline", func(t *testing.T) {
		t.Parallel()

		docID := uuid.New()
		svc := &stubPodcastService{}
		j, err := NewPodcastJob(PodcastJobPayload{
			DocumentID:    &docID,
			SearchSpaceID: uuid.New(),
			Title:         "Episode one",
		}, svc, newTestLogger())
		require.NoError(t, err)

		require.NoError(t, j.Execute(context.Background()))
		assert.Equal(t, 1, svc.docCalls)
		assert.Equal(t, 0, svc.chatCalls)
		assert.Equal(t, StatusFinished, j.Status())

		var result PodcastResult
		require.NoError(t, json.Unmarshal(j.Result(), &result))
		assert.Equal(t, "Episode one", result.Title)
		assert.Equal(t, "podcasts/stub.mp3", result.FileLocation)
	})

	t.Run("chat source dispatches to chat pipeline", func(t *testing.T) {
		t.Parallel()

		chatID := uuid.New()
		svc := &stubPodcastService{}
		j, err := NewPodcastJob(PodcastJobPayload{
			ChatID:        &chatID,
			SearchSpaceID: uuid.New(),
			Title:         "Chat recap",
		}, svc, newTestLogger())
		require.NoError(t, err)

		require.NoError(t, j.Execute(context.Background()))
		assert.Equal(t, 1, svc.chatCalls)
		assert.Equal(t, 0, svc.docCalls)
	})

	t.Run("service failure marks the job failed", func(t *testing.T) {
		t.Parallel()

		docID := uuid.New()
		svc := &stubPodcastService{err: errors.New("graph run failed")}
		j, err := NewPodcastJob(PodcastJobPayload{
			DocumentID:    &docID,
			SearchSpaceID: uuid.New(),
			Title:         "Doomed",
		}, svc, newTestLogger())
		require.NoError(t, err)

		err = j.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "graph run failed")
		assert.Equal(t, StatusFailed, j.Status())
		assert.Nil(t, j.Result())
	})
}
