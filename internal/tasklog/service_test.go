package tasklog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/halcyonlab/genstudio-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewService(t *testing.T) {
	t.Parallel()

	t.Run("fails with nil store", func(t *testing.T) {
		t.Parallel()

		_, err := NewService(nil, uuid.New(), testLogger())
		assert.ErrorIs(t, err, ErrNilStore)
	})

	t.Run("accepts nil logger", func(t *testing.T) {
		t.Parallel()

		svc, err := NewService(NewMockTaskLogStore(), uuid.New(), nil)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestService_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	scopeID := uuid.New()
	logStore := NewMockTaskLogStore()
	svc, err := NewService(logStore, scopeID, testLogger())
	require.NoError(t, err)

	handle, err := svc.LogTaskStart(ctx, "generate_document_podcast", "podcast_task",
		"Starting podcast generation", map[string]string{"document_id": "doc-1"})
	require.NoError(t, err)
	require.NotNil(t, handle)
	assert.Equal(t, handle.ID, handle.TaskRunID)

	require.NoError(t, svc.LogTaskProgress(ctx, handle, "Fetching document", "fetch_document", nil))
	require.NoError(t, svc.LogTaskProgress(ctx, handle, "Running generation", "run_podcast_graph", nil))
	require.NoError(t, svc.LogTaskSuccess(ctx, handle, "Generated podcast", map[string]string{"podcast_id": "p-1"}))

	entries, err := logStore.ListByRunID(ctx, handle.TaskRunID)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// One started entry opens the trail, one terminal entry closes it.
	assert.Equal(t, domain.TaskLogStatusStarted, entries[0].Status)
	assert.Equal(t, domain.TaskLogStatusProgress, entries[1].Status)
	assert.Equal(t, "fetch_document", entries[1].Stage)
	assert.Equal(t, domain.TaskLogStatusProgress, entries[2].Status)
	assert.Equal(t, "run_podcast_graph", entries[2].Stage)
	assert.Equal(t, domain.TaskLogStatusSuccess, entries[3].Status)

	// Progress entries carry strictly non-decreasing creation order.
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].CreatedAt.Before(entries[i-1].CreatedAt))
	}

	// All entries share the run ID and scope.
	for _, e := range entries {
		assert.Equal(t, handle.TaskRunID, e.TaskRunID)
		assert.Equal(t, scopeID, e.SearchSpaceID)
		assert.Equal(t, "generate_document_podcast", e.TaskName)
	}
}

func TestService_LogTaskFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	logStore := NewMockTaskLogStore()
	svc, err := NewService(logStore, uuid.New(), testLogger())
	require.NoError(t, err)

	handle, err := svc.LogTaskStart(ctx, "generate_chat_podcast", "podcast_task", "starting", nil)
	require.NoError(t, err)

	err = svc.LogTaskFailure(ctx, handle, "Chat not found", "chat 42 missing",
		map[string]string{"error_type": "ChatNotFound"})
	require.NoError(t, err)

	entries := logStore.Entries()
	require.Len(t, entries, 2)
	terminal := entries[1]
	assert.Equal(t, domain.TaskLogStatusFailed, terminal.Status)
	assert.True(t, terminal.IsTerminal())
	assert.Equal(t, "ChatNotFound", terminal.Metadata["error_type"])
	assert.Equal(t, "chat 42 missing", terminal.Metadata["error"])
}

func TestService_NilHandle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, err := NewService(NewMockTaskLogStore(), uuid.New(), testLogger())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.LogTaskProgress(ctx, nil, "m", "s", nil), ErrNilHandle)
	assert.ErrorIs(t, svc.LogTaskSuccess(ctx, nil, "m", nil), ErrNilHandle)
	assert.ErrorIs(t, svc.LogTaskFailure(ctx, nil, "m", "e", nil), ErrNilHandle)
}

func TestService_StoreErrorPropagates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	logStore := NewMockTaskLogStore()
	logStore.AppendFn = func(ctx context.Context, entry *domain.TaskLogEntry) error {
		return errors.New("insert failed")
	}

	svc, err := NewService(logStore, uuid.New(), testLogger())
	require.NoError(t, err)

	_, err = svc.LogTaskStart(ctx, "generate_document_podcast", "podcast_task", "starting", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to log task start")
}
