package redisstore

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonlab/genstudio-api/internal/job"
)

func newTestStore(t *testing.T, ttl time.Duration) (*StatusStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewStatusStore(client, ttl, logger), mr
}

func TestStatusStore_Lifecycle(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()
	jobID := uuid.New()

	require.NoError(t, store.SetQueued(ctx, jobID, map[string]string{"prompt": "a quiet harbor"}))

	record, err := store.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusQueued, record.Status)
	assert.Equal(t, "a quiet harbor", record.Meta["prompt"])
	assert.False(t, record.Terminal())

	require.NoError(t, store.SetRunning(ctx, jobID))

	record, err = store.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusRunning, record.Status)
	// Metadata survives transitions.
	assert.Equal(t, "a quiet harbor", record.Meta["prompt"])

	result := json.RawMessage(`{"result_urls":["https://storage.example.test/generated/x.png"]}`)
	require.NoError(t, store.SetFinished(ctx, jobID, result))

	record, err = store.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFinished, record.Status)
	assert.JSONEq(t, string(result), string(record.Result))
	assert.Empty(t, record.Error)
	assert.True(t, record.Terminal())
}

func TestStatusStore_Failure(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()
	jobID := uuid.New()

	require.NoError(t, store.SetQueued(ctx, jobID, nil))
	require.NoError(t, store.SetRunning(ctx, jobID))
	require.NoError(t, store.SetFailed(ctx, jobID, "upstream generation error"))

	record, err := store.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, record.Status)
	assert.Equal(t, "upstream generation error", record.Error)
	assert.Nil(t, record.Result)
	assert.True(t, record.Terminal())
}

func TestStatusStore_Get_Unknown(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	_, err := store.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, job.ErrStatusNotFound)
}

func TestStatusStore_Expiry(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()
	jobID := uuid.New()

	require.NoError(t, store.SetQueued(ctx, jobID, nil))

	// Past the retention window the record is indistinguishable from one
	// that never existed.
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, jobID)
	assert.ErrorIs(t, err, job.ErrStatusNotFound)
}

func TestStatusStore_TerminalWriteAfterExpiry(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()
	jobID := uuid.New()

	require.NoError(t, store.SetQueued(ctx, jobID, nil))
	mr.FastForward(2 * time.Minute)

	// A worker finishing after the record expired still leaves an
	// observable terminal state.
	require.NoError(t, store.SetFinished(ctx, jobID, json.RawMessage(`{"ok":true}`)))

	record, err := store.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFinished, record.Status)
}
