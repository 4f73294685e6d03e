package job

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func TestQueue_Enqueue(t *testing.T) {
	t.Parallel()

	t.Run("successful enqueue", func(t *testing.T) {
		t.Parallel()

		q := NewQueue(2, newTestLogger())
		j := CreateMockJobWithPayload("test job")

		err := q.Enqueue(j)
		require.NoError(t, err)

		received := <-q.GetChannel()
		assert.Equal(t, j.ID(), received.ID())
	})

	t.Run("queue full", func(t *testing.T) {
		t.Parallel()

		q := NewQueue(1, newTestLogger())

		require.NoError(t, q.Enqueue(CreateMockJobWithPayload("first")))

		err := q.Enqueue(CreateMockJobWithPayload("second"))
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("queue closed", func(t *testing.T) {
		t.Parallel()

		q := NewQueue(1, newTestLogger())
		q.Close()

		err := q.Enqueue(CreateMockJobWithPayload("late"))
		assert.ErrorIs(t, err, ErrQueueClosed)
	})
}

func TestQueue_Close(t *testing.T) {
	t.Parallel()

	q := NewQueue(2, newTestLogger())
	require.NoError(t, q.Enqueue(CreateMockJobWithPayload("buffered")))

	q.Close()
	// Closing twice must not panic.
	q.Close()

	// Buffered jobs remain readable after close.
	_, ok := <-q.GetChannel()
	assert.True(t, ok)

	_, ok = <-q.GetChannel()
	assert.False(t, ok, "channel should be drained and closed")
}
