package logger

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	t.Run("returns stored logger", func(t *testing.T) {
		t.Parallel()

		stored := slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx := WithContext(context.Background(), stored)

		assert.Same(t, stored, FromContext(ctx))
	})

	t.Run("falls back to default when absent", func(t *testing.T) {
		t.Parallel()

		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("FromContextOrDefault prefers context logger", func(t *testing.T) {
		t.Parallel()

		stored := slog.New(slog.NewTextHandler(io.Discard, nil))
		fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx := WithContext(context.Background(), stored)

		assert.Same(t, stored, FromContextOrDefault(ctx, fallback))
		assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	})
}
