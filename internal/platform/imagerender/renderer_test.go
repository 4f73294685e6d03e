package imagerender

import (
	"bytes"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPlaceholder_PNG(t *testing.T) {
	t.Parallel()

	r := New()
	data, err := r.RenderPlaceholder("a lighthouse at dusk", 512, 384, "png")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 512, img.Bounds().Dx())
	assert.Equal(t, 384, img.Bounds().Dy())
}

func TestRenderPlaceholder_JPEG(t *testing.T) {
	t.Parallel()

	r := New()
	data, err := r.RenderPlaceholder("a quiet harbor", 512, 512, "jpeg")
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 512, img.Bounds().Dx())
}

func TestRenderPlaceholder_ClampsDimensions(t *testing.T) {
	t.Parallel()

	r := New()
	data, err := r.RenderPlaceholder("tiny", 16, 9000, "png")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, minDimension, img.Bounds().Dx())
	assert.Equal(t, maxDimension, img.Bounds().Dy())
}

func TestRenderPlaceholder_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	r := New()
	_, err := r.RenderPlaceholder("x", 512, 512, "webp")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image format")
}

func TestRenderPlaceholder_Deterministic(t *testing.T) {
	t.Parallel()

	r := New()
	first, err := r.RenderPlaceholder("same prompt", 512, 512, "png")
	require.NoError(t, err)
	second, err := r.RenderPlaceholder("same prompt", 512, 512, "png")
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical prompts must render identical bytes")
}

func TestWrap(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{""}, wrap("", 10))
	assert.Equal(t, []string{"one two"}, wrap("one two", 10))
	assert.Equal(t, []string{"one", "two"}, wrap("one two", 4))
	// A word longer than the column limit gets hard-broken.
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, wrap("abcdefghij", 4))
}
