// Package imagerender produces deterministic placeholder images for
// prompts. It stands in for a real diffusion backend: the output is a
// solid background derived from the prompt with the prompt text drawn
// on top, so two renders of the same prompt are byte-identical.
package imagerender

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// minDimension is the smallest accepted width or height; smaller
	// requests are clamped up rather than rejected.
	minDimension = 256

	// maxDimension bounds memory use for a single render.
	maxDimension = 4096

	jpegQuality = 85
)

// Renderer renders placeholder images. The zero value is ready to use.
type Renderer struct{}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{}
}

// RenderPlaceholder renders the prompt onto a solid-color canvas and
// encodes it in the requested format ("png" or "jpeg").
func (r *Renderer) RenderPlaceholder(prompt string, width, height int, format string) ([]byte, error) {
	width = clamp(width)
	height = clamp(height)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor(prompt)), image.Point{}, draw.Src)

	drawPrompt(img, prompt, width, height)

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "", "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode png: %w", err)
		}
	case "jpeg", "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode jpeg: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}

	return buf.Bytes(), nil
}

func clamp(dim int) int {
	if dim < minDimension {
		return minDimension
	}
	if dim > maxDimension {
		return maxDimension
	}
	return dim
}

// backgroundColor derives a muted background from the prompt so distinct
// prompts are visually distinguishable at a glance.
func backgroundColor(prompt string) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	sum := h.Sum32()

	// Keep channels in a mid range so white text stays readable.
	return color.RGBA{
		R: uint8(64 + (sum>>16)%128),
		G: uint8(64 + (sum>>8)%128),
		B: uint8(64 + sum%128),
		A: 255,
	}
}

// drawPrompt renders the prompt as wrapped text centered vertically.
func drawPrompt(img *image.RGBA, prompt string, width, height int) {
	face := basicfont.Face7x13
	maxCols := (width - 20) / face.Advance
	if maxCols < 1 {
		maxCols = 1
	}

	lines := wrap(prompt, maxCols)
	lineHeight := face.Height + 4
	startY := (height - len(lines)*lineHeight) / 2
	if startY < face.Ascent {
		startY = face.Ascent
	}

	for i, line := range lines {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.White,
			Face: face,
			Dot: fixed.P(
				(width-len(line)*face.Advance)/2,
				startY+i*lineHeight,
			),
		}
		d.DrawString(line)
	}
}

// wrap splits text into lines of at most maxCols characters, breaking on
// spaces where possible.
func wrap(text string, maxCols int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) <= maxCols {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	lines = append(lines, current)

	// Hard-break any single word longer than maxCols.
	var out []string
	for _, line := range lines {
		for len(line) > maxCols {
			out = append(out, line[:maxCols])
			line = line[maxCols:]
		}
		out = append(out, line)
	}
	return out
}
