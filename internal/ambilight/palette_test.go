package ambilight

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quadrantImage builds a 4x4 bitmap whose top-left quadrant is red and whose
// remaining area is blue, so blue dominates 3:1.
func quadrantImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 && y < 2 {
				img.Set(x, y, red)
			} else {
				img.Set(x, y, blue)
			}
		}
	}
	return img
}

func solidImage(c color.RGBA, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestExtractPaletteOrdersByDominance(t *testing.T) {
	palette := ExtractPalette(quadrantImage(), 2, 2)

	require.Len(t, palette, 2)
	assert.Equal(t, Color{B: 255}, palette[0], "dominant quadrant color comes first")
	assert.Equal(t, Color{R: 255}, palette[1])
}

func TestExtractPaletteIsDeterministic(t *testing.T) {
	img := quadrantImage()
	first := ExtractPalette(img, 4, 2)
	second := ExtractPalette(img, 4, 2)
	assert.Equal(t, first, second)
}

func TestExtractPaletteSolidColor(t *testing.T) {
	img := solidImage(color.RGBA{R: 10, G: 20, B: 30, A: 255}, 16, 16)
	palette := ExtractPalette(img, 4, 4)

	// A uniform screen collapses into a single bucket regardless of the
	// requested palette size.
	require.Len(t, palette, 1)
	assert.Equal(t, Color{R: 10, G: 20, B: 30}, palette[0])
}

func TestExtractPaletteSizeClamp(t *testing.T) {
	palette := ExtractPalette(quadrantImage(), 1, 2)
	require.Len(t, palette, 1)
	assert.Equal(t, Color{B: 255}, palette[0])
}

func TestExtractPaletteNilImage(t *testing.T) {
	assert.Nil(t, ExtractPalette(nil, 4, 32))
}

// End to end: two-quadrant bitmap through capture, extraction and encoding
// for a two-panel device.
func TestQuadrantsToTwoPanelEffect(t *testing.T) {
	palette := ExtractPalette(quadrantImage(), 2, 2)
	cmd, err := EncodeEffect(palette, []int{7, 9}, time.Second)
	require.NoError(t, err)

	assert.Equal(t, "2; 7 1; 0 0 255 0 10; 9 1; 255 0 0 0 10", cmd.AnimData)
}
