package alfred

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/MrTrustworthy/auri/internal/aurora"
)

// imageSize is the edge length of the generated effect previews.
const imageSize = 64

// GenerateImages renders one preview per effect into imageDir: the palette
// colors as vertical stripes, left to right.
func GenerateImages(effects []aurora.Effect, imageDir, deviceName string) error {
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		return fmt.Errorf("creating image directory: %w", err)
	}
	for _, e := range effects {
		if len(e.Palette) == 0 {
			continue
		}
		if err := writeImage(e, imageDir, deviceName); err != nil {
			return fmt.Errorf("rendering image for %q: %w", e.Name, err)
		}
	}
	return nil
}

func writeImage(e aurora.Effect, imageDir, deviceName string) error {
	img := image.NewRGBA(image.Rect(0, 0, imageSize, imageSize))
	spacing := imageSize / len(e.Palette)
	if spacing == 0 {
		spacing = 1
	}
	for i, c := range e.Palette {
		r, g, b := c.RGB()
		stripe := image.Rect(i*spacing, 0, (i+1)*spacing, imageSize)
		if i == len(e.Palette)-1 {
			stripe.Max.X = imageSize
		}
		draw.Draw(img, stripe, &image.Uniform{C: color.RGBA{R: r, G: g, B: b, A: 255}}, image.Point{}, draw.Src)
	}

	path := ImagePath(imageDir, deviceName, e.Name)
	out, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer out.Close()
	return jpeg.Encode(out, img, nil)
}
