package ambilight

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/kbinani/screenshot"
)

// ErrCaptureUnavailable means there is no display to sample from. Headless
// machines and unsupported platforms hit this; the ambilight session cannot
// continue without a screen, so callers must treat it as fatal.
var ErrCaptureUnavailable = errors.New("screen capture unavailable")

// Color is one sampled screen color, 8 bits per channel.
type Color struct {
	R uint8
	G uint8
	B uint8
}

// Palette is a small set of dominant screen colors, most dominant first.
type Palette []Color

// Source captures the current contents of a display.
type Source interface {
	Capture() (*image.RGBA, error)
}

// ScreenSource samples a physical display.
type ScreenSource struct {
	Display int
}

func (s ScreenSource) Capture() (*image.RGBA, error) {
	if screenshot.NumActiveDisplays() <= s.Display {
		return nil, fmt.Errorf("%w: display %d not found", ErrCaptureUnavailable, s.Display)
	}
	img, err := screenshot.CaptureDisplay(s.Display)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}
	return img, nil
}

// Pixels within this per-axis distance of a bucket centroid join the bucket
// instead of opening a new one. Squared RGB distance keeps the grouping
// cheap at ~1Hz tick rates.
const bucketThreshold = 3 * 48 * 48

// maxBuckets caps grouping so a noisy frame cannot allocate unbounded
// centroids; overflow pixels fall into their nearest existing bucket.
const maxBuckets = 64

// ExtractPalette reduces img to its at-most-size dominant colors. The image
// is first box-filtered down to a grid x grid mosaic, then the cells are
// grouped by color distance and each group's centroid is returned, largest
// group first. Equal-sized groups keep their first-seen order, so the result
// is deterministic for a fixed input.
func ExtractPalette(img *image.RGBA, size, grid int) Palette {
	if img == nil || size <= 0 {
		return nil
	}
	if grid <= 0 {
		grid = 1
	}

	cells := downsample(img, grid)
	if len(cells) == 0 {
		return nil
	}

	type bucket struct {
		sumR, sumG, sumB uint64
		count            uint64
	}
	var buckets []*bucket

	nearest := func(c Color) (int, int) {
		best, bestDist := -1, int(^uint(0)>>1)
		for i, b := range buckets {
			cr := int(b.sumR / b.count)
			cg := int(b.sumG / b.count)
			cb := int(b.sumB / b.count)
			dr, dg, db := cr-int(c.R), cg-int(c.G), cb-int(c.B)
			dist := dr*dr + dg*dg + db*db
			if dist < bestDist {
				best, bestDist = i, dist
			}
		}
		return best, bestDist
	}

	for _, c := range cells {
		idx, dist := nearest(c)
		if idx < 0 || (dist > bucketThreshold && len(buckets) < maxBuckets) {
			buckets = append(buckets, &bucket{
				sumR:  uint64(c.R),
				sumG:  uint64(c.G),
				sumB:  uint64(c.B),
				count: 1,
			})
			continue
		}
		b := buckets[idx]
		b.sumR += uint64(c.R)
		b.sumG += uint64(c.G)
		b.sumB += uint64(c.B)
		b.count++
	}

	order := make([]int, len(buckets))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return buckets[order[i]].count > buckets[order[j]].count
	})

	if size > len(buckets) {
		size = len(buckets)
	}
	palette := make(Palette, 0, size)
	for _, idx := range order[:size] {
		b := buckets[idx]
		palette = append(palette, Color{
			R: uint8(b.sumR / b.count),
			G: uint8(b.sumG / b.count),
			B: uint8(b.sumB / b.count),
		})
	}
	return palette
}

// downsample box-filters img into at most grid x grid averaged cells.
// Images smaller than the grid collapse to one cell per pixel.
func downsample(img *image.RGBA, grid int) []Color {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	cellW := (width + grid - 1) / grid
	cellH := (height + grid - 1) / grid

	var cells []Color
	for y := bounds.Min.Y; y < bounds.Max.Y; y += cellH {
		for x := bounds.Min.X; x < bounds.Max.X; x += cellW {
			var sumR, sumG, sumB, n uint64
			for cy := y; cy < y+cellH && cy < bounds.Max.Y; cy++ {
				for cx := x; cx < x+cellW && cx < bounds.Max.X; cx++ {
					r, g, b, _ := img.At(cx, cy).RGBA()
					sumR += uint64(r >> 8)
					sumG += uint64(g >> 8)
					sumB += uint64(b >> 8)
					n++
				}
			}
			if n == 0 {
				continue
			}
			cells = append(cells, Color{
				R: uint8(sumR / n),
				G: uint8(sumG / n),
				B: uint8(sumB / n),
			})
		}
	}
	return cells
}
