package ambilight

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrTrustworthy/auri/internal/aurora"
	"github.com/lucasb-eyer/go-colorful"
)

// EffectName is the single device-side animation the ambilight loop owns.
// It is created once and overwritten on every tick.
const EffectName = "AuriAmbi"

var (
	// ErrEmptyPalette means the extractor produced no colors. That is a
	// contract violation, not a transient condition.
	ErrEmptyPalette = errors.New("cannot encode an effect from an empty palette")
	// ErrNoPanels means the device reported a layout without light panels.
	ErrNoPanels = errors.New("device reports no panels to assign colors to")
)

// EncodeEffect builds the device effect command for one tick: the palette
// colors are spread round-robin across all panels, each panel crossfading to
// its color over transition. Deterministic: identical inputs produce an
// identical command.
func EncodeEffect(palette Palette, panelIDs []int, transition time.Duration) (aurora.EffectCommand, error) {
	if len(palette) == 0 {
		return aurora.EffectCommand{}, ErrEmptyPalette
	}
	if len(panelIDs) == 0 {
		return aurora.EffectCommand{}, ErrNoPanels
	}

	hsb := make([]aurora.EffectColor, 0, len(palette))
	for _, c := range palette {
		hsb = append(hsb, toHSB(c))
	}

	// Custom animData frames: "<numPanels>; <panelId> <numFrames>; <R> <G>
	// <B> <W> <transitionTime>; ..." with the transition in deciseconds.
	ds := deciseconds(transition)
	var animData strings.Builder
	fmt.Fprintf(&animData, "%d", len(panelIDs))
	for i, id := range panelIDs {
		c := palette[i%len(palette)]
		fmt.Fprintf(&animData, "; %d 1; %d %d %d 0 %d", id, c.R, c.G, c.B, ds)
	}

	return aurora.EffectCommand{
		Command:   "add",
		AnimName:  EffectName,
		AnimType:  "custom",
		ColorType: "HSB",
		AnimData:  animData.String(),
		Palette:   hsb,
		Loop:      true,
	}, nil
}

// deciseconds converts to the device's transition unit, rounding up so a
// nonzero transition never degrades to a hard cut.
func deciseconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	ds := int((d + 100*time.Millisecond - time.Nanosecond) / (100 * time.Millisecond))
	if ds < 1 {
		ds = 1
	}
	return ds
}

// toHSB converts an RGB sample into the device's palette color space,
// clamping every component into its accepted range.
func toHSB(c Color) aurora.EffectColor {
	h, s, v := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hsv()
	return aurora.EffectColor{
		Hue:        clamp(int(h), 0, 360),
		Saturation: clamp(int(s*100), 0, 100),
		Brightness: clamp(int(v*100), 0, 100),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
