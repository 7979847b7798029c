package aurora

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// FlagTiles is how many color tiles a terminal flag shows. Shorter palettes
// wrap around so every flag has uniform width.
const FlagTiles = 10

// EffectColor is one palette entry in the device's HSB color space:
// hue in [0,360], saturation and brightness in [0,100].
type EffectColor struct {
	Hue        int `json:"hue"`
	Saturation int `json:"saturation"`
	Brightness int `json:"brightness"`
}

// RGB converts the palette entry to 8-bit RGB channels.
func (c EffectColor) RGB() (uint8, uint8, uint8) {
	col := colorful.Hsv(float64(c.Hue), float64(c.Saturation)/100, float64(c.Brightness)/100)
	r, g, b := col.Clamped().RGB255()
	return r, g, b
}

// Hex returns the palette entry as a #rrggbb string.
func (c EffectColor) Hex() string {
	r, g, b := c.RGB()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Effect is a named animation stored on the device.
type Effect struct {
	Name    string        `json:"animName"`
	Palette []EffectColor `json:"palette"`
}

// ColorFlag renders the effect palette as a strip of background-colored
// tiles for terminal output.
func (e Effect) ColorFlag() string {
	if len(e.Palette) == 0 {
		return strings.Repeat(" ", FlagTiles)
	}
	var flag strings.Builder
	for i := 0; i < FlagTiles; i++ {
		c := e.Palette[i%len(e.Palette)]
		tile := lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Render(" ")
		flag.WriteString(tile)
	}
	return flag.String()
}

// EffectCommand is the wire payload of an effect write. Command "add"
// creates or overwrites the animation named AnimName.
type EffectCommand struct {
	Command   string        `json:"command"`
	AnimName  string        `json:"animName"`
	AnimType  string        `json:"animType"`
	ColorType string        `json:"colorType"`
	AnimData  string        `json:"animData,omitempty"`
	Palette   []EffectColor `json:"palette"`
	Loop      bool          `json:"loop"`
}
