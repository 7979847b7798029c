// Package alfred renders the Alfred Script Filter JSON for the effect picker.
package alfred

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/MrTrustworthy/auri/internal/aurora"
)

// Item is one row in the Alfred prompt.
type Item struct {
	UID          string `json:"uuid"`
	Title        string `json:"title"`
	Autocomplete string `json:"autocomplete"`
	Arg          string `json:"arg"`
	Subtitle     string `json:"subtitle"`
	Icon         Icon   `json:"icon"`
}

type Icon struct {
	Path string `json:"path"`
}

// ImagePath is where the preview image for an effect of a device lives.
func ImagePath(imageDir, deviceName, effectName string) string {
	return filepath.Join(imageDir, fmt.Sprintf("img_%s_%s.jpg", deviceName, effectName))
}

// Prompt builds the Script Filter document listing every effect.
func Prompt(effects []aurora.Effect, imageDir, deviceName string) ([]byte, error) {
	items := make([]Item, 0, len(effects))
	for _, e := range effects {
		items = append(items, Item{
			UID:          e.Name,
			Title:        e.Name,
			Autocomplete: e.Name,
			Arg:          e.Name,
			Subtitle:     "change theme",
			Icon:         Icon{Path: ImagePath(imageDir, deviceName, e.Name)},
		})
	}
	return json.Marshal(map[string][]Item{"items": items})
}
