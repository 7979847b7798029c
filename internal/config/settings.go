package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env"
)

// Settings are the process-wide knobs, overridable through the environment.
type Settings struct {
	ConfigPath string `env:"AURI_CONFIG_PATH" envDefault:"~/.config/auri/config.json"`
	StatePath  string `env:"AURI_STATE_PATH" envDefault:"~/.config/auri/ambi.json"`
	ImagePath  string `env:"AURI_IMAGE_PATH" envDefault:"~/.config/auri"`

	AmbiInterval    time.Duration `env:"AURI_AMBI_INTERVAL" envDefault:"1s"`
	AmbiPaletteSize int           `env:"AURI_AMBI_PALETTE_SIZE" envDefault:"4"`
	AmbiTransition  time.Duration `env:"AURI_AMBI_TRANSITION" envDefault:"2500ms"`
	AmbiGrid        int           `env:"AURI_AMBI_GRID" envDefault:"32"`
}

// LoadSettings parses the environment and expands "~" in all paths.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return s, fmt.Errorf("parsing environment: %w", err)
	}
	s.ConfigPath = expandHome(s.ConfigPath)
	s.StatePath = expandHome(s.StatePath)
	s.ImagePath = expandHome(s.ImagePath)
	return s, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
