package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DisplayConfig holds the [display] section of the config file: default
// mode for new sessions and the detection wait tuning. All of it may be
// changed at runtime via the config watcher.
type DisplayConfig struct {
	Width               int    `toml:"width"`
	Height              int    `toml:"height"`
	RefreshRate         int    `toml:"refresh_rate"`
	HDR                 bool   `toml:"hdr"`
	DetectionPolicy     string `toml:"detection_policy"`
	DetectionIntervalMs int    `toml:"detection_interval_ms"`
	DetectionAttempts   int    `toml:"detection_attempts"`
}

// DefaultDisplayConfig returns the built-in display defaults.
func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		Width:           1920,
		Height:          1080,
		RefreshRate:     60,
		DetectionPolicy: "degrade",
	}
}

// LoadDisplayConfig loads the [display] section from a TOML config file.
// Missing file or section yields the defaults; keys not present keep their
// default value.
func LoadDisplayConfig(configPath string) (DisplayConfig, error) {
	cfg := DefaultDisplayConfig()

	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var rawConfig struct {
		Display DisplayConfig `toml:"display"`
	}
	rawConfig.Display = cfg
	if err := toml.Unmarshal(data, &rawConfig); err != nil {
		return cfg, err
	}

	return rawConfig.Display, nil
}
