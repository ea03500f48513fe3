package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima/engine/core"
)

type ApplicationConfig struct {
	// The application name, used in logs.
	Name     string        `toml:"name" env:"NAME"`
	LogLevel core.LogLevel `toml:"log_level" env:"LOG_LEVEL"`
	// Directory holding prefabs, data files and the manifest.
	AssetDir string `toml:"asset_dir" env:"ASSET_DIR"`
	// Manifest path relative to AssetDir.
	Manifest string `toml:"manifest" env:"MANIFEST"`
	// Kind of the state started as the root of the hierarchy.
	RootState    string `toml:"root_state" env:"ROOT_STATE"`
	Workers      int    `toml:"workers" env:"WORKERS"`
	JobQueueSize int    `toml:"job_queue_size" env:"JOB_QUEUE_SIZE"`
	WatchAssets  bool   `toml:"watch_assets" env:"WATCH_ASSETS"`
	// Ticks per second of the control loop.
	FrameRate int `toml:"frame_rate" env:"FRAME_RATE"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:         "Anima Game Engine",
		LogLevel:     core.InfoLevel,
		AssetDir:     "assets",
		Manifest:     "game.manifest.toml",
		RootState:    "Root",
		Workers:      4,
		JobQueueSize: 64,
		WatchAssets:  false,
		FrameRate:    60,
	}
}

// LoadApplicationConfig starts from the defaults, applies the TOML file at
// path if there is one, then ANIMA_* environment variables.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	cfg := DefaultApplicationConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			core.LogDebug("no config file at '%s', using defaults", path)
		case err != nil:
			return nil, err
		default:
			if err := toml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("config '%s': %w", path, err)
			}
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "ANIMA_"}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.JobQueueSize < 0 {
		return fmt.Errorf("job queue size must not be negative, got %d", c.JobQueueSize)
	}
	if c.FrameRate < 1 {
		return fmt.Errorf("frame rate must be at least 1, got %d", c.FrameRate)
	}
	if c.RootState == "" {
		return fmt.Errorf("root state is required")
	}
	return nil
}
