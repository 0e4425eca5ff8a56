package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Render settings
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	OverlayStrength float64 `yaml:"overlay_strength"`
	Saturation      float64 `yaml:"saturation"`
	Contrast        float64 `yaml:"contrast"`
	Smoother        bool    `yaml:"smoother"`
	Palette         string  `yaml:"palette"`

	// Output settings
	Output   string `yaml:"output"`
	NoReveal bool   `yaml:"no_reveal"`
	Viewer   string `yaml:"viewer"`
	// ViewerCommand replaces the platform opener for the system viewer
	ViewerCommand string `yaml:"viewer_command,omitempty"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`
}

type FFmpegConfig struct {
	BinaryPath  string `yaml:"binary_path"`
	ProbePath   string `yaml:"probe_path"`
	Threads     int    `yaml:"threads"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Viewer kinds
const (
	ViewerSystem = "system"
	ViewerWindow = "window"
)

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks value ranges that would otherwise fail deep in the pipeline
func (c *Config) Validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("width must be positive, got %d", c.Width)
	}
	if c.Height < 0 {
		return fmt.Errorf("height must not be negative, got %d", c.Height)
	}
	if c.OverlayStrength < 0 || c.OverlayStrength > 1 {
		return fmt.Errorf("overlay strength must be within [0,1], got %g", c.OverlayStrength)
	}
	if c.Saturation < 0 {
		return fmt.Errorf("saturation must not be negative, got %g", c.Saturation)
	}
	if c.Contrast < 0 {
		return fmt.Errorf("contrast must not be negative, got %g", c.Contrast)
	}
	switch c.Viewer {
	case ViewerSystem, ViewerWindow:
	default:
		return fmt.Errorf("unknown viewer %q (use %s or %s)", c.Viewer, ViewerSystem, ViewerWindow)
	}
	if c.FFmpeg.Threads < 0 {
		return fmt.Errorf("ffmpeg threads must not be negative, got %d", c.FFmpeg.Threads)
	}
	return nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Width:           1280,
		Height:          512,
		OverlayStrength: 0.15,
		Saturation:      1.5,
		Contrast:        1.2,
		Smoother:        false,
		Palette:         "classic",
		Output:          "output.png",
		NoReveal:        false,
		Viewer:          ViewerSystem,
		FFmpeg: FFmpegConfig{
			BinaryPath:  "ffmpeg",
			ProbePath:   "ffprobe",
			Threads:     0,
			TimeoutSecs: 0,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./framestack.yaml",
		"./framestack.yml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".framestack", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return Default()
}
