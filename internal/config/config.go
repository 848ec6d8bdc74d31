// Package config loads the engine's small set of non-realtime defaults
// from an optional YAML document, falling back to sane built-in values
// so the engine runs with zero configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rcdx/resonance/internal/debug"
)

// Config holds the engine-wide defaults read once at startup.
type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	Logging  LoggingConfig  `yaml:"logging"`
	Scratch  ScratchConfig  `yaml:"scratch"`
}

// DeviceConfig selects the playback device's format. SDLDeviceName is
// parsed but not read by anything: the SDL backend always opens SDL2's
// default device.
type DeviceConfig struct {
	SampleRate   uint32 `yaml:"sample_rate"`
	ChannelCount uint32 `yaml:"channel_count"`
	SDLDeviceName string `yaml:"sdl_device_name"`
}

// LoggingConfig configures internal/debug at startup.
type LoggingConfig struct {
	MinLevel   string   `yaml:"min_level"`
	Components []string `yaml:"components"`
}

// ScratchConfig bounds the realtime path's pre-allocated buffer sizes.
type ScratchConfig struct {
	MaxPeriodFrames uint64 `yaml:"max_period_frames"`
}

// Default returns the engine's built-in configuration: 48kHz stereo, info
// logging with every component disabled, and a 4096-frame scratch bound
// (matching internal/graph's own scratch-buffer constant).
func Default() Config {
	return Config{
		Device: DeviceConfig{
			SampleRate:   48000,
			ChannelCount: 2,
		},
		Logging: LoggingConfig{
			MinLevel: "info",
		},
		Scratch: ScratchConfig{
			MaxPeriodFrames: 4096,
		},
	}
}

// searchLocations mirrors the order a small CLI tool would plausibly look
// in: the working directory first, then a conventional config directory.
var searchLocations = []string{
	"resonance.yaml",
	"config/resonance.yaml",
	"/etc/resonance/resonance.yaml",
}

// Load reads the first config file found in searchLocations, overlaying
// it onto Default(). If no file is found, it returns Default() with no
// error — configuration is optional by design.
func Load() (Config, error) {
	cfg := Default()

	for _, location := range searchLocations {
		data, err := os.ReadFile(location)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parsing %s: %w", location, err)
		}
		return cfg, nil
	}

	return cfg, nil
}

// LoadFrom reads exactly path, overlaying it onto Default().
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// LogLevel maps the configured string to a debug.LogLevel, defaulting to
// LogLevelInfo for an empty or unrecognized value.
func (c LoggingConfig) LogLevel() debug.LogLevel {
	switch c.MinLevel {
	case "none":
		return debug.LogLevelNone
	case "error":
		return debug.LogLevelError
	case "warning", "warn":
		return debug.LogLevelWarning
	case "debug":
		return debug.LogLevelDebug
	case "trace":
		return debug.LogLevelTrace
	default:
		return debug.LogLevelInfo
	}
}

// ApplyTo configures a debug.Logger per this LoggingConfig.
func (c LoggingConfig) ApplyTo(logger *debug.Logger) {
	logger.SetMinLevel(c.LogLevel())
	for _, name := range c.Components {
		logger.SetComponentEnabled(debug.Component(name), true)
	}
}
