package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rcdx/resonance/internal/debug"
)

func TestDefault_MatchesDocumentedValues(t *testing.T) {
	cfg := Default()
	if cfg.Device.SampleRate != 48000 || cfg.Device.ChannelCount != 2 {
		t.Fatalf("unexpected device defaults: %+v", cfg.Device)
	}
	if cfg.Logging.MinLevel != "info" {
		t.Fatalf("unexpected logging default: %+v", cfg.Logging)
	}
	if cfg.Scratch.MaxPeriodFrames != 4096 {
		t.Fatalf("unexpected scratch default: %+v", cfg.Scratch)
	}
}

func TestLoadFrom_OverlaysOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resonance.yaml")
	doc := "device:\n  sample_rate: 44100\nlogging:\n  min_level: debug\n  components: [graph, fx]\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Device.SampleRate != 44100 {
		t.Fatalf("expected overlay to change sample rate, got %d", cfg.Device.SampleRate)
	}
	// Fields the document didn't mention keep their Default() value.
	if cfg.Device.ChannelCount != 2 {
		t.Fatalf("expected channel count to retain default, got %d", cfg.Device.ChannelCount)
	}
	if cfg.Logging.MinLevel != "debug" {
		t.Fatalf("expected min_level overlay, got %q", cfg.Logging.MinLevel)
	}
}

func TestLoadFrom_MissingFileIsAnError(t *testing.T) {
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing explicit path")
	}
}

func TestLoad_NoFileFoundReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with nothing on disk should not error: %v", err)
	}
	want := Default()
	if cfg.Device != want.Device || cfg.Scratch != want.Scratch || cfg.Logging.MinLevel != want.Logging.MinLevel {
		t.Fatalf("expected defaults when no config file is found, got %+v", cfg)
	}
}

func TestLoggingConfig_LogLevel(t *testing.T) {
	cases := map[string]debug.LogLevel{
		"none":    debug.LogLevelNone,
		"error":   debug.LogLevelError,
		"warning": debug.LogLevelWarning,
		"warn":    debug.LogLevelWarning,
		"":        debug.LogLevelInfo,
		"bogus":   debug.LogLevelInfo,
		"debug":   debug.LogLevelDebug,
		"trace":   debug.LogLevelTrace,
	}
	for input, want := range cases {
		got := LoggingConfig{MinLevel: input}.LogLevel()
		if got != want {
			t.Errorf("LogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestLoggingConfig_ApplyTo(t *testing.T) {
	logger := debug.NewLogger(nil, 100)
	cfg := LoggingConfig{MinLevel: "trace", Components: []string{"graph", "fx"}}
	cfg.ApplyTo(logger)

	if logger.MinLevel() != debug.LogLevelTrace {
		t.Fatalf("expected min level to be applied")
	}
	if !logger.IsComponentEnabled(debug.ComponentGraph) || !logger.IsComponentEnabled(debug.ComponentFX) {
		t.Fatalf("expected named components to be enabled")
	}
	if logger.IsComponentEnabled(debug.ComponentBackend) {
		t.Fatalf("expected unnamed components to stay disabled")
	}
}
