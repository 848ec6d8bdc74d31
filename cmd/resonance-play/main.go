// Command resonance-play is a minimal CLI that plays one audio file as a
// single channel attached directly to a device whose format comes from the
// config, for manual smoke-testing of the engine outside a host application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/rcdx/resonance/internal/builder"
	"github.com/rcdx/resonance/internal/config"
	"github.com/rcdx/resonance/internal/debug"
	"github.com/rcdx/resonance/internal/graph"
)

func main() {
	var (
		filePath    = pflag.StringP("file", "f", "", "Path to an audio file to play")
		loop        = pflag.BoolP("loop", "l", false, "Loop playback until interrupted")
		volume      = pflag.Float32P("volume", "v", 1.0, "Playback volume, 0.0 to 1.0")
		pan         = pflag.Float32P("pan", "p", 0.0, "Stereo pan, -1.0 (left) to 1.0 (right)")
		enableFX    = pflag.Bool("fx", false, "Enable time stretch / pitch shift")
		tempo       = pflag.Float32("tempo", 1.0, "Playback tempo when -fx is set")
		pitch       = pflag.Float32("pitch", 1.0, "Playback pitch when -fx is set")
		configPath  = pflag.StringP("config", "c", "", "Path to a resonance.yaml config file (optional)")
		nullOutput  = pflag.Bool("null-output", false, "Use the in-process null backend instead of opening a real device")
		logLevel    = pflag.String("log-level", "", "Override the configured minimum log level (none/error/warning/info/debug/trace)")
		logComponents = pflag.StringSlice("log-components", nil, "Additional components to enable logging for (graph,fx,audioio,backend,builder,capi)")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: resonance-play -f <path-to-audio-file> [options]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *filePath == "" {
		pflag.Usage()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resonance-play: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Logging.MinLevel = *logLevel
	}
	cfg.Logging.Components = append(cfg.Logging.Components, *logComponents...)

	logger := debug.NewLogger(os.Stderr, 1000)
	cfg.Logging.ApplyTo(logger)
	graph.SetLogger(logger)

	device, err := builder.NewDevice().
		Channels(cfg.Device.ChannelCount).
		SampleRate(cfg.Device.SampleRate).
		MaxPeriod(cfg.Scratch.MaxPeriodFrames).
		UseNullOutput(*nullOutput).
		EnableFX(*enableFX).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "resonance-play: opening device: %v\n", err)
		os.Exit(1)
	}

	channel, err := builder.NewChannel().
		File(*filePath).
		EnableFX(*enableFX).
		AttachTo(device, nil, nil).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "resonance-play: loading %s: %v\n", *filePath, err)
		os.Exit(1)
	}

	if err := channel.SetAttributeF32(graph.AttributeVolume, *volume); err != nil {
		fmt.Fprintf(os.Stderr, "resonance-play: setting volume: %v\n", err)
	}
	if err := channel.SetAttributeF32(graph.AttributePan, *pan); err != nil {
		fmt.Fprintf(os.Stderr, "resonance-play: setting pan: %v\n", err)
	}
	if *enableFX {
		if err := channel.SetAttributeF32(graph.AttributeFXTempo, *tempo); err != nil {
			fmt.Fprintf(os.Stderr, "resonance-play: setting tempo: %v\n", err)
		}
		if err := channel.SetAttributeF32(graph.AttributeFXPitch, *pitch); err != nil {
			fmt.Fprintf(os.Stderr, "resonance-play: setting pitch: %v\n", err)
		}
	}

	channel.SetLooping(*loop)

	if err := device.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "resonance-play: starting device: %v\n", err)
		os.Exit(1)
	}
	defer device.Stop()

	if err := channel.Play(); err != nil {
		fmt.Fprintf(os.Stderr, "resonance-play: starting playback: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Playing %s (%dHz, %d ch) — Ctrl+C to stop\n", *filePath, cfg.Device.SampleRate, cfg.Device.ChannelCount)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sig:
			fmt.Println("\ninterrupted")
			return
		case <-ticker.C:
			if !channel.IsPlaying() {
				fmt.Println("done")
				return
			}
		}
	}
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}
