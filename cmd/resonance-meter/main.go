// Command resonance-meter plays one audio file through a device and
// shows a live per-channel peak meter in a small Fyne window, as a
// manual check that a device's DSP callback sees exactly what the
// speakers would have received.
package main

import (
	"fmt"
	"math"
	"os"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/pflag"

	"github.com/rcdx/resonance/internal/builder"
	"github.com/rcdx/resonance/internal/config"
	"github.com/rcdx/resonance/internal/debug"
	"github.com/rcdx/resonance/internal/graph"
)

// levelMeter tracks the most recent peak sample per channel. observe runs
// on the audio callback thread, so each channel's peak is a plain atomic
// rather than anything that could block; peakFor is read from the UI's
// polling goroutine.
type levelMeter struct {
	peaks []atomic.Uint32 // math.Float32bits-encoded peak magnitude
}

func newLevelMeter(channels int) *levelMeter {
	return &levelMeter{peaks: make([]atomic.Uint32, channels)}
}

func (m *levelMeter) observe(buffer []float32, frameCount uint64) {
	channels := len(m.peaks)
	if channels == 0 {
		return
	}
	peak := make([]float32, channels)
	for i, v := range buffer {
		c := i % channels
		if v < 0 {
			v = -v
		}
		if v > peak[c] {
			peak[c] = v
		}
	}
	for c := range peak {
		m.peaks[c].Store(math.Float32bits(peak[c]))
	}
}

func (m *levelMeter) peakFor(channel int) float32 {
	return math.Float32frombits(m.peaks[channel].Load())
}

func main() {
	filePath := pflag.StringP("file", "f", "", "Path to an audio file to monitor while it plays")
	loop := pflag.BoolP("loop", "l", true, "Loop playback")
	nullOutput := pflag.Bool("null-output", false, "Use the in-process null backend instead of opening a real device")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: resonance-meter -f <path-to-audio-file>\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *filePath == "" {
		pflag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "resonance-meter: %v\n", err)
		os.Exit(1)
	}

	logger := debug.NewLogger(os.Stderr, 1000)
	cfg.Logging.ApplyTo(logger)
	graph.SetLogger(logger)

	device, err := builder.NewDevice().
		Channels(cfg.Device.ChannelCount).
		SampleRate(cfg.Device.SampleRate).
		MaxPeriod(cfg.Scratch.MaxPeriodFrames).
		UseNullOutput(*nullOutput).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "resonance-meter: opening device: %v\n", err)
		os.Exit(1)
	}

	meter := newLevelMeter(int(cfg.Device.ChannelCount))
	device.SetDSPCallback(meter.observe)

	channel, err := builder.NewChannel().File(*filePath).AttachTo(device, nil, nil).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "resonance-meter: loading %s: %v\n", *filePath, err)
		os.Exit(1)
	}
	channel.SetLooping(*loop)

	if err := device.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "resonance-meter: starting device: %v\n", err)
		os.Exit(1)
	}
	defer device.Stop()

	if err := channel.Play(); err != nil {
		fmt.Fprintf(os.Stderr, "resonance-meter: starting playback: %v\n", err)
		os.Exit(1)
	}

	a := app.New()
	w := a.NewWindow("resonance-meter")

	channelCount := int(cfg.Device.ChannelCount)
	bars := make([]*widget.ProgressBar, channelCount)
	rows := make([]fyne.CanvasObject, 0, channelCount)
	for i := range bars {
		bars[i] = widget.NewProgressBar()
		rows = append(rows, container.NewBorder(nil, nil, widget.NewLabel(fmt.Sprintf("ch %d", i)), nil, bars[i]))
	}
	w.SetContent(container.NewVBox(rows...))
	w.Resize(fyne.NewSize(320, float32(40*channelCount)))

	ticker := time.NewTicker(33 * time.Millisecond)
	go func() {
		for range ticker.C {
			levels := make([]float64, channelCount)
			for i := range levels {
				levels[i] = float64(meter.peakFor(i))
			}
			fyne.Do(func() {
				for i, bar := range bars {
					bar.SetValue(levels[i])
				}
			})
			if !channel.IsPlaying() {
				ticker.Stop()
			}
		}
	}()

	w.ShowAndRun()
}
