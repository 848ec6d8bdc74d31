package builder

import (
	"github.com/rcdx/resonance/internal/backend"
	"github.com/rcdx/resonance/internal/graph"
)

// DeviceBuilder builds one graph.Device, choosing between a real SDL2
// playback backend and an in-process NullOutput depending on
// UseNullOutput. Hardware selection beyond the backend's default output
// device is not yet exposed here: SDLOutput always opens SDL2's default
// device, the same constraint backend.NewSDLOutput carries.
type DeviceBuilder struct {
	channels   uint32
	sampleRate uint32
	maxPeriod  uint64

	useNullOutput bool

	enableFX             bool
	enableSpatialization bool
}

// NewDevice starts a DeviceBuilder defaulted to stereo at 44.1kHz with a
// 4096-frame scratch bound, real SDL2 output, and FX/spatialization off.
func NewDevice() *DeviceBuilder {
	return &DeviceBuilder{channels: 2, sampleRate: 44100, maxPeriod: 4096}
}

// Channels sets the device's channel count.
func (b *DeviceBuilder) Channels(n uint32) *DeviceBuilder {
	b.channels = n
	return b
}

// SampleRate sets the device's sample rate.
func (b *DeviceBuilder) SampleRate(rate uint32) *DeviceBuilder {
	b.sampleRate = rate
	return b
}

// MaxPeriod bounds the largest frame count the backend will ever request
// in one callback, sizing the device's pre-allocated scratch buffers.
func (b *DeviceBuilder) MaxPeriod(frames uint64) *DeviceBuilder {
	b.maxPeriod = frames
	return b
}

// UseNullOutput selects the in-process NullOutput backend instead of
// opening a real SDL2 device, for tests and headless tools.
func (b *DeviceBuilder) UseNullOutput(enable bool) *DeviceBuilder {
	b.useNullOutput = enable
	return b
}

// EnableFX toggles AudioFX on the built device.
func (b *DeviceBuilder) EnableFX(enable bool) *DeviceBuilder {
	b.enableFX = enable
	return b
}

// EnableSpatialization toggles AudioSpatialization on the built device.
func (b *DeviceBuilder) EnableSpatialization(enable bool) *DeviceBuilder {
	b.enableSpatialization = enable
	return b
}

// Build opens the selected backend and constructs the device.
func (b *DeviceBuilder) Build() (*graph.Device, error) {
	var out backend.OutputDriver
	var err error

	if b.useNullOutput {
		out = backend.NewNullOutput(b.channels, b.sampleRate, b.maxPeriod)
	} else {
		out, err = backend.NewSDLOutput(b.channels, b.sampleRate, b.maxPeriod)
		if err != nil {
			return nil, err
		}
	}

	device, err := graph.NewDevice(out, b.channels, b.sampleRate, b.maxPeriod)
	if err != nil {
		return nil, err
	}

	if err := device.SetAttributeBool(graph.AttributeAudioSpatialization, b.enableSpatialization); err != nil {
		return nil, err
	}
	if err := device.SetAttributeBool(graph.AttributeAudioFX, b.enableFX); err != nil {
		return nil, err
	}

	return device, nil
}
