package builder

import (
	"testing"

	"github.com/rcdx/resonance/internal/graph"
)

func constantBuffer(frames int, channels uint32, value float32) []float32 {
	buf := make([]float32, frames*int(channels))
	for i := range buf {
		buf[i] = value
	}
	return buf
}

func TestChannelBuilder_NoSourceRejected(t *testing.T) {
	if _, err := NewChannel().Build(); err != ErrNoChannelSource {
		t.Fatalf("expected ErrNoChannelSource, got %v", err)
	}
}

func TestChannelBuilder_AudioBufferAttachesToDevice(t *testing.T) {
	device, err := NewDevice().Channels(2).SampleRate(44100).UseNullOutput(true).Build()
	if err != nil {
		t.Fatalf("NewDevice build: %v", err)
	}

	desc := BufferDesc{Data: constantBuffer(100, 2, 0.5), PCMLength: 100, SampleRate: 44100, Channels: 2}
	channel, err := NewChannel().AudioBuffer(desc).AttachTo(device, nil, nil).Build()
	if err != nil {
		t.Fatalf("channel build: %v", err)
	}
	if channel.PCMLength() != 100 {
		t.Fatalf("expected pcm length 100, got %d", channel.PCMLength())
	}

	// A second attach of the same channel must be rejected.
	if err := device.AddChannel(channel, nil, nil); err == nil {
		t.Fatalf("expected duplicate attach to fail")
	}
}

func TestChannelBuilder_EnableFXAndSpatialization(t *testing.T) {
	desc := BufferDesc{Data: constantBuffer(10, 1, 0), PCMLength: 10, SampleRate: 44100, Channels: 1}
	channel, err := NewChannel().AudioBuffer(desc).EnableFX(true).EnableSpatialization(true).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	enabled, err := channel.GetAttributeBool(graph.AttributeAudioFX)
	if err != nil {
		t.Fatalf("get AudioFX: %v", err)
	}
	if !enabled {
		t.Fatalf("expected AudioFX enabled")
	}

	enabled, err = channel.GetAttributeBool(graph.AttributeAudioSpatialization)
	if err != nil {
		t.Fatalf("get AudioSpatialization: %v", err)
	}
	if !enabled {
		t.Fatalf("expected AudioSpatialization enabled")
	}
}

func TestMixerBuilder_AttachesToDevice(t *testing.T) {
	device, err := NewDevice().UseNullOutput(true).Build()
	if err != nil {
		t.Fatalf("device build: %v", err)
	}

	mixer, err := NewMixer().Channels(2).SampleRate(44100).AttachTo(device, nil, nil).Build()
	if err != nil {
		t.Fatalf("mixer build: %v", err)
	}
	if mixer.RefID() == 0 {
		t.Fatalf("expected a non-zero ref id")
	}
}

func TestSampleBuilder_ManufacturesIndependentChannels(t *testing.T) {
	desc := BufferDesc{Data: constantBuffer(50, 2, 0.25), PCMLength: 50, SampleRate: 44100, Channels: 2}
	sample, err := NewSample().AudioBuffer(desc).DefaultLooping(true).DefaultVolume(0.5).Build()
	if err != nil {
		t.Fatalf("sample build: %v", err)
	}

	channels, err := sample.GetChannels(3)
	if err != nil {
		t.Fatalf("get channels: %v", err)
	}
	if len(channels) != 3 {
		t.Fatalf("expected 3 channels, got %d", len(channels))
	}
	for _, c := range channels {
		if !c.IsLooping() {
			t.Fatalf("expected manufactured channel to inherit looping default")
		}
	}
	// Independent playhead state: advancing one must not affect another.
	if _, err := channels[0].Seek(10); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if channels[1].Position() != 0 {
		t.Fatalf("expected channel 1 to be unaffected by channel 0's seek, got position %d", channels[1].Position())
	}
}

func TestSampleBuilder_NoSourceRejected(t *testing.T) {
	if _, err := NewSample().Build(); err != ErrNoSampleSource {
		t.Fatalf("expected ErrNoSampleSource, got %v", err)
	}
}
