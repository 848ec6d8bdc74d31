package builder

import "github.com/rcdx/resonance/internal/graph"

// mixerParent is satisfied by both *graph.Device and *graph.Mixer.
type mixerParent interface {
	AddMixer(m *graph.Mixer, delay, duration *uint64) error
}

// MixerBuilder builds one graph.Mixer, optionally attaching it to a
// device or a parent mixer as the final step of Build.
type MixerBuilder struct {
	channels   uint32
	sampleRate uint32

	parent          mixerParent
	delay, duration *uint64
}

// NewMixer starts a MixerBuilder defaulted to stereo at 44.1kHz if never
// overridden; graph.NewMixer itself takes both values explicitly.
func NewMixer() *MixerBuilder {
	return &MixerBuilder{channels: 2, sampleRate: 44100}
}

// Channels sets the mixer's channel count.
func (b *MixerBuilder) Channels(n uint32) *MixerBuilder {
	b.channels = n
	return b
}

// SampleRate sets the mixer's sample rate.
func (b *MixerBuilder) SampleRate(rate uint32) *MixerBuilder {
	b.sampleRate = rate
	return b
}

// AttachTo schedules the built mixer to be added to parent once Build
// succeeds. A parent Mixer plays it within the optional
// [delay, delay+duration) window; a parent Device stores the window but
// pulls the mixer every period.
func (b *MixerBuilder) AttachTo(parent mixerParent, delay, duration *uint64) *MixerBuilder {
	b.parent = parent
	b.delay = delay
	b.duration = duration
	return b
}

// Build constructs the mixer and, if AttachTo was called, attaches it to
// its parent. The mixer is returned even when attachment fails.
func (b *MixerBuilder) Build() (*graph.Mixer, error) {
	mixer, err := graph.NewMixer(b.channels, b.sampleRate)
	if err != nil {
		return nil, err
	}

	if b.parent != nil {
		if err := b.parent.AddMixer(mixer, b.delay, b.duration); err != nil {
			return mixer, err
		}
	}

	return mixer, nil
}
