package builder

import (
	"errors"

	"github.com/rcdx/resonance/internal/graph"
)

// ErrNoChannelSource is returned by ChannelBuilder.Build when none of
// File, FileBuffer, or AudioBuffer was called.
var ErrNoChannelSource = errors.New("builder: no file, buffer, or audio buffer provided for channel")

// channelParent is satisfied by both *graph.Device and *graph.Mixer.
type channelParent interface {
	AddChannel(c *graph.Channel, delay, duration *uint64) error
}

// ChannelBuilder builds one graph.Channel, optionally attaching it to a
// device or mixer as the final step of Build.
type ChannelBuilder struct {
	filePath   string
	fileBuffer []byte
	bufferDesc *BufferDesc

	enableFX             bool
	enableSpatialization bool

	parent          channelParent
	delay, duration *uint64
}

// NewChannel starts a ChannelBuilder with no source and both FX and
// spatialization disabled.
func NewChannel() *ChannelBuilder {
	return &ChannelBuilder{}
}

// File selects a channel decoded from the file at path, clearing any
// previously selected source.
func (b *ChannelBuilder) File(path string) *ChannelBuilder {
	b.filePath = path
	b.fileBuffer = nil
	b.bufferDesc = nil
	return b
}

// FileBuffer selects a channel decoded from an in-memory encoded file.
func (b *ChannelBuilder) FileBuffer(buf []byte) *ChannelBuilder {
	b.fileBuffer = buf
	b.filePath = ""
	b.bufferDesc = nil
	return b
}

// AudioBuffer selects a channel built directly from already-decoded PCM.
func (b *ChannelBuilder) AudioBuffer(desc BufferDesc) *ChannelBuilder {
	b.bufferDesc = &desc
	b.filePath = ""
	b.fileBuffer = nil
	return b
}

// EnableFX toggles AudioFX (time stretch / pitch shift) on the built
// channel.
func (b *ChannelBuilder) EnableFX(enable bool) *ChannelBuilder {
	b.enableFX = enable
	return b
}

// EnableSpatialization toggles AudioSpatialization on the built channel.
func (b *ChannelBuilder) EnableSpatialization(enable bool) *ChannelBuilder {
	b.enableSpatialization = enable
	return b
}

// AttachTo schedules the built channel to be added to parent once Build
// succeeds. parent is typically a *graph.Device or *graph.Mixer; a Mixer
// plays the child within the optional [delay, delay+duration) window,
// while a Device stores the window but pulls the child every period.
func (b *ChannelBuilder) AttachTo(parent channelParent, delay, duration *uint64) *ChannelBuilder {
	b.parent = parent
	b.delay = delay
	b.duration = duration
	return b
}

// Build decodes/constructs the channel, applies its attributes, and — if
// AttachTo was called — attaches it to its parent. The channel is
// returned even when attachment fails so the caller can retry elsewhere.
func (b *ChannelBuilder) Build() (*graph.Channel, error) {
	var channel *graph.Channel
	var err error

	switch {
	case b.filePath != "":
		channel, err = graph.NewChannelFromFile(b.filePath)
	case b.fileBuffer != nil:
		channel, err = graph.NewChannelFromFileBuffer(b.fileBuffer)
	case b.bufferDesc != nil:
		channel, err = graph.NewChannelFromRawBuffer(b.bufferDesc.Data, b.bufferDesc.PCMLength, b.bufferDesc.SampleRate, b.bufferDesc.Channels)
	default:
		return nil, ErrNoChannelSource
	}
	if err != nil {
		return nil, err
	}

	if err := channel.SetAttributeBool(graph.AttributeAudioSpatialization, b.enableSpatialization); err != nil {
		return nil, err
	}
	if err := channel.SetAttributeBool(graph.AttributeAudioFX, b.enableFX); err != nil {
		return nil, err
	}

	if b.parent != nil {
		if err := b.parent.AddChannel(channel, b.delay, b.duration); err != nil {
			return channel, err
		}
	}

	return channel, nil
}
