package builder

import (
	"errors"

	"github.com/rcdx/resonance/internal/graph"
)

// ErrNoSampleSource is returned by SampleBuilder.Build when none of File,
// FileBuffer, or AudioBuffer was called.
var ErrNoSampleSource = errors.New("builder: no file, buffer, or audio buffer provided for sample")

// SampleBuilder builds one graph.Sample: a decoded, in-memory PCM asset
// that NewChannel/GetChannels can stamp into any number of independent
// playable channels without re-decoding.
type SampleBuilder struct {
	filePath   string
	fileBuffer []byte
	bufferDesc *BufferDesc

	defaultVolume  *float32
	defaultPan     *float32
	defaultLooping *bool
}

// NewSample starts a SampleBuilder with no source and the sample's own
// built-in defaults (full volume, centered, non-looping).
func NewSample() *SampleBuilder {
	return &SampleBuilder{}
}

// File selects a sample decoded from the file at path.
func (b *SampleBuilder) File(path string) *SampleBuilder {
	b.filePath = path
	b.fileBuffer = nil
	b.bufferDesc = nil
	return b
}

// FileBuffer selects a sample decoded from an in-memory encoded file.
func (b *SampleBuilder) FileBuffer(buf []byte) *SampleBuilder {
	b.fileBuffer = buf
	b.filePath = ""
	b.bufferDesc = nil
	return b
}

// AudioBuffer selects a sample built directly from already-decoded PCM.
func (b *SampleBuilder) AudioBuffer(desc BufferDesc) *SampleBuilder {
	b.bufferDesc = &desc
	b.filePath = ""
	b.fileBuffer = nil
	return b
}

// DefaultVolume sets the volume every channel manufactured from this
// sample will start with.
func (b *SampleBuilder) DefaultVolume(v float32) *SampleBuilder {
	b.defaultVolume = &v
	return b
}

// DefaultPan sets the pan every channel manufactured from this sample
// will start with.
func (b *SampleBuilder) DefaultPan(v float32) *SampleBuilder {
	b.defaultPan = &v
	return b
}

// DefaultLooping sets whether every channel manufactured from this
// sample starts in looping mode.
func (b *SampleBuilder) DefaultLooping(v bool) *SampleBuilder {
	b.defaultLooping = &v
	return b
}

// Build decodes/constructs the sample and applies its configured
// defaults.
func (b *SampleBuilder) Build() (*graph.Sample, error) {
	var sample *graph.Sample
	var err error

	switch {
	case b.filePath != "":
		sample, err = graph.LoadSample(b.filePath)
	case b.fileBuffer != nil:
		sample, err = graph.LoadSampleFromBuffer(b.fileBuffer)
	case b.bufferDesc != nil:
		sample, err = graph.LoadSampleFromRawBuffer(b.bufferDesc.Data, b.bufferDesc.PCMLength, b.bufferDesc.SampleRate, b.bufferDesc.Channels)
	default:
		return nil, ErrNoSampleSource
	}
	if err != nil {
		return nil, err
	}

	if b.defaultVolume != nil {
		sample.SetDefaultVolume(*b.defaultVolume)
	}
	if b.defaultPan != nil {
		sample.SetDefaultPan(*b.defaultPan)
	}
	if b.defaultLooping != nil {
		sample.SetDefaultLooping(*b.defaultLooping)
	}

	return sample, nil
}
