package graph

import (
	"fmt"

	"github.com/rcdx/resonance/internal/audioio"
)

// Sample is an immutable decoded PCM buffer plus the default per-channel
// attributes new channels manufactured from it should start with. Loading
// once and manufacturing many channels avoids re-decoding a file every
// time the same sound effect plays concurrently.
type Sample struct {
	data       []float32
	pcmLength  uint64
	sampleRate uint32
	channels   uint32

	defaultVolume  float32
	defaultPan     float32
	defaultLooping bool
}

// LoadSample decodes filePath once into an immutable Sample.
func LoadSample(filePath string) (*Sample, error) {
	reader, err := audioio.Load(filePath)
	if err != nil {
		return nil, err
	}
	return newSampleFromReader(reader)
}

// LoadSampleFromBuffer decodes an in-memory file buffer once into an
// immutable Sample.
func LoadSampleFromBuffer(buf []byte) (*Sample, error) {
	reader, err := audioio.LoadFileBuffer(buf)
	if err != nil {
		return nil, err
	}
	return newSampleFromReader(reader)
}

func newSampleFromReader(reader audioio.Reader) (*Sample, error) {
	pcmLength := reader.PCMLength()
	channels := reader.Channels()

	data := make([]float32, pcmLength*uint64(channels))
	n, err := reader.Read(data, pcmLength)
	if err != nil {
		return nil, &ErrChannelReadError{Err: err}
	}

	return &Sample{
		data:          data[:n*uint64(channels)],
		pcmLength:     n,
		sampleRate:    reader.SampleRate(),
		channels:      channels,
		defaultVolume: 1,
		defaultPan:    0,
	}, nil
}

// LoadSampleFromRawBuffer wraps an already-decoded PCM buffer as a Sample,
// for callers that produce audio themselves (procedural tones, a network
// stream already decoded upstream) rather than going through
// internal/audioio.
func LoadSampleFromRawBuffer(data []float32, pcmLength uint64, sampleRate uint32, channels uint32) (*Sample, error) {
	if channels == 0 {
		return nil, &ErrInvalidChannelCount{Channels: channels}
	}
	needed := pcmLength * uint64(channels)
	if uint64(len(data)) < needed {
		return nil, &ErrChannelReadError{Err: fmt.Errorf("buffer has %d frames, need %d", uint64(len(data))/uint64(channels), pcmLength)}
	}
	return &Sample{
		data:          data[:needed],
		pcmLength:     pcmLength,
		sampleRate:    sampleRate,
		channels:      channels,
		defaultVolume: 1,
		defaultPan:    0,
	}, nil
}

// SetDefaultVolume/SetDefaultPan/SetDefaultLooping configure the
// attributes every channel manufactured by NewChannel/GetChannels starts
// with. They do not retroactively affect channels already manufactured.
func (s *Sample) SetDefaultVolume(volume float32) { s.defaultVolume = clamp(volume, 0, 1) }
func (s *Sample) SetDefaultPan(pan float32)        { s.defaultPan = clamp(pan, -1, 1) }
func (s *Sample) SetDefaultLooping(looping bool)   { s.defaultLooping = looping }

func (s *Sample) SampleRate() uint32 { return s.sampleRate }
func (s *Sample) Channels() uint32   { return s.channels }
func (s *Sample) PCMLength() uint64  { return s.pcmLength }

// NewChannel manufactures one Channel sharing this Sample's decoded
// buffer, pre-configured with the Sample's default attributes.
func (s *Sample) NewChannel() (*Channel, error) {
	c, err := NewChannelFromRawBuffer(s.data, s.pcmLength, s.sampleRate, s.channels)
	if err != nil {
		return nil, err
	}
	s.applyDefaults(c)
	return c, nil
}

// GetChannels manufactures n independent channels sharing this Sample's
// decoded buffer, each pre-configured with the Sample's default
// attributes. Useful for playing the same one-shot sound polyphonically.
func (s *Sample) GetChannels(n int) ([]*Channel, error) {
	channels := make([]*Channel, 0, n)
	for i := 0; i < n; i++ {
		c, err := s.NewChannel()
		if err != nil {
			return nil, err
		}
		channels = append(channels, c)
	}
	return channels, nil
}

func (s *Sample) applyDefaults(c *Channel) {
	_ = c.SetAttributeF32(AttributeVolume, s.defaultVolume)
	_ = c.SetAttributeF32(AttributePan, s.defaultPan)
	c.SetLooping(s.defaultLooping)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
