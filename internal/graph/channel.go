package graph

import (
	"sync"
	"sync/atomic"

	"github.com/rcdx/resonance/internal/audioio"
	"github.com/rcdx/resonance/internal/fx"
)

// DSPCallback is invoked with a node's freshly produced output buffer and
// the number of frames it holds, for user-attached metering/analysis.
type DSPCallback func(output []float32, frameCount uint64)

// Channel wraps one AudioReader plus a per-node effect chain (resampler,
// volume, panner, optional stretcher, optional spatializer) and publishes
// its transport state as lock-free atomics so the audio callback and
// control threads can both observe/mutate it without contending on mu for
// those fields.
type Channel struct {
	refID uint64

	mu              sync.Mutex
	reader          audioio.Reader
	gainer          *fx.Volume
	panner          *fx.Panner
	resampler       *fx.Resampler
	stretcher       *fx.Stretcher // nil unless AudioFX is enabled
	spatializer     *fx.Spatializer
	dspCallback     DSPCallback
	markedAsDeleted bool
	start, end      *uint64

	playing   atomic.Bool
	looping   atomic.Bool
	position  atomic.Uint64

	pcmLength  uint64
	sampleRate uint32
	channels   uint32
}

func newChannel(reader audioio.Reader) (*Channel, error) {
	channels := reader.Channels()
	sampleRate := reader.SampleRate()

	gainer, err := fx.NewVolume(channels)
	if err != nil {
		return nil, err
	}
	panner, err := fx.NewPanner(channels)
	if err != nil {
		return nil, err
	}
	resampler, err := fx.NewResampler(channels, sampleRate)
	if err != nil {
		return nil, err
	}
	spatializer, err := fx.NewSpatializer(channels, sampleRate)
	if err != nil {
		return nil, err
	}

	return &Channel{
		refID:       nextChannelRefID(),
		reader:      reader,
		gainer:      gainer,
		panner:      panner,
		resampler:   resampler,
		spatializer: spatializer,
		pcmLength:   reader.PCMLength(),
		sampleRate:  sampleRate,
		channels:    channels,
	}, nil
}

// NewChannelFromFile loads filePath and constructs a Channel over it.
func NewChannelFromFile(filePath string) (*Channel, error) {
	reader, err := audioio.Load(filePath)
	if err != nil {
		return nil, err
	}
	return newChannel(reader)
}

// NewChannelFromFileBuffer decodes an in-memory file buffer and
// constructs a Channel over it.
func NewChannelFromFileBuffer(buf []byte) (*Channel, error) {
	reader, err := audioio.LoadFileBuffer(buf)
	if err != nil {
		return nil, err
	}
	return newChannel(reader)
}

// NewChannelFromRawBuffer wraps an already-decoded interleaved f32 buffer.
func NewChannelFromRawBuffer(data []float32, pcmLength uint64, sampleRate uint32, channels uint32) (*Channel, error) {
	reader, err := audioio.LoadAudioBuffer(data, sampleRate, channels, pcmLength)
	if err != nil {
		return nil, err
	}
	return newChannel(reader)
}

// RefID returns the channel's process-wide unique identifier.
func (c *Channel) RefID() uint64 { return c.refID }

// SetDSPCallback installs or clears a user analysis callback.
func (c *Channel) SetDSPCallback(cb DSPCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dspCallback = cb
}

// Play starts playback. If position is 0 (never played), it seeks to 0
// first to pre-warm any enabled FX.
func (c *Channel) Play() error {
	return WithLock(&c.mu, func() error {
		c.playing.Store(true)
		if c.position.Load() == 0 {
			return c.seekLocked(0)
		}
		return nil
	})
}

// Stop halts playback; position is retained.
func (c *Channel) Stop() { c.playing.Store(false) }

// IsPlaying reports the current transport state.
func (c *Channel) IsPlaying() bool { return c.playing.Load() }

// SetPlaying is the polymorphic Pullable hook mixers use to propagate
// play/stop recursively.
func (c *Channel) SetPlaying(playing bool) {
	if playing {
		_ = c.Play()
	} else {
		c.Stop()
	}
}

// SetLooping toggles whether end-of-stream restarts from frame 0.
func (c *Channel) SetLooping(looping bool) { c.looping.Store(looping) }

// IsLooping reports the current loop flag.
func (c *Channel) IsLooping() bool { return c.looping.Load() }

// Position returns the current playback position in frames.
func (c *Channel) Position() uint64 { return c.position.Load() }

// PCMLength returns the reader's total frame count.
func (c *Channel) PCMLength() uint64 { return c.pcmLength }

// NaturalLength implements Pullable: for a channel this is pcm_length.
func (c *Channel) NaturalLength() uint64 { return c.pcmLength }

// MarkedAsDeleted reports whether the owning handle has been dropped.
func (c *Channel) MarkedAsDeleted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.markedAsDeleted
}

// MarkDeleted transitions marked_deleted false->true and stops playback.
// This is the one-way lifecycle transition spec.md's invariants require.
func (c *Channel) MarkDeleted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markedAsDeleted = true
	c.playing.Store(false)
}

// SetStart/SetEnd store optional trim bounds (frame indices). Reading,
// seeking and looping do not consult them: playback covers the whole
// reader regardless of the stored bounds.
func (c *Channel) SetStart(start *uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = start
}

func (c *Channel) SetEnd(end *uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.end = end
}

// Seek validates position < pcm_length, repositions the reader, and if FX
// is enabled with nonzero input_latency, pre-warms the stretcher.
func (c *Channel) Seek(position uint64) (uint64, error) {
	return position, WithLock(&c.mu, func() error { return c.seekLocked(position) })
}

func (c *Channel) seekLocked(position uint64) error {
	if position >= c.pcmLength {
		return &ErrSeekOutOfBounds{Position: position, PCMLength: c.pcmLength}
	}

	c.position.Store(position)
	if err := c.reader.Seek(position); err != nil {
		return &ErrChannelReadError{Err: err}
	}

	if c.stretcher != nil {
		latency := c.stretcher.GetInputLatency()
		if latency > 0 {
			warmup := make([]float32, latency*uint64(c.channels))
			if _, err := c.reader.Read(warmup, latency); err != nil {
				return &ErrChannelReadError{Err: err}
			}
			if _, err := c.stretcher.PreProcess(warmup, latency); err != nil {
				return err
			}
		}
	}

	return nil
}

// SeekMs converts a millisecond position to frames and seeks to it.
func (c *Channel) SeekMs(ms uint64) (uint64, error) {
	frames := (ms * uint64(c.sampleRate)) / 1000
	return c.Seek(frames)
}

const readSimpleMaxFrames = 4096

// ReadSimple is the non-realtime convenience form of ReadPCMFrames: it
// allocates its own buffers and is bounded to readSimpleMaxFrames frames.
func (c *Channel) ReadSimple(frameCount uint64) ([]float32, error) {
	if frameCount > readSimpleMaxFrames {
		return nil, &ErrPCMLengthTooLarge{Requested: frameCount, Max: readSimpleMaxFrames}
	}

	data := make([]float32, 8192*c.channels)
	temp := make([]float32, 8192*c.channels)

	c.mu.Lock()
	framesRead, err := c.readPCMFramesLocked(nil, data, temp, frameCount)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if framesRead == 0 {
		return []float32{}, nil
	}

	n := framesRead * uint64(c.channels)
	out := make([]float32, n)
	copy(out, data[:n])
	return out, nil
}

// ReadPCMFrames implements the channel pull algorithm (spec.md §4.2):
// read -> FX pre-roll -> resample -> gain -> pan -> spatialize.
func (c *Channel) ReadPCMFrames(listener *fx.SpatializationListener, output, temp []float32, frameCount uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readPCMFramesLocked(listener, output, temp, frameCount)
}

// TryLockPull is the non-blocking variant a parent mixer/device uses from
// the audio callback; it skips the channel this period if contended.
func (c *Channel) TryLockPull(listener *fx.SpatializationListener, output, temp []float32, frameCount uint64) (uint64, error) {
	if !c.mu.TryLock() {
		return 0, ErrSkippedThisPeriod
	}
	defer c.mu.Unlock()
	return recoverPull(func() (uint64, error) {
		return c.readPCMFramesLocked(listener, output, temp, frameCount)
	})
}

func (c *Channel) readPCMFramesLocked(listener *fx.SpatializationListener, output, temp []float32, frameCount uint64) (uint64, error) {
	if !c.playing.Load() {
		return 0, nil
	}

	requiredInput, _ := c.resampler.RequiredInput(frameCount)

	var framesRead uint64

	if c.stretcher != nil {
		target := requiredInput
		readTarget := requiredInput
		if !c.stretcher.TempoBypass() {
			target, _ = c.stretcher.RequiredInput(target)
		}

		available := c.reader.AvailableFrames()
		if available > 0 {
			n, err := c.reader.Read(output, target)
			if err != nil {
				return 0, &ErrChannelReadError{Err: err}
			}
			target = n

			if target >= available {
				c.stretcher.FrameAvailable += int64(c.stretcher.GetOutputLatency())
			} else {
				c.stretcher.FrameAvailable += int64(readTarget)
			}
		}

		if c.stretcher.FrameAvailable > 0 {
			if _, err := c.stretcher.Process(output, target, temp, readTarget); err != nil {
				return 0, err
			}
			c.stretcher.FrameAvailable -= int64(readTarget)

			if c.stretcher.FrameAvailable < 0 {
				readTarget = uint64(int64(readTarget) + c.stretcher.FrameAvailable)
				c.stretcher.FrameAvailable = 0
			}
		} else {
			readTarget = 0
		}

		copy(output[:readTarget*uint64(c.channels)], temp[:readTarget*uint64(c.channels)])
		framesRead = readTarget
	} else {
		n, err := c.reader.Read(output, requiredInput)
		if err != nil {
			return 0, &ErrChannelReadError{Err: err}
		}
		framesRead = n
	}

	if !c.resampler.BypassMode() {
		n, err := c.resampler.Process(output, requiredInput, temp, frameCount)
		if err != nil {
			return 0, err
		}
		copy(output[:n*uint64(c.channels)], temp[:n*uint64(c.channels)])
		framesRead = n
	}

	if err := c.gainer.Process(output, temp, framesRead); err != nil {
		return 0, err
	}
	if err := c.panner.Process(temp, output, framesRead); err != nil {
		return 0, err
	}

	c.position.Add(framesRead)

	exhausted := c.reader.AvailableFrames() == 0 && (c.stretcher == nil || c.stretcher.FrameAvailable <= 0)
	if framesRead < frameCount || exhausted {
		if c.looping.Load() {
			if err := c.reader.Seek(0); err != nil {
				return 0, &ErrChannelReadError{Err: err}
			}
		} else {
			c.playing.Store(false)
		}
	}

	if c.dspCallback != nil {
		c.dspCallback(output, framesRead)
	}

	if c.spatializer != nil && listener != nil {
		if err := c.spatializer.Process(listener, output, temp, framesRead); err != nil {
			return 0, err
		}
		copy(output[:framesRead*uint64(c.channels)], temp[:framesRead*uint64(c.channels)])
	}

	return framesRead, nil
}

// GetAttributeF32 reads an f32-valued attribute.
func (c *Channel) GetAttributeF32(attr Attribute) (float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch attr {
	case AttributeFXTempo:
		if c.stretcher == nil {
			return 0, &ErrNotEnabled{Capability: "AudioFX"}
		}
		return c.stretcher.Tempo(), nil
	case AttributeFXPitch:
		if c.stretcher == nil {
			return 0, &ErrNotEnabled{Capability: "AudioFX"}
		}
		return c.stretcher.Octave(), nil
	case AttributeSampleRate:
		return float32(c.resampler.TargetSampleRate()), nil
	case AttributeVolume:
		return c.gainer.Gain(), nil
	case AttributePan:
		return c.panner.Pan(), nil
	default:
		return 0, &ErrUnsupportedAttribute{Attribute: attr, Reason: "not an f32 attribute"}
	}
}

// SetAttributeF32 writes an f32-valued attribute.
func (c *Channel) SetAttributeF32(attr Attribute, value float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch attr {
	case AttributeFXTempo:
		if c.stretcher == nil {
			return &ErrNotEnabled{Capability: "AudioFX"}
		}
		return c.stretcher.SetTempo(value)
	case AttributeFXPitch:
		if c.stretcher == nil {
			return &ErrNotEnabled{Capability: "AudioFX"}
		}
		return c.stretcher.SetOctave(value)
	case AttributeSampleRate:
		c.resampler.SetTargetSampleRate(uint32(value))
		return nil
	case AttributeVolume:
		c.gainer.SetVolume(value)
		return nil
	case AttributePan:
		c.panner.SetPan(value)
		return nil
	default:
		return &ErrUnsupportedAttribute{Attribute: attr, Reason: "not an f32 attribute"}
	}
}

// GetAttributeBool reads a bool-valued (capability) attribute.
func (c *Channel) GetAttributeBool(attr Attribute) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch attr {
	case AttributeAudioFX:
		return c.stretcher != nil, nil
	case AttributeAudioSpatialization:
		return c.spatializer != nil, nil
	default:
		return false, &ErrUnsupportedAttribute{Attribute: attr, Reason: "not a bool attribute"}
	}
}

// SetAttributeBool toggles a capability attribute. Enabling AudioFX
// constructs a stretcher and re-seeks to re-warm it; disabling drops it.
func (c *Channel) SetAttributeBool(attr Attribute, value bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch attr {
	case AttributeAudioFX:
		if value {
			if c.stretcher == nil {
				s, err := fx.NewStretcher(c.channels, c.sampleRate)
				if err != nil {
					return err
				}
				c.stretcher = s
			}
		} else {
			c.stretcher = nil
		}
		return c.seekLocked(c.position.Load())
	case AttributeAudioSpatialization:
		if value {
			if c.spatializer == nil {
				s, err := fx.NewSpatializer(c.channels, c.sampleRate)
				if err != nil {
					return err
				}
				c.spatializer = s
			}
		} else {
			c.spatializer = nil
		}
		return nil
	default:
		return &ErrUnsupportedAttribute{Attribute: attr, Reason: "not a bool attribute"}
	}
}

// Spatializer exposes the channel's spatializer for direct manipulation
// (position/velocity/cone/etc), or nil if spatialization is disabled.
func (c *Channel) Spatializer() *fx.Spatializer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spatializer
}
