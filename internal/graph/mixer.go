package graph

import (
	"sync"
	"sync/atomic"

	"github.com/rcdx/resonance/internal/fx"
)

// Mixer is a composite pull-source: it carries the same effect-chain
// shape as a Channel (volume/pan/resampler/optional stretcher) but its
// input is the additive mix of its scheduled children rather than a
// reader. It tracks its own timeline position and computed max_length.
type Mixer struct {
	refID uint64

	mu              sync.Mutex
	children        []ChildEntry
	isPlaying       atomic.Bool
	maxLength       uint64
	mixerPosition   uint64
	isInfinite      bool
	dspCallback     DSPCallback
	markedAsDeleted bool

	channelCount uint32
	sampleRate   uint32

	buffer             []float32
	intermediateBuffer []float32

	resampler *fx.Resampler
	panner    *fx.Panner
	volume    *fx.Volume
	stretcher *fx.Stretcher
}

const mixerScratchFrames = 4096

// NewMixer constructs an empty, stopped Mixer. channels must be in [1,8]
// and sampleRate in [8000,192000].
func NewMixer(channels uint32, sampleRate uint32) (*Mixer, error) {
	if channels < 1 || channels > 8 {
		return nil, &ErrInvalidChannelCount{Channels: channels}
	}
	if sampleRate < 8000 || sampleRate > 192000 {
		return nil, &ErrInvalidSampleRate{SampleRate: sampleRate}
	}

	resampler, err := fx.NewResampler(channels, sampleRate)
	if err != nil {
		return nil, err
	}
	panner, err := fx.NewPanner(channels)
	if err != nil {
		return nil, err
	}
	volume, err := fx.NewVolume(channels)
	if err != nil {
		return nil, err
	}

	return &Mixer{
		refID:              nextMixerRefID(),
		channelCount:       channels,
		sampleRate:         sampleRate,
		buffer:             make([]float32, mixerScratchFrames*channels),
		intermediateBuffer: make([]float32, mixerScratchFrames*channels),
		resampler:          resampler,
		panner:             panner,
		volume:             volume,
	}, nil
}

func (m *Mixer) RefID() uint64           { return m.refID }
func (m *Mixer) IsPlaying() bool         { return m.isPlaying.Load() }
func (m *Mixer) NaturalLength() uint64   { return m.maxLength }
func (m *Mixer) MarkedAsDeleted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markedAsDeleted
}

// MarkDeleted transitions marked_deleted false->true and stops playback.
func (m *Mixer) MarkDeleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markedAsDeleted = true
	m.isPlaying.Store(false)
}

// SetDSPCallback installs or clears a user analysis callback.
func (m *Mixer) SetDSPCallback(cb DSPCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dspCallback = cb
}

// SetPlaying recursively propagates play/stop to every descendant.
func (m *Mixer) SetPlaying(playing bool) {
	if playing {
		_ = m.Play()
	} else {
		m.Stop()
	}
}

// Play recursively propagates playing=true to every descendant; if the
// mixer has never advanced, it pre-warms FX with a seek(0) first.
func (m *Mixer) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.children {
		m.children[i].Node.SetPlaying(true)
	}
	m.isPlaying.Store(true)

	if m.mixerPosition == 0 {
		return m.seekLocked(0)
	}
	return nil
}

// Stop recursively propagates playing=false to every descendant.
func (m *Mixer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.children {
		m.children[i].Node.SetPlaying(false)
	}
	m.isPlaying.Store(false)
}

// AddChannel attaches a Channel as a scheduled child and recomputes
// max_length/is_infinite. Returns ErrChannelAlreadyExists if this channel
// (by ref_id) is already a child.
func (m *Mixer) AddChannel(c *Channel, delay, duration *uint64) error {
	return WithLock(&m.mu, func() error {
		for _, entry := range m.children {
			if existing, ok := entry.Node.(*Channel); ok && existing.RefID() == c.RefID() {
				return &ErrChannelAlreadyExists{RefID: c.RefID()}
			}
		}
		m.children = append(m.children, ChildEntry{Node: c, Delay: delay, Duration: duration})
		m.computeLengthLocked()
		return nil
	})
}

// AddMixer attaches a nested Mixer as a scheduled child and recomputes
// max_length/is_infinite. Returns ErrMixerAlreadyExists if this mixer (by
// ref_id) is already a child.
func (m *Mixer) AddMixer(child *Mixer, delay, duration *uint64) error {
	return WithLock(&m.mu, func() error {
		for _, entry := range m.children {
			if existing, ok := entry.Node.(*Mixer); ok && existing.RefID() == child.RefID() {
				return &ErrMixerAlreadyExists{RefID: child.RefID()}
			}
		}
		m.children = append(m.children, ChildEntry{Node: child, Delay: delay, Duration: duration})
		m.computeLengthLocked()
		return nil
	})
}

// ComputeLength recomputes max_length/is_infinite from the current
// children and returns the new max_length.
func (m *Mixer) ComputeLength() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.computeLengthLocked()
}

func (m *Mixer) computeLengthLocked() uint64 {
	var maxLength uint64
	hasInfinite := false

	for _, entry := range m.children {
		start := entry.delay()
		duration := entry.duration()
		end := start + duration

		switch child := entry.Node.(type) {
		case *Channel:
			hasInfinite = hasInfinite || child.IsLooping()
		case *Mixer:
			hasInfinite = hasInfinite || child.isInfiniteLocked()
		}

		if end > maxLength {
			maxLength = end
		}
	}

	m.maxLength = maxLength
	m.isInfinite = hasInfinite
	return maxLength
}

func (m *Mixer) isInfiniteLocked() bool {
	// Called while the caller holds its own mutex, not ours; take ours
	// briefly since is_infinite is only flipped under m.mu.
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isInfinite
}

// IsInfinite reports whether any descendant is a looping channel or an
// infinite nested mixer.
func (m *Mixer) IsInfinite() bool { return m.isInfiniteLocked() }

// Seek resets mixer_position to 0, seeks every child to its relative
// position, and if FX is enabled, pre-warms the stretcher from the
// freshly-seeked children. Returns the maximum delay+child_position
// across children.
func (m *Mixer) Seek(position uint64) (uint64, error) {
	var result uint64
	err := WithLock(&m.mu, func() error {
		r, err := m.seekLockedResult(position)
		result = r
		return err
	})
	return result, err
}

func (m *Mixer) seekLocked(position uint64) error {
	_, err := m.seekLockedResult(position)
	return err
}

func (m *Mixer) seekLockedResult(position uint64) (uint64, error) {
	m.mixerPosition = 0
	var maxChildSeeked uint64

	for _, entry := range m.children {
		delay := entry.delay()
		duration := entry.duration()

		var relative uint64
		if position > delay {
			relative = position - delay
		}
		if relative > duration {
			relative = duration
		}

		seeked, err := entry.Node.Seek(relative)
		if err != nil {
			return 0, err
		}
		if delay+seeked > maxChildSeeked {
			maxChildSeeked = delay + seeked
		}
	}

	if m.stretcher != nil {
		inputLatency := m.stretcher.GetInputLatency()
		if inputLatency > 0 {
			temp := make([]float32, mixerScratchFrames*uint64(m.channelCount))
			if _, err := m.mixChildrenIntoBufferLocked(temp, inputLatency); err != nil {
				return 0, err
			}
			if _, err := m.stretcher.PreProcess(m.buffer, inputLatency); err != nil {
				return 0, err
			}
		}
	}

	return maxChildSeeked, nil
}

// ReadPCMFrames implements the mixer pull algorithm (spec.md §4.3).
func (m *Mixer) ReadPCMFrames(listener *fx.SpatializationListener, output, temp []float32, frameCount uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readPCMFramesLocked(output, temp, frameCount)
}

// TryLockPull is the non-blocking variant a parent mixer/device uses from
// the audio callback.
func (m *Mixer) TryLockPull(listener *fx.SpatializationListener, output, temp []float32, frameCount uint64) (uint64, error) {
	return TryPull(&m.mu, func() (uint64, error) {
		return m.readPCMFramesLocked(output, temp, frameCount)
	})
}

func (m *Mixer) readPCMFramesLocked(output, temp []float32, frameCount uint64) (uint64, error) {
	if !m.isPlaying.Load() {
		return 0, nil
	}

	sampleCount := int(frameCount) * int(m.channelCount)
	requiredInput, _ := m.resampler.RequiredInput(frameCount)

	var mixedSources int

	if m.stretcher != nil {
		target := requiredInput
		readTarget := requiredInput
		if !m.stretcher.TempoBypass() {
			target, _ = m.stretcher.RequiredInput(target)
		}

		available := saturatingSub(m.maxLength, m.mixerPosition)
		if available > 0 {
			n, err := m.mixChildrenIntoBufferLocked(temp, target)
			if err != nil {
				return 0, err
			}
			mixedSources = n

			if target >= available {
				m.stretcher.FrameAvailable += int64(m.stretcher.GetOutputLatency())
			} else {
				m.stretcher.FrameAvailable += int64(readTarget)
			}
		}

		if m.stretcher.FrameAvailable > 0 {
			if _, err := m.stretcher.Process(m.buffer, target, temp, readTarget); err != nil {
				return 0, err
			}
			m.stretcher.FrameAvailable -= int64(readTarget)
			if m.stretcher.FrameAvailable < 0 {
				readTarget = uint64(int64(readTarget) + m.stretcher.FrameAvailable)
				m.stretcher.FrameAvailable = 0
			}
		} else {
			readTarget = 0
		}

		copy(m.buffer[:readTarget*uint64(m.channelCount)], temp[:readTarget*uint64(m.channelCount)])
	} else {
		n, err := m.mixChildrenIntoBufferLocked(temp, requiredInput)
		if err != nil {
			return 0, err
		}
		mixedSources = n
	}

	if mixedSources > 0 {
		if !m.resampler.BypassMode() {
			if _, err := m.resampler.Process(m.buffer, requiredInput, temp, frameCount); err != nil {
				return 0, err
			}
			copy(m.buffer[:int(frameCount)*int(m.channelCount)], temp[:int(frameCount)*int(m.channelCount)])
		}

		if err := m.panner.Process(m.buffer, temp, frameCount); err != nil {
			return 0, err
		}
		if err := m.volume.Process(temp, m.buffer, frameCount); err != nil {
			return 0, err
		}

		scaleBuffer(m.buffer, sampleCount, float32(mixedSources))
		clampBuffer(m.buffer, sampleCount)
		copy(output[:sampleCount], m.buffer[:sampleCount])
	}

	if m.dspCallback != nil {
		m.dspCallback(output, frameCount)
	}

	m.mixerPosition += frameCount

	if m.mixerPosition >= m.maxLength && !m.isInfinite {
		m.isPlaying.Store(false)
	}

	return frameCount, nil
}

// mixChildrenIntoBufferLocked additively mixes every active child into
// m.buffer and returns how many children contributed this period.
// Children whose try-lock fails are skipped for this period only; the
// mixer's own position still advances, so a consistently-contended child
// effectively skips frames on its own timeline (an intentional
// consequence per spec.md §9).
func (m *Mixer) mixChildrenIntoBufferLocked(tempBuffer []float32, frameCount uint64) (int, error) {
	mixedSources := 0
	sampleCount := int(frameCount) * int(m.channelCount)

	zero(m.buffer, sampleCount)

	for _, entry := range m.children {
		delay := entry.delay()
		duration := entry.duration()

		if m.mixerPosition < delay || m.mixerPosition >= delay+duration {
			continue
		}

		remaining := saturatingSub(delay+duration, m.mixerPosition)
		readFrames := frameCount
		if remaining < readFrames {
			readFrames = remaining
		}

		produced, err := entry.Node.TryLockPull(nil, m.intermediateBuffer, tempBuffer, readFrames)
		if err == ErrSkippedThisPeriod {
			continue
		}
		if err != nil {
			return mixedSources, err
		}

		if produced > 0 {
			mixedSources++
			addInto(m.buffer[:int(produced)*int(m.channelCount)], m.intermediateBuffer[:int(produced)*int(m.channelCount)], int(produced)*int(m.channelCount))
		}
	}

	return mixedSources, nil
}

func saturatingSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}

// GetAttributeF32/SetAttributeF32/GetAttributeBool/SetAttributeBool mirror
// Channel's attribute surface for the mixer's own effect chain.
func (m *Mixer) GetAttributeF32(attr Attribute) (float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch attr {
	case AttributeFXTempo:
		if m.stretcher == nil {
			return 0, &ErrNotEnabled{Capability: "AudioFX"}
		}
		return m.stretcher.Tempo(), nil
	case AttributeFXPitch:
		if m.stretcher == nil {
			return 0, &ErrNotEnabled{Capability: "AudioFX"}
		}
		return m.stretcher.Octave(), nil
	case AttributeSampleRate:
		return float32(m.resampler.TargetSampleRate()), nil
	case AttributeVolume:
		return m.volume.Gain(), nil
	case AttributePan:
		return m.panner.Pan(), nil
	default:
		return 0, &ErrUnsupportedAttribute{Attribute: attr, Reason: "not an f32 attribute"}
	}
}

func (m *Mixer) SetAttributeF32(attr Attribute, value float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch attr {
	case AttributeFXTempo:
		if m.stretcher == nil {
			return &ErrNotEnabled{Capability: "AudioFX"}
		}
		return m.stretcher.SetTempo(value)
	case AttributeFXPitch:
		if m.stretcher == nil {
			return &ErrNotEnabled{Capability: "AudioFX"}
		}
		return m.stretcher.SetOctave(value)
	case AttributeSampleRate:
		m.resampler.SetTargetSampleRate(uint32(value))
		return nil
	case AttributeVolume:
		m.volume.SetVolume(value)
		return nil
	case AttributePan:
		m.panner.SetPan(value)
		return nil
	default:
		return &ErrUnsupportedAttribute{Attribute: attr, Reason: "not an f32 attribute"}
	}
}

func (m *Mixer) SetAttributeBool(attr Attribute, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch attr {
	case AttributeAudioFX:
		if value {
			if m.stretcher == nil {
				s, err := fx.NewStretcher(m.channelCount, m.sampleRate)
				if err != nil {
					return err
				}
				m.stretcher = s
			}
		} else {
			m.stretcher = nil
		}
		return nil
	default:
		return &ErrUnsupportedAttribute{Attribute: attr, Reason: "not a bool attribute"}
	}
}
