package graph

import (
	"sync"

	"github.com/rcdx/resonance/internal/backend"
	"github.com/rcdx/resonance/internal/debug"
	"github.com/rcdx/resonance/internal/fx"
)

// HardwareInfo describes one enumerated playback device.
type HardwareInfo struct {
	Name    string
	Kind    backend.DeviceKind
	ID      string
	Context string
}

// Device owns the backend handle and is the sole site that interprets the
// audio callback's frame budget. Its three scratch buffers are allocated
// once at construction, sized to max_period*channel_count, so the
// callback itself never allocates.
type Device struct {
	refID uint64

	mu       sync.Mutex
	channels []ChildEntry
	mixers   []ChildEntry

	channelCount uint32
	sampleRate   uint32
	maxPeriod    uint64

	dspCallback DSPCallback
	listener    *fx.SpatializationListener

	resampler *fx.Resampler
	panner    *fx.Panner
	volume    *fx.Volume
	stretcher *fx.Stretcher

	accumulator []float32
	intermediate []float32
	scratch      []float32

	out backend.OutputDriver
}

// NewDevice takes out (already opened and configured for
// channelCount/sampleRate), installs process as its callback and
// constructs a Device driving it. channelCount must be one of {1,2,4} and
// sampleRate one of {44100,48000}; maxPeriod bounds the largest frame_count
// the backend will ever request in one callback.
func NewDevice(out backend.OutputDriver, channelCount uint32, sampleRate uint32, maxPeriod uint64) (*Device, error) {
	if channelCount != 1 && channelCount != 2 && channelCount != 4 {
		return nil, &ErrInvalidChannelCount{Channels: channelCount}
	}
	if sampleRate != 44100 && sampleRate != 48000 {
		return nil, &ErrInvalidSampleRate{SampleRate: sampleRate}
	}

	resampler, err := fx.NewResampler(channelCount, sampleRate)
	if err != nil {
		return nil, err
	}
	panner, err := fx.NewPanner(channelCount)
	if err != nil {
		return nil, err
	}
	volume, err := fx.NewVolume(channelCount)
	if err != nil {
		return nil, err
	}

	d := &Device{
		refID:        nextMixerRefID(),
		channelCount: channelCount,
		sampleRate:   sampleRate,
		maxPeriod:    maxPeriod,
		resampler:    resampler,
		panner:       panner,
		volume:       volume,
		accumulator:  make([]float32, maxPeriod*uint64(channelCount)),
		intermediate: make([]float32, maxPeriod*uint64(channelCount)),
		scratch:      make([]float32, maxPeriod*uint64(channelCount)),
		out:          out,
	}

	out.SetCallback(d.process)
	return d, nil
}

// Enumerate lists available playback devices via the configured backend.
func Enumerate(b backend.OutputDriver) ([]HardwareInfo, error) {
	infos, err := b.Enumerate()
	if err != nil {
		return nil, err
	}
	result := make([]HardwareInfo, 0, len(infos))
	for _, i := range infos {
		result = append(result, HardwareInfo{Name: i.Name, Kind: i.Kind, ID: i.ID, Context: i.Context})
	}
	return result, nil
}

func (d *Device) RefID() uint64 { return d.refID }

// Start begins backend playback; the audio callback starts firing process.
func (d *Device) Start() error { return d.out.Start() }

// Stop halts backend playback.
func (d *Device) Stop() error { return d.out.Stop() }

// SetDSPCallback installs or clears a user analysis callback invoked after
// every mixed period.
func (d *Device) SetDSPCallback(cb DSPCallback) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dspCallback = cb
}

// AddChannel attaches a top-level channel. Returns ErrChannelAlreadyExists
// if this channel is already attached. delay and duration are stored on the
// entry, but process does not consult them: every attached top-level child
// is pulled in every period.
func (d *Device) AddChannel(c *Channel, delay, duration *uint64) error {
	return WithLock(&d.mu, func() error {
		for _, entry := range d.channels {
			if entry.Node.RefID() == c.RefID() {
				return &ErrChannelAlreadyExists{RefID: c.RefID()}
			}
		}
		d.channels = append(d.channels, ChildEntry{Node: c, Delay: delay, Duration: duration})
		return nil
	})
}

// AddMixer attaches a top-level mixer. Returns ErrMixerAlreadyExists if
// this mixer is already attached. As with AddChannel, delay and duration
// are stored but not used to schedule the mixer.
func (d *Device) AddMixer(m *Mixer, delay, duration *uint64) error {
	return WithLock(&d.mu, func() error {
		for _, entry := range d.mixers {
			if entry.Node.RefID() == m.RefID() {
				return &ErrMixerAlreadyExists{RefID: m.RefID()}
			}
		}
		d.mixers = append(d.mixers, ChildEntry{Node: m, Delay: delay, Duration: duration})
		return nil
	})
}

// RemoveChannel detaches a channel by ref_id. Returns ErrChannelNotFound
// if no such channel is attached.
func (d *Device) RemoveChannel(refID uint64) error {
	return WithLock(&d.mu, func() error {
		for i, entry := range d.channels {
			if entry.Node.RefID() == refID {
				d.channels = append(d.channels[:i], d.channels[i+1:]...)
				return nil
			}
		}
		return &ErrChannelNotFound{RefID: refID}
	})
}

// RemoveMixer detaches a mixer by ref_id. Returns ErrMixerNotFound if no
// such mixer is attached.
func (d *Device) RemoveMixer(refID uint64) error {
	return WithLock(&d.mu, func() error {
		for i, entry := range d.mixers {
			if entry.Node.RefID() == refID {
				d.mixers = append(d.mixers[:i], d.mixers[i+1:]...)
				return nil
			}
		}
		return &ErrMixerNotFound{RefID: refID}
	})
}

// process is the backend's audio callback: it owns the entire per-period
// mix (spec.md §4.4). The device's own child-list lock is a normal,
// potentially blocking acquire here and on the control path (AddChannel,
// RemoveChannel, the attribute setters) — contention windows on it are
// short by construction, so a blocking wait is bounded. Only the pulls
// into individual children, inside mixChildrenInto, ever try-lock. The
// whole body runs under panic recovery so a panic anywhere in the mix
// chain zeroes this period's output and logs instead of crashing the
// callback thread.
func (d *Device) process(output []float32, frameCount uint64) {
	defer func() {
		if r := recover(); r != nil {
			log.Log(debug.ComponentGraph, debug.LogLevelError, "recovered panic in device process", "panic", r)
			zero(output, int(frameCount)*int(d.channelCount))
		}
	}()

	d.mu.Lock()
	defer d.mu.Unlock()

	sampleCount := int(frameCount) * int(d.channelCount)
	zero(output, sampleCount)

	if len(d.channels) == 0 && len(d.mixers) == 0 {
		return
	}

	requiredInput, _ := d.resampler.RequiredInput(frameCount)
	var mixedSources int

	if d.stretcher != nil {
		target := requiredInput
		if !d.stretcher.TempoBypass() {
			target, _ = d.stretcher.RequiredInput(target)
		}

		n, err := d.mixChildrenInto(d.accumulator, target)
		if err == nil {
			mixedSources = n
		}

		d.stretcher.FrameAvailable += int64(requiredInput)

		if d.stretcher.FrameAvailable > 0 {
			if _, err := d.stretcher.Process(d.accumulator, target, d.scratch, requiredInput); err == nil {
				d.stretcher.FrameAvailable -= int64(requiredInput)
				if d.stretcher.FrameAvailable < 0 {
					d.stretcher.FrameAvailable = 0
				}
				copy(d.accumulator[:int(requiredInput)*int(d.channelCount)], d.scratch[:int(requiredInput)*int(d.channelCount)])
			}
		}
	} else {
		n, err := d.mixChildrenInto(d.accumulator, requiredInput)
		if err == nil {
			mixedSources = n
		}
	}

	if mixedSources > 0 {
		if !d.resampler.BypassMode() {
			if _, err := d.resampler.Process(d.accumulator, requiredInput, d.scratch, frameCount); err == nil {
				copy(d.accumulator[:sampleCount], d.scratch[:sampleCount])
			}
		}

		if err := d.panner.Process(d.accumulator, d.scratch, frameCount); err != nil {
			log.Log(debug.ComponentGraph, debug.LogLevelError, "panner process failed", "err", err)
			return
		}
		if err := d.volume.Process(d.scratch, d.accumulator, frameCount); err != nil {
			log.Log(debug.ComponentGraph, debug.LogLevelError, "volume process failed", "err", err)
			return
		}

		scaleBuffer(d.accumulator, sampleCount, float32(mixedSources))
		clampBuffer(d.accumulator, sampleCount)
		copy(output[:sampleCount], d.accumulator[:sampleCount])
	}

	if d.dspCallback != nil {
		d.dspCallback(output, frameCount)
	}

	d.reapDeletedLocked()
}

// mixChildrenInto additively mixes every top-level channel and mixer into
// dst, using try-lock on each child so the callback never blocks.
func (d *Device) mixChildrenInto(dst []float32, frameCount uint64) (int, error) {
	mixedSources := 0
	sampleCount := int(frameCount) * int(d.channelCount)
	zero(dst, sampleCount)

	pull := func(entries []ChildEntry) {
		for _, entry := range entries {
			produced, err := entry.Node.TryLockPull(d.listener, d.intermediate, d.scratch, frameCount)
			if err != nil || produced == 0 {
				continue
			}
			mixedSources++
			addInto(dst[:int(produced)*int(d.channelCount)], d.intermediate[:int(produced)*int(d.channelCount)], int(produced)*int(d.channelCount))
		}
	}

	pull(d.channels)
	pull(d.mixers)

	return mixedSources, nil
}

// reapDeletedLocked drops channels/mixers whose owning handle has marked
// them for deletion. It runs opportunistically at the end of each period
// so the callback's own try-lock never blocks on a handle that is being
// torn down concurrently.
func (d *Device) reapDeletedLocked() {
	d.channels = filterEntries(d.channels, func(n Pullable) bool { return !n.MarkedAsDeleted() })
	d.mixers = filterEntries(d.mixers, func(n Pullable) bool { return !n.MarkedAsDeleted() })
}

func filterEntries(entries []ChildEntry, keep func(Pullable) bool) []ChildEntry {
	kept := entries[:0]
	for _, entry := range entries {
		if keep(entry.Node) {
			kept = append(kept, entry)
		}
	}
	return kept
}

// SetAttributeBool toggles device-wide capability attributes: AudioFX
// constructs/destroys a device-level stretcher; AudioSpatialization
// constructs/destroys the listener passed to every top-level channel that
// itself has spatialization enabled. Mixers pull their children without a
// listener, so channels nested under a mixer are not spatialized.
func (d *Device) SetAttributeBool(attr Attribute, value bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch attr {
	case AttributeAudioFX:
		if value {
			if d.stretcher == nil {
				s, err := fx.NewStretcher(d.channelCount, d.sampleRate)
				if err != nil {
					return err
				}
				d.stretcher = s
			}
		} else {
			d.stretcher = nil
		}
		return nil
	case AttributeAudioSpatialization:
		if value {
			if d.listener == nil {
				d.listener = fx.NewSpatializationListener()
			}
		} else {
			d.listener = nil
		}
		return nil
	default:
		return &ErrUnsupportedAttribute{Attribute: attr, Reason: "not a bool attribute"}
	}
}

// GetAttributeBool reads a device-wide capability attribute.
func (d *Device) GetAttributeBool(attr Attribute) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch attr {
	case AttributeAudioFX:
		return d.stretcher != nil, nil
	case AttributeAudioSpatialization:
		return d.listener != nil, nil
	default:
		return false, &ErrUnsupportedAttribute{Attribute: attr, Reason: "not a bool attribute"}
	}
}

// SetAttributeF32 writes a device-wide f32 attribute (master volume/pan,
// target sample rate, or stretcher tempo/pitch when AudioFX is enabled).
func (d *Device) SetAttributeF32(attr Attribute, value float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch attr {
	case AttributeFXTempo:
		if d.stretcher == nil {
			return &ErrNotEnabled{Capability: "AudioFX"}
		}
		return d.stretcher.SetTempo(value)
	case AttributeFXPitch:
		if d.stretcher == nil {
			return &ErrNotEnabled{Capability: "AudioFX"}
		}
		return d.stretcher.SetOctave(value)
	case AttributeSampleRate:
		d.resampler.SetTargetSampleRate(uint32(value))
		return nil
	case AttributeVolume:
		d.volume.SetVolume(value)
		return nil
	case AttributePan:
		d.panner.SetPan(value)
		return nil
	default:
		return &ErrUnsupportedAttribute{Attribute: attr, Reason: "not an f32 attribute"}
	}
}

// GetAttributeF32 reads a device-wide f32 attribute.
func (d *Device) GetAttributeF32(attr Attribute) (float32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch attr {
	case AttributeFXTempo:
		if d.stretcher == nil {
			return 0, &ErrNotEnabled{Capability: "AudioFX"}
		}
		return d.stretcher.Tempo(), nil
	case AttributeFXPitch:
		if d.stretcher == nil {
			return 0, &ErrNotEnabled{Capability: "AudioFX"}
		}
		return d.stretcher.Octave(), nil
	case AttributeSampleRate:
		return float32(d.resampler.TargetSampleRate()), nil
	case AttributeVolume:
		return d.volume.Gain(), nil
	case AttributePan:
		return d.panner.Pan(), nil
	default:
		return 0, &ErrUnsupportedAttribute{Attribute: attr, Reason: "not an f32 attribute"}
	}
}

// Listener exposes the device's spatialization listener for direct
// manipulation, or nil if spatialization is disabled.
func (d *Device) Listener() *fx.SpatializationListener {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listener
}
