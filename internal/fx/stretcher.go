package fx

import "math"

// Stretcher is a tempo/pitch time-stretch kernel. The actual DSP (phase
// vocoder / WSOLA-grade stretching) is treated as an external collaborator
// by the specification this engine implements; Stretcher here provides a
// conforming implementation of that interface — correct frame-count
// accounting and a resampling-based approximation of the tempo/pitch
// transform — rather than a bit-exact port of any particular kernel.
type Stretcher struct {
	channels   uint32
	sampleRate uint32

	tempo  float32 // >0, 1.0 == bypass
	octave float32 // transpose factor, 1.0 == no pitch shift

	// tonalityLimit is the kernel's pitch-quality ceiling, fixed by
	// sampleRate at construction. A real phase-vocoder kernel would refuse
	// to shift tonality further than this without audible artifacts; this
	// port has no such kernel to enforce it against, but SetOctave still
	// reports it alongside the transpose factor for a future kernel to
	// consume, the same way the original passed both together.
	tonalityLimit float32

	// FrameAvailable tracks frames buffered inside the kernel. It is
	// exported because the calling node (Channel/Mixer/Device) owns the
	// increment/decrement bookkeeping described in the pull algorithm;
	// the kernel only guarantees it never goes negative internally.
	FrameAvailable int64

	cursor   float64
	prev     []float32
	havePrev bool
}

// NewStretcher constructs a Stretcher at unity tempo and pitch.
func NewStretcher(channels uint32, sampleRate uint32) (*Stretcher, error) {
	if err := ValidateChannels(channels); err != nil {
		return nil, err
	}
	if err := ValidateSampleRate(sampleRate); err != nil {
		return nil, err
	}
	s := &Stretcher{
		channels:   channels,
		sampleRate: sampleRate,
		tempo:      1.0,
		octave:     1.0,
		prev:       make([]float32, channels),
	}
	s.tonalityLimit = tonalityLimitFor(sampleRate)
	return s, nil
}

// TempoBypass reports whether tempo == 1.0.
func (s *Stretcher) TempoBypass() bool { return s.tempo == 1.0 }

// SetTempo sets the playback tempo ratio. Must be > 0.
func (s *Stretcher) SetTempo(tempo float32) error {
	if tempo <= 0 {
		return &ErrInvalidConfiguration{Reason: "tempo must be > 0"}
	}
	s.tempo = tempo
	return nil
}

// Tempo returns the current tempo ratio.
func (s *Stretcher) Tempo() float32 { return s.tempo }

// SetOctave configures a pitch transpose factor. The kernel is given a
// tonality limit of 4000/sample_rate alongside it, mirroring the
// underlying kernel's constraint on how far it can shift pitch before
// quality degrades; values are accepted as given since spec.md only asks
// for the plumbing.
func (s *Stretcher) SetOctave(octave float32) error {
	if octave <= 0 {
		return &ErrInvalidConfiguration{Reason: "pitch transpose factor must be > 0"}
	}
	s.octave = octave
	s.tonalityLimit = tonalityLimitFor(s.sampleRate)
	return nil
}

// Octave returns the current pitch transpose factor.
func (s *Stretcher) Octave() float32 { return s.octave }

// TonalityLimit returns the tonality limit paired with the current
// transpose factor.
func (s *Stretcher) TonalityLimit() float32 { return s.tonalityLimit }

func tonalityLimitFor(sampleRate uint32) float32 {
	return 4000.0 / float32(sampleRate)
}

// GetInputLatency returns the number of input frames the kernel needs
// buffered before it can emit aligned output.
func (s *Stretcher) GetInputLatency() uint64 {
	if s.TempoBypass() {
		return 0
	}
	return 1
}

// GetOutputLatency returns the number of output frames the kernel holds
// internally once draining.
func (s *Stretcher) GetOutputLatency() uint64 {
	if s.TempoBypass() {
		return 0
	}
	return 1
}

// RequiredInput returns outputFrameCount*tempo source frames, the exact
// identity when tempo==1.0.
func (s *Stretcher) RequiredInput(outputFrameCount uint64) (uint64, error) {
	if outputFrameCount == 0 {
		return 0, &ErrInvalidFrameCount{FrameCount: outputFrameCount}
	}
	if s.TempoBypass() {
		return outputFrameCount, nil
	}
	return uint64(float32(outputFrameCount) * s.tempo), nil
}

// ExpectedOutput returns inputFrameCount/tempo output frames.
func (s *Stretcher) ExpectedOutput(inputFrameCount uint64) (uint64, error) {
	if inputFrameCount == 0 {
		return 0, &ErrInvalidFrameCount{FrameCount: inputFrameCount}
	}
	if s.TempoBypass() {
		return inputFrameCount, nil
	}
	out := uint64(float32(inputFrameCount) / s.tempo)
	if out == 0 {
		return 0, &ErrInvalidFrameCount{FrameCount: inputFrameCount}
	}
	return out, nil
}

// Reset clears interpolation state, used before a fresh pre-roll.
func (s *Stretcher) Reset() {
	s.cursor = 0
	s.havePrev = false
	s.FrameAvailable = 0
}

// PreProcess resets internal state and seeds the kernel with frameCount
// frames of input, as used to warm the kernel after a seek. It returns the
// number of frames actually consumed from input.
func (s *Stretcher) PreProcess(input []float32, frameCount uint64) (uint64, error) {
	s.Reset()

	ch := int(s.channels)
	if len(input) < int(frameCount)*ch {
		return 0, &ErrBufferSizeMismatch{Expected: int(frameCount) * ch, Actual: len(input)}
	}
	if frameCount > 0 {
		copy(s.prev, input[0:ch])
		s.havePrev = true
	}
	s.FrameAvailable = int64(frameCount)
	return frameCount, nil
}

// Process pulls inputFrameCount frames from input and emits up to
// outputFrameCount frames into output via the combined tempo/pitch ratio,
// returning the number of frames actually produced.
func (s *Stretcher) Process(input []float32, inputFrameCount uint64, output []float32, outputFrameCount uint64) (uint64, error) {
	ch := int(s.channels)
	if len(input) < int(inputFrameCount)*ch {
		return 0, &ErrBufferSizeMismatch{Expected: int(inputFrameCount) * ch, Actual: len(input)}
	}
	if len(output) < int(outputFrameCount)*ch {
		return 0, &ErrBufferSizeMismatch{Expected: int(outputFrameCount) * ch, Actual: len(output)}
	}

	if s.TempoBypass() && s.octave == 1.0 {
		n := inputFrameCount
		if outputFrameCount < n {
			n = outputFrameCount
		}
		copy(output[:int(n)*ch], input[:int(n)*ch])
		return n, nil
	}

	// Combined ratio: tempo stretches the timeline, octave resamples the
	// waveform within it. Both are modeled as a single interpolation step
	// so the kernel stays a plain linear resample of its input window.
	step := float64(s.tempo) / float64(clampPositive(s.octave))
	if !s.havePrev && inputFrameCount > 0 {
		copy(s.prev, input[0:ch])
		s.havePrev = true
	}

	var produced uint64
	for produced < outputFrameCount {
		srcIdx := int(s.cursor)
		if srcIdx >= int(inputFrameCount) {
			break
		}
		frac := float32(s.cursor - float64(srcIdx))

		var cur []float32
		if srcIdx == 0 {
			cur = s.prev
		} else {
			cur = input[(srcIdx-1)*ch : srcIdx*ch]
		}
		next := input[srcIdx*ch : (srcIdx+1)*ch]

		base := int(produced) * ch
		for c := 0; c < ch; c++ {
			output[base+c] = cur[c] + (next[c]-cur[c])*frac
		}

		produced++
		s.cursor += step
	}

	consumed := int(math.Min(s.cursor, float64(inputFrameCount)))
	if consumed > 0 {
		copy(s.prev, input[(consumed-1)*ch:consumed*ch])
	}
	s.cursor -= float64(consumed)

	return produced, nil
}

func clampPositive(v float32) float32 {
	if v <= 0 {
		return 1
	}
	return v
}
