package fx

import "math"

// Resampler performs streaming linear resampling between a fixed source
// sample rate and a mutable target sample rate. When the two rates match
// it runs in bypass mode: every query is an identity and process() is a
// straight copy, with zero latency.
//
// Outside bypass it keeps the last source frame and a fractional read
// cursor across calls so that successive process() calls interpolate a
// continuous signal rather than restarting the phase each period.
type Resampler struct {
	channels         uint32
	sampleRate       uint32
	targetSampleRate uint32
	framesAvailable  int64

	cursor   float64
	prev     []float32
	havePrev bool
}

// NewResampler constructs a Resampler that starts in bypass mode
// (targetSampleRate == sampleRate).
func NewResampler(channels uint32, sampleRate uint32) (*Resampler, error) {
	if err := ValidateChannels(channels); err != nil {
		return nil, err
	}
	if err := ValidateSampleRate(sampleRate); err != nil {
		return nil, err
	}
	return &Resampler{
		channels:         channels,
		sampleRate:       sampleRate,
		targetSampleRate: sampleRate,
		prev:             make([]float32, channels),
	}, nil
}

// BypassMode reports whether source and target rates are equal.
func (r *Resampler) BypassMode() bool { return r.sampleRate == r.targetSampleRate }

// SetRatio sets targetSampleRate = sampleRate * ratio.
func (r *Resampler) SetRatio(ratio float32) {
	r.SetTargetSampleRate(uint32(float32(r.sampleRate) * ratio))
}

// SetTargetSampleRate sets the output rate directly and resets the
// interpolation cursor, since a rate change invalidates the previous
// phase relationship.
func (r *Resampler) SetTargetSampleRate(targetSampleRate uint32) {
	r.targetSampleRate = targetSampleRate
	r.cursor = 0
	r.havePrev = false
}

// TargetSampleRate returns the current output rate.
func (r *Resampler) TargetSampleRate() uint32 { return r.targetSampleRate }

// RequiredInput returns the number of source frames needed to produce
// outputFrameCount frames at the target rate. Identity in bypass mode.
func (r *Resampler) RequiredInput(outputFrameCount uint64) (uint64, error) {
	if r.BypassMode() {
		return outputFrameCount, nil
	}
	ratio := float64(r.sampleRate) / float64(r.targetSampleRate)
	// +1 for the trailing fractional frame the interpolator may consume.
	return uint64(math.Ceil(float64(outputFrameCount)*ratio)) + 1, nil
}

// ExpectedOutput returns the number of output frames produced by
// consuming inputFrameCount source frames. Identity in bypass mode.
func (r *Resampler) ExpectedOutput(inputFrameCount uint64) (uint64, error) {
	if r.BypassMode() {
		return inputFrameCount, nil
	}
	if inputFrameCount == 0 {
		return 0, &ErrInvalidFrameCount{FrameCount: inputFrameCount}
	}
	ratio := float64(r.targetSampleRate) / float64(r.sampleRate)
	out := uint64(math.Floor(float64(inputFrameCount) * ratio))
	if out == 0 {
		return 0, &ErrInvalidFrameCount{FrameCount: inputFrameCount}
	}
	return out, nil
}

// InputLatency returns the number of source frames held internally for
// interpolation continuity: zero in bypass mode, one frame otherwise.
func (r *Resampler) InputLatency() uint64 {
	if r.BypassMode() {
		return 0
	}
	return 1
}

// OutputLatency mirrors InputLatency: the resampler produces output
// immediately from its held state, so there is no additional output-side
// buffering beyond the one carried source frame.
func (r *Resampler) OutputLatency() uint64 {
	if r.BypassMode() {
		return 0
	}
	return 1
}

// Process resamples up to inputFrameCount source frames from input into
// up to outputFrameCount frames of output, returning the number of output
// frames actually produced. In bypass mode this is a straight copy.
func (r *Resampler) Process(input []float32, inputFrameCount uint64, output []float32, outputFrameCount uint64) (uint64, error) {
	ch := int(r.channels)

	if r.BypassMode() {
		n := inputFrameCount
		if outputFrameCount < n {
			n = outputFrameCount
		}
		expected := int(n) * ch
		if len(input) < expected {
			return 0, &ErrBufferSizeMismatch{Expected: expected, Actual: len(input)}
		}
		if len(output) < expected {
			return 0, &ErrBufferSizeMismatch{Expected: expected, Actual: len(output)}
		}
		copy(output[:expected], input[:expected])
		return n, nil
	}

	if len(input) < int(inputFrameCount)*ch {
		return 0, &ErrBufferSizeMismatch{Expected: int(inputFrameCount) * ch, Actual: len(input)}
	}
	if len(output) < int(outputFrameCount)*ch {
		return 0, &ErrBufferSizeMismatch{Expected: int(outputFrameCount) * ch, Actual: len(output)}
	}

	step := float64(r.sampleRate) / float64(r.targetSampleRate)
	var produced uint64

	if !r.havePrev && inputFrameCount > 0 {
		copy(r.prev, input[0:ch])
		r.havePrev = true
	}

	for produced < outputFrameCount {
		srcIdx := int(r.cursor)
		if srcIdx >= int(inputFrameCount) {
			break
		}
		frac := float32(r.cursor - float64(srcIdx))

		var cur []float32
		if srcIdx == 0 {
			cur = r.prev
		} else {
			cur = input[(srcIdx-1)*ch : srcIdx*ch]
		}
		next := input[srcIdx*ch : (srcIdx+1)*ch]

		base := int(produced) * ch
		for c := 0; c < ch; c++ {
			output[base+c] = cur[c] + (next[c]-cur[c])*frac
		}

		produced++
		r.cursor += step
	}

	// Carry the last consumed source frame forward for the next call's
	// interpolation window.
	consumed := int(r.cursor)
	if consumed > int(inputFrameCount) {
		consumed = int(inputFrameCount)
	}
	if consumed > 0 {
		copy(r.prev, input[(consumed-1)*ch:consumed*ch])
	}
	r.cursor -= float64(consumed)

	return produced, nil
}
