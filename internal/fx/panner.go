package fx

import "math"

// Panner applies an equal-power stereo pan law to the first two channels
// of a frame. Channels beyond the first two (surround/LFE layouts) are
// passed through unchanged, since pan has no defined meaning for them.
type Panner struct {
	channels uint32
	pan      float32
}

// NewPanner constructs a centered Panner for the given channel count.
func NewPanner(channels uint32) (*Panner, error) {
	if err := ValidateChannels(channels); err != nil {
		return nil, err
	}
	return &Panner{channels: channels, pan: 0.0}, nil
}

// SetPan clamps pan to [-1,1] and stores it.
func (p *Panner) SetPan(pan float32) {
	p.pan = clamp(pan, -1.0, 1.0)
}

// Pan returns the current pan value.
func (p *Panner) Pan() float32 { return p.pan }

// leftRightGain computes the equal-power gain pair for the current pan:
// at pan=-1 the signal is entirely left, at pan=+1 entirely right, and at
// pan=0 both channels carry -3dB so perceived loudness stays constant
// across the sweep.
func (p *Panner) leftRightGain() (left, right float32) {
	angle := float64(p.pan+1) * math.Pi / 4
	return float32(math.Cos(angle)), float32(math.Sin(angle))
}

// Process applies the pan law to frameCount frames of channels-interleaved
// input into output. input and output may alias.
func (p *Panner) Process(input []float32, output []float32, frameCount uint64) error {
	expected := int(frameCount) * int(p.channels)
	if len(input) < expected {
		return &ErrBufferSizeMismatch{Expected: expected, Actual: len(input)}
	}
	if len(output) < expected {
		return &ErrBufferSizeMismatch{Expected: expected, Actual: len(output)}
	}

	if p.channels < 2 {
		// Mono has no stereo field to place; pan is a no-op.
		copy(output[:expected], input[:expected])
		return nil
	}

	left, right := p.leftRightGain()
	ch := int(p.channels)
	for f := 0; f < int(frameCount); f++ {
		base := f * ch
		output[base] = input[base] * left
		output[base+1] = input[base+1] * right
		for c := 2; c < ch; c++ {
			output[base+c] = input[base+c]
		}
	}
	return nil
}
