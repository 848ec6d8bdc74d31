package fx

// Volume is a linear gain stage. It clamps its master gain to [0,1] on
// every set rather than rejecting out-of-range values, matching the
// engine-wide clamp-on-set-vs-validate-on-set asymmetry: realtime
// setters must never fail.
type Volume struct {
	channels uint32
	volume   float32
}

// NewVolume constructs a Volume for the given channel count, starting at
// unity gain.
func NewVolume(channels uint32) (*Volume, error) {
	if err := ValidateChannels(channels); err != nil {
		return nil, err
	}
	return &Volume{channels: channels, volume: 1.0}, nil
}

// SetVolume clamps v to [0,1] and stores it as the master gain.
func (g *Volume) SetVolume(v float32) {
	g.volume = clamp(v, 0.0, 1.0)
}

// Gain returns the current master gain.
func (g *Volume) Gain() float32 { return g.volume }

// Process multiplies frameCount*channels input samples by the master gain
// into output. input and output may alias.
func (g *Volume) Process(input []float32, output []float32, frameCount uint64) error {
	expected := int(frameCount) * int(g.channels)
	if len(input) < expected {
		return &ErrBufferSizeMismatch{Expected: expected, Actual: len(input)}
	}
	if len(output) < expected {
		return &ErrBufferSizeMismatch{Expected: expected, Actual: len(output)}
	}

	for i := 0; i < expected; i++ {
		output[i] = input[i] * g.volume
	}
	return nil
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
