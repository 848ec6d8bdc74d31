// Package pcm implements frame-count arithmetic shared across the mixing graph.
package pcm

import "fmt"

// Index is an opaque frame-count position or duration. It is always >= 0;
// the zero value is the start of a stream.
type Index uint64

// ErrNegative is returned when a conversion would produce a negative frame index.
type ErrNegative struct {
	Milliseconds int64
}

func (e *ErrNegative) Error() string {
	return fmt.Sprintf("pcm: negative duration %dms cannot convert to a frame index", e.Milliseconds)
}

// FromMilliseconds converts a millisecond duration to a frame Index at sampleRate.
func FromMilliseconds(ms int64, sampleRate uint32) (Index, error) {
	if ms < 0 {
		return 0, &ErrNegative{Milliseconds: ms}
	}
	frames := (uint64(ms) * uint64(sampleRate)) / 1000
	return Index(frames), nil
}

// FromSeconds converts a floating-point second duration to a frame Index.
func FromSeconds(seconds float64, sampleRate uint32) Index {
	if seconds < 0 {
		seconds = 0
	}
	return Index(seconds * float64(sampleRate))
}

// ToMilliseconds converts i back to milliseconds at sampleRate.
func (i Index) ToMilliseconds(sampleRate uint32) int64 {
	if sampleRate == 0 {
		return 0
	}
	return int64((uint64(i) * 1000) / uint64(sampleRate))
}

// ToSeconds converts i to a floating-point second count at sampleRate.
func (i Index) ToSeconds(sampleRate uint32) float64 {
	if sampleRate == 0 {
		return 0
	}
	return float64(i) / float64(sampleRate)
}

// Frames returns the underlying frame count as a plain uint64.
func (i Index) Frames() uint64 { return uint64(i) }

// SampleCount returns the interleaved sample count for the given channel count.
func (i Index) SampleCount(channels uint32) uint64 { return uint64(i) * uint64(channels) }

// Min returns the smaller of a and b.
func Min(a, b Index) Index {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Index) Index {
	if a > b {
		return a
	}
	return b
}

// SaturatingSub returns a-b, clamped at 0 instead of wrapping.
func SaturatingSub(a, b Index) Index {
	if b >= a {
		return 0
	}
	return a - b
}
