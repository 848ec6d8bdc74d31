// Package backend adapts the mixing graph's pull interface onto a
// concrete audio output device.
package backend

import "github.com/rcdx/resonance/internal/debug"

// log is the backend package's diagnostic sink; SetLogger points it at a
// host-configured instance, mirroring internal/graph's package-level log.
var log = debug.NewLogger(nil, 1000)

// SetLogger replaces the package-wide diagnostic sink used when a
// callback panics.
func SetLogger(l *debug.Logger) {
	if l != nil {
		log = l
	}
}

// invokeCallback runs cb under panic recovery: a panic inside the caller's
// pull chain must not unwind across the backend's own audio thread, the
// same boundary internal/graph's recoverPull protects one layer up the
// call stack. On panic, output is left/zeroed silent and the panic is
// logged rather than propagated.
func invokeCallback(cb Callback, output []float32, frameCount uint64) {
	defer func() {
		if r := recover(); r != nil {
			log.Log(debug.ComponentBackend, debug.LogLevelError, "recovered panic in output callback", "panic", r)
			for i := range output {
				output[i] = 0
			}
		}
	}()
	cb(output, frameCount)
}

// DeviceKind distinguishes playback devices by transport.
type DeviceKind int

const (
	DeviceKindUnknown DeviceKind = iota
	DeviceKindPlayback
	DeviceKindCapture
)

// HardwareInfo describes one enumerated device as reported by a backend.
type HardwareInfo struct {
	Name    string
	Kind    DeviceKind
	ID      string
	Context string
}

// Callback is the pull function a backend repeatedly invokes from its own
// audio thread: fill output (channelCount*frameCount floats, interleaved)
// with frameCount frames.
type Callback func(output []float32, frameCount uint64)

// OutputDriver is the seam between the mixing graph and a concrete audio
// backend (SDL2, a null/offline sink for tests, etc). A Device never talks
// to SDL directly; it only calls these methods.
type OutputDriver interface {
	// SetCallback installs the pull function the backend's audio thread
	// invokes once per period. Must be called before Start.
	SetCallback(cb Callback)

	Start() error
	Stop() error
	Close() error

	Enumerate() ([]HardwareInfo, error)

	ChannelCount() uint32
	SampleRate() uint32
	MaxPeriod() uint64
}
