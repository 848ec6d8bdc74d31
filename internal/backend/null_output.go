package backend

import "sync"

// NullOutput is an in-process OutputDriver that never touches real audio
// hardware: Pull drives the installed Callback synchronously, for tests
// and headless tools (resonance-meter without a sound card, CI).
type NullOutput struct {
	mu       sync.Mutex
	cb       Callback
	channels uint32
	rate     uint32
	period   uint64
	running  bool
}

// NewNullOutput constructs a NullOutput for channelCount/sampleRate with
// the given max period.
func NewNullOutput(channelCount, sampleRate uint32, period uint64) *NullOutput {
	return &NullOutput{channels: channelCount, rate: sampleRate, period: period}
}

func (n *NullOutput) SetCallback(cb Callback) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cb = cb
}

func (n *NullOutput) ChannelCount() uint32 { return n.channels }
func (n *NullOutput) SampleRate() uint32   { return n.rate }
func (n *NullOutput) MaxPeriod() uint64    { return n.period }

func (n *NullOutput) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.running = true
	return nil
}

func (n *NullOutput) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.running = false
	return nil
}

func (n *NullOutput) Close() error { return n.Stop() }

func (n *NullOutput) Enumerate() ([]HardwareInfo, error) {
	return []HardwareInfo{{Name: "null", Kind: DeviceKindPlayback, ID: "0", Context: "null"}}, nil
}

// Pull synchronously invokes the installed callback for frameCount frames
// and returns the produced buffer, for driving a Device from a test.
func (n *NullOutput) Pull(frameCount uint64) []float32 {
	n.mu.Lock()
	cb := n.cb
	n.mu.Unlock()

	output := make([]float32, frameCount*uint64(n.channels))
	if cb != nil {
		invokeCallback(cb, output, frameCount)
	}
	return output
}
