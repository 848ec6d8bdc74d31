package backend

import (
	"fmt"
	"math"
	"sync"
	"time"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"
)

// SDLOutput drives an SDL2 audio device in push mode: a dedicated goroutine
// repeatedly pulls one period from the installed Callback and feeds it to
// the device with sdl.QueueAudio, pacing itself against
// sdl.GetQueuedAudioSize so it never queues more than a couple of periods
// ahead. SDL2's own device callback mechanism requires an exported C
// function pointer that go-sdl2 does not expose as a plain Go closure, so
// this mirrors the queue-based approach already used to drive the sample
// output in this codebase rather than depending on that binding.
type SDLOutput struct {
	mu       sync.Mutex
	dev      sdl.AudioDeviceID
	cb       Callback
	channels uint32
	rate     uint32
	period   uint64

	stop    chan struct{}
	wg      sync.WaitGroup
	running bool
}

// NewSDLOutput opens an SDL2 playback device for channelCount/sampleRate.
// period bounds the frame count requested from Callback each iteration.
func NewSDLOutput(channelCount uint32, sampleRate uint32, period uint64) (*SDLOutput, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("backend: sdl audio init: %w", err)
	}

	spec := sdl.AudioSpec{
		Freq:     int32(sampleRate),
		Format:   sdl.AUDIO_F32,
		Channels: uint8(channelCount),
		Samples:  uint16(period),
	}

	dev, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("backend: open audio device: %w", err)
	}

	return &SDLOutput{
		dev:      dev,
		channels: channelCount,
		rate:     sampleRate,
		period:   period,
	}, nil
}

func (s *SDLOutput) SetCallback(cb Callback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cb = cb
}

func (s *SDLOutput) ChannelCount() uint32 { return s.channels }
func (s *SDLOutput) SampleRate() uint32   { return s.rate }
func (s *SDLOutput) MaxPeriod() uint64    { return s.period }

// Start unpauses the device and begins the feeder goroutine.
func (s *SDLOutput) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stop = make(chan struct{})
	s.mu.Unlock()

	sdl.PauseAudioDevice(s.dev, false)

	s.wg.Add(1)
	go s.feed()
	return nil
}

// Stop pauses the device and halts the feeder goroutine.
func (s *SDLOutput) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
	sdl.PauseAudioDevice(s.dev, true)
	return nil
}

// Close stops the feeder if running and releases the device.
func (s *SDLOutput) Close() error {
	_ = s.Stop()
	sdl.CloseAudioDevice(s.dev)
	return nil
}

func (s *SDLOutput) feed() {
	defer s.wg.Done()

	output := make([]float32, s.period*uint64(s.channels))
	periodDuration := time.Duration(float64(s.period) / float64(s.rate) * float64(time.Second))
	maxQueuedBytes := uint32(s.period) * uint32(s.channels) * 4 * 3

	ticker := time.NewTicker(periodDuration)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		cb := s.cb
		s.mu.Unlock()
		if cb == nil {
			continue
		}

		if sdl.GetQueuedAudioSize(s.dev) > maxQueuedBytes {
			continue
		}

		invokeCallback(cb, output, s.period)
		for i, v := range output {
			output[i] = clampSample(v)
		}
		if err := sdl.QueueAudio(s.dev, float32SliceToBytes(output)); err != nil {
			continue
		}
	}
}

// Enumerate lists SDL2 playback devices.
func (s *SDLOutput) Enumerate() ([]HardwareInfo, error) {
	count, err := sdl.GetNumAudioDevices(false)
	if err != nil {
		return nil, fmt.Errorf("backend: enumerate audio devices: %w", err)
	}

	infos := make([]HardwareInfo, 0, count)
	for i := 0; i < count; i++ {
		name, err := sdl.GetAudioDeviceName(i, false)
		if err != nil {
			continue
		}
		infos = append(infos, HardwareInfo{
			Name:    name,
			Kind:    DeviceKindPlayback,
			ID:      fmt.Sprintf("%d", i),
			Context: "sdl2",
		})
	}
	return infos, nil
}

func float32SliceToBytes(samples []float32) []byte {
	if len(samples) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), len(samples)*4)
}

// clampSample clips a single sample to [-1,1]; kept here because the
// output bytes written directly to the device bypass the graph's own
// clamp when a caller feeds SDLOutput outside of a Device.
func clampSample(v float32) float32 {
	if math.IsNaN(float64(v)) {
		return 0
	}
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
