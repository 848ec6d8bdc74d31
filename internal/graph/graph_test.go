package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcdx/resonance/internal/backend"
)

func constantBuffer(frames uint64, channels uint32, value float32) []float32 {
	buf := make([]float32, frames*uint64(channels))
	for i := range buf {
		buf[i] = value
	}
	return buf
}

func TestChannel_PlaysThenStopsAtEndOfStream(t *testing.T) {
	data := constantBuffer(100, 2, 0.5)
	c, err := NewChannelFromRawBuffer(data, 100, 44100, 2)
	require.NoError(t, err)

	require.NoError(t, c.Play())
	assert.True(t, c.IsPlaying())

	output := make([]float32, 200*2)
	temp := make([]float32, 200*2)

	framesRead, err := c.ReadPCMFrames(nil, output, temp, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), framesRead)
	assert.False(t, c.IsPlaying(), "channel should stop at end of a non-looping stream")
}

func TestChannel_LoopingRestartsAtZero(t *testing.T) {
	data := constantBuffer(10, 1, 1.0)
	c, err := NewChannelFromRawBuffer(data, 10, 44100, 1)
	require.NoError(t, err)
	c.SetLooping(true)
	require.NoError(t, c.Play())

	output := make([]float32, 10)
	temp := make([]float32, 10)

	_, err = c.ReadPCMFrames(nil, output, temp, 10)
	require.NoError(t, err)
	assert.True(t, c.IsPlaying(), "a looping channel never stops itself")
	assert.Equal(t, uint64(0), c.reader.Position(), "the reader restarts at frame 0")
}

func TestChannel_SeekOutOfBoundsRejected(t *testing.T) {
	data := constantBuffer(10, 1, 0)
	c, err := NewChannelFromRawBuffer(data, 10, 44100, 1)
	require.NoError(t, err)

	_, err = c.Seek(10)
	var seekErr *ErrSeekOutOfBounds
	assert.ErrorAs(t, err, &seekErr)
}

func TestChannel_MarkDeletedStopsPlayback(t *testing.T) {
	data := constantBuffer(10, 1, 0)
	c, err := NewChannelFromRawBuffer(data, 10, 44100, 1)
	require.NoError(t, err)
	require.NoError(t, c.Play())

	c.MarkDeleted()
	assert.False(t, c.IsPlaying())
	assert.True(t, c.MarkedAsDeleted())
}

func TestChannel_ReadSimpleRejectsOversizedRequest(t *testing.T) {
	data := constantBuffer(10000, 1, 0)
	c, err := NewChannelFromRawBuffer(data, 10000, 44100, 1)
	require.NoError(t, err)
	require.NoError(t, c.Play())

	_, err = c.ReadSimple(readSimpleMaxFrames + 1)
	var tooLarge *ErrPCMLengthTooLarge
	assert.ErrorAs(t, err, &tooLarge)
}

func TestMixer_MixesTwoChildrenAdditively(t *testing.T) {
	m, err := NewMixer(1, 44100)
	require.NoError(t, err)

	a, err := NewChannelFromRawBuffer(constantBuffer(100, 1, 0.25), 100, 44100, 1)
	require.NoError(t, err)
	b, err := NewChannelFromRawBuffer(constantBuffer(100, 1, 0.25), 100, 44100, 1)
	require.NoError(t, err)

	require.NoError(t, m.AddChannel(a, nil, nil))
	require.NoError(t, m.AddChannel(b, nil, nil))
	require.NoError(t, a.Play())
	require.NoError(t, b.Play())
	require.NoError(t, m.Play())

	output := make([]float32, 50)
	temp := make([]float32, 50)

	frames, err := m.ReadPCMFrames(nil, output, temp, 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), frames, "a mixer always claims to produce the full request")

	// Both children at 0.25 summed then divided by mixed_source_count (2)
	// reproduces the single-child level, not double it.
	for i, v := range output {
		assert.InDelta(t, 0.25, v, 1e-4, "sample %d", i)
	}
}

func TestMixer_DuplicateChannelRejected(t *testing.T) {
	m, err := NewMixer(1, 44100)
	require.NoError(t, err)
	c, err := NewChannelFromRawBuffer(constantBuffer(10, 1, 0), 10, 44100, 1)
	require.NoError(t, err)

	require.NoError(t, m.AddChannel(c, nil, nil))
	err = m.AddChannel(c, nil, nil)
	var dup *ErrChannelAlreadyExists
	assert.ErrorAs(t, err, &dup)
}

func TestMixer_DelayedChildStaysSilentUntilItsWindow(t *testing.T) {
	m, err := NewMixer(1, 44100)
	require.NoError(t, err)

	delay := uint64(20)
	c, err := NewChannelFromRawBuffer(constantBuffer(10, 1, 1.0), 10, 44100, 1)
	require.NoError(t, err)
	require.NoError(t, m.AddChannel(c, &delay, nil))
	require.NoError(t, c.Play())
	require.NoError(t, m.Play())

	output := make([]float32, 20)
	temp := make([]float32, 20)

	_, err = m.ReadPCMFrames(nil, output, temp, 20)
	require.NoError(t, err)
	for i, v := range output {
		assert.Equal(t, float32(0), v, "sample %d should be silent before the child's delay window", i)
	}
}

func TestMixer_IsInfiniteWhenChildLoops(t *testing.T) {
	m, err := NewMixer(1, 44100)
	require.NoError(t, err)
	c, err := NewChannelFromRawBuffer(constantBuffer(10, 1, 0), 10, 44100, 1)
	require.NoError(t, err)
	c.SetLooping(true)

	require.NoError(t, m.AddChannel(c, nil, nil))
	assert.True(t, m.IsInfinite())
}

func TestDevice_ProcessMixesAttachedChannelThroughNullOutput(t *testing.T) {
	out := backend.NewNullOutput(1, 44100, 64)
	d, err := NewDevice(out, 1, 44100, 64)
	require.NoError(t, err)

	c, err := NewChannelFromRawBuffer(constantBuffer(64, 1, 0.5), 64, 44100, 1)
	require.NoError(t, err)
	require.NoError(t, d.AddChannel(c, nil, nil))
	require.NoError(t, c.Play())

	output := out.Pull(64)
	require.Len(t, output, 64)
	for i, v := range output {
		assert.InDelta(t, 0.5, v, 1e-3, "sample %d", i)
	}
	assert.False(t, c.IsPlaying(), "a non-looping channel should exhaust after one full pull")
}

func TestDevice_ProcessWithNoChildrenProducesSilence(t *testing.T) {
	out := backend.NewNullOutput(2, 44100, 32)
	_, err := NewDevice(out, 2, 44100, 32)
	require.NoError(t, err)

	output := out.Pull(32)
	for i, v := range output {
		assert.Equal(t, float32(0), v, "sample %d", i)
	}
}

func TestDevice_DSPCallbackObservesMixedOutput(t *testing.T) {
	out := backend.NewNullOutput(1, 44100, 16)
	d, err := NewDevice(out, 1, 44100, 16)
	require.NoError(t, err)

	c, err := NewChannelFromRawBuffer(constantBuffer(16, 1, 1.0), 16, 44100, 1)
	require.NoError(t, err)
	require.NoError(t, d.AddChannel(c, nil, nil))
	require.NoError(t, c.Play())

	var observed []float32
	d.SetDSPCallback(func(buf []float32, frameCount uint64) {
		observed = append([]float32(nil), buf...)
	})

	out.Pull(16)
	require.Len(t, observed, 16)
	for i, v := range observed {
		assert.InDelta(t, 1.0, v, 1e-3, "sample %d", i)
	}
}

func TestMixer_ComputeLengthIsMaxOfDelayPlusDuration(t *testing.T) {
	m, err := NewMixer(1, 44100)
	require.NoError(t, err)

	a, err := NewChannelFromRawBuffer(constantBuffer(10, 1, 0), 10, 44100, 1)
	require.NoError(t, err)
	b, err := NewChannelFromRawBuffer(constantBuffer(10, 1, 0), 10, 44100, 1)
	require.NoError(t, err)

	delayB := uint64(100)
	require.NoError(t, m.AddChannel(a, nil, nil))
	require.NoError(t, m.AddChannel(b, &delayB, nil))

	assert.Equal(t, uint64(110), m.NaturalLength())
}
