package fx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestVolume_ClampsOnSet(t *testing.T) {
	g, err := NewVolume(2)
	require.NoError(t, err)

	g.SetVolume(5.0)
	assert.Equal(t, float32(1.0), g.Gain())

	g.SetVolume(-3.0)
	assert.Equal(t, float32(0.0), g.Gain())
}

func TestPanner_ClampsOnSet(t *testing.T) {
	p, err := NewPanner(2)
	require.NoError(t, err)

	p.SetPan(2.0)
	assert.Equal(t, float32(1.0), p.Pan())
}

func TestPanner_CenterIsEqualPower(t *testing.T) {
	p, err := NewPanner(2)
	require.NoError(t, err)

	in := []float32{1.0, 1.0}
	out := make([]float32, 2)
	require.NoError(t, p.Process(in, out, 1))

	assert.InDelta(t, out[0], out[1], 1e-6)
	assert.Greater(t, out[0], float32(0.6))
}

func TestResampler_BypassIsIdentity(t *testing.T) {
	r, err := NewResampler(2, 44100)
	require.NoError(t, err)
	require.True(t, r.BypassMode())

	required, err := r.RequiredInput(1024)
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), required)

	expected, err := r.ExpectedOutput(1024)
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), expected)

	assert.Equal(t, uint64(0), r.InputLatency())
	assert.Equal(t, uint64(0), r.OutputLatency())
}

func TestResampler_RequiredInputProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sourceRate := uint32(rapid.SampledFrom([]int{8000, 22050, 44100, 48000}).Draw(rt, "source"))
		targetRate := uint32(rapid.SampledFrom([]int{8000, 22050, 44100, 48000}).Draw(rt, "target"))
		out := rapid.Uint64Range(1, 8192).Draw(rt, "out")

		r, err := NewResampler(2, sourceRate)
		require.NoError(rt, err)
		r.SetTargetSampleRate(targetRate)

		required, err := r.RequiredInput(out)
		require.NoError(rt, err)

		if sourceRate == targetRate {
			assert.Equal(rt, out, required)
		} else {
			approx := float64(out) * float64(sourceRate) / float64(targetRate)
			assert.InDelta(rt, approx, float64(required), approx*0.1+2)
		}
	})
}

func TestStretcher_RequiredInputExactAtUnityTempo(t *testing.T) {
	s, err := NewStretcher(2, 44100)
	require.NoError(t, err)
	require.True(t, s.TempoBypass())

	required, err := s.RequiredInput(1024)
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), required)
}

func TestStretcher_TempoDoublesRequiredInput(t *testing.T) {
	s, err := NewStretcher(2, 44100)
	require.NoError(t, err)
	require.NoError(t, s.SetTempo(2.0))

	required, err := s.RequiredInput(1024)
	require.NoError(t, err)
	assert.Equal(t, uint64(2048), required)
}

func TestStretcher_FrameAvailableNeverNegativeAfterPreProcess(t *testing.T) {
	s, err := NewStretcher(1, 44100)
	require.NoError(t, err)

	input := make([]float32, 256)
	n, err := s.PreProcess(input, 256)
	require.NoError(t, err)
	assert.Equal(t, uint64(256), n)
	assert.GreaterOrEqual(t, s.FrameAvailable, int64(0))
}
