package audioio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffOgg_Vorbis(t *testing.T) {
	buf := make([]byte, 64)
	copy(buf, "OggS")
	copy(buf[0x1C:], "\x01vorbis")

	isOgg, codec := SniffOgg(buf)
	assert.True(t, isOgg)
	assert.Equal(t, OggCodecVorbis, codec)
}

func TestSniffOgg_Opus(t *testing.T) {
	buf := make([]byte, 64)
	copy(buf, "OggS")
	copy(buf[0x1C:], "OpusHead")

	isOgg, codec := SniffOgg(buf)
	assert.True(t, isOgg)
	assert.Equal(t, OggCodecOpus, codec)
}

func TestSniffOgg_NotOgg(t *testing.T) {
	isOgg, _ := SniffOgg([]byte("RIFF1234WAVEfmt "))
	assert.False(t, isOgg)
}

func TestRawPCMReader_ReadAdvancesPositionByExactlyN(t *testing.T) {
	data := make([]float32, 100*2)
	r, err := NewRawPCMReader(data, 44100, 2, 100)
	require.NoError(t, err)

	out := make([]float32, 20*2)
	n, err := r.Read(out, 20)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), n)
	assert.Equal(t, uint64(20), r.Position())
}

func TestRawPCMReader_ReadClampsAtEndOfStream(t *testing.T) {
	data := make([]float32, 10*2)
	r, err := NewRawPCMReader(data, 44100, 2, 10)
	require.NoError(t, err)

	out := make([]float32, 20*2)
	n, err := r.Read(out, 20)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), n)
}

func TestRawPCMReader_SeekOutOfBounds(t *testing.T) {
	data := make([]float32, 10*2)
	r, err := NewRawPCMReader(data, 44100, 2, 10)
	require.NoError(t, err)

	err = r.Seek(10)
	var oob *ErrSeekOutOfBounds
	require.ErrorAs(t, err, &oob)
}
