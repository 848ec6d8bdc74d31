// Package audioio implements the AudioReader boundary: a finite, seekable
// source of interleaved f32 frames at a fixed sample rate and channel
// count. Decoding of compressed containers is an external collaborator
// per spec.md; this package owns raw-PCM playback, a small WAV decoder,
// and header-level OGG Vorbis/Opus detection.
package audioio

// Reader is a finite, seekable source of interleaved f32 PCM frames.
type Reader interface {
	// Read copies up to frameCount frames into output, starting at the
	// reader's current position, and advances position by the number of
	// frames actually copied (which may be less than frameCount at
	// end-of-stream).
	Read(output []float32, frameCount uint64) (uint64, error)

	// Seek moves the read cursor to position, an absolute frame index.
	Seek(position uint64) error

	Position() uint64
	PCMLength() uint64
	SampleRate() uint32
	Channels() uint32

	// AvailableFrames returns pcm_length - position.
	AvailableFrames() uint64
}

// RawPCMReader is a Reader over an in-memory interleaved f32 buffer. It
// backs raw-PCM channel construction and is the terminal form every other
// loader in this package decodes into.
type RawPCMReader struct {
	data       []float32
	sampleRate uint32
	channels   uint32
	pcmLength  uint64
	position   uint64
}

// NewRawPCMReader validates and wraps data as a Reader. channels must be
// in [1,8]; pcmLength must not exceed the frame count data actually holds.
func NewRawPCMReader(data []float32, sampleRate uint32, channels uint32, pcmLength uint64) (*RawPCMReader, error) {
	if channels < 1 || channels > 8 {
		return nil, &ErrInvalidFormat{Reason: "channels must be in [1,8]"}
	}
	actualFrames := uint64(len(data)) / uint64(channels)
	if pcmLength > actualFrames {
		return nil, &ErrInvalidPCMLength{Declared: pcmLength, Actual: actualFrames}
	}
	return &RawPCMReader{
		data:       data,
		sampleRate: sampleRate,
		channels:   channels,
		pcmLength:  pcmLength,
	}, nil
}

func (r *RawPCMReader) Read(output []float32, frameCount uint64) (uint64, error) {
	available := r.AvailableFrames()
	n := frameCount
	if n > available {
		n = available
	}

	expected := int(n) * int(r.channels)
	if len(output) < expected {
		return 0, &ErrBufferTooSmall{Expected: expected, Actual: len(output)}
	}

	start := r.position * uint64(r.channels)
	copy(output[:expected], r.data[start:start+uint64(expected)])
	r.position += n
	return n, nil
}

func (r *RawPCMReader) Seek(position uint64) error {
	if position >= r.pcmLength && r.pcmLength > 0 {
		return &ErrSeekOutOfBounds{Position: position, PCMLength: r.pcmLength}
	}
	r.position = position
	return nil
}

func (r *RawPCMReader) Position() uint64        { return r.position }
func (r *RawPCMReader) PCMLength() uint64       { return r.pcmLength }
func (r *RawPCMReader) SampleRate() uint32      { return r.sampleRate }
func (r *RawPCMReader) Channels() uint32        { return r.channels }
func (r *RawPCMReader) AvailableFrames() uint64 {
	if r.position >= r.pcmLength {
		return 0
	}
	return r.pcmLength - r.position
}
