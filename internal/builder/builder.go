// Package builder provides fluent, validate-then-attach constructors for
// the graph's non-realtime construction surface: a channel, mixer, sample,
// or device is fully configured through chained setter calls and only
// takes effect — decoding a file, opening a backend, attaching to a
// parent — on a final Build call.
package builder

// BufferDesc describes an in-memory PCM buffer used to construct a
// channel or sample directly from already-decoded floating-point frames,
// bypassing internal/audioio's file decoders entirely.
type BufferDesc struct {
	Data       []float32
	PCMLength  uint64
	SampleRate uint32
	Channels   uint32
}
