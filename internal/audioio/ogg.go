package audioio

import "bytes"

// OggCodec identifies the codec carried inside an OGG container, detected
// from the codec tag embedded in the first page rather than by decoding.
type OggCodec int

const (
	OggCodecUnknown OggCodec = iota
	OggCodecVorbis
	OggCodecOpus
)

const (
	oggMagic        = "OggS"
	oggCodecTagOff  = 0x1C
	oggCodecTagLen  = 8
	oggOpusSampleRate = 48000 // Opus streams are always decoded at 48kHz.
)

// SniffOgg reports whether buf begins with an OGG container signature and,
// if so, which codec its first page carries, per the 4-byte "OggS" magic
// plus an 8-byte codec tag at offset 0x1C.
func SniffOgg(buf []byte) (isOgg bool, codec OggCodec) {
	if len(buf) < 4 || !bytes.Equal(buf[:4], []byte(oggMagic)) {
		return false, OggCodecUnknown
	}
	if len(buf) < oggCodecTagOff+oggCodecTagLen {
		return true, OggCodecUnknown
	}

	tag := buf[oggCodecTagOff : oggCodecTagOff+oggCodecTagLen]
	switch {
	case bytes.HasPrefix(tag, []byte("\x01vorbis")):
		return true, OggCodecVorbis
	case bytes.HasPrefix(tag, []byte("OpusHead")):
		return true, OggCodecOpus
	default:
		return true, OggCodecUnknown
	}
}
