package audioio

import "os"

// Load opens filePath and decodes it into a Reader, dispatching on the
// container signature found in the file's header.
func Load(filePath string) (Reader, error) {
	buf, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &ErrFileNotFound{Path: filePath, Err: err}
	}
	return LoadFileBuffer(buf)
}

// LoadFileBuffer decodes an in-memory file buffer into a Reader. OGG
// containers are detected by signature and report their codec (full OGG
// Vorbis/Opus decoding is an external collaborator per spec.md); anything
// else is handed to the generic WAV decoder.
func LoadFileBuffer(buf []byte) (Reader, error) {
	if isOgg, codec := SniffOgg(buf); isOgg {
		switch codec {
		case OggCodecOpus:
			return nil, &ErrInvalidFormat{Reason: "OGG Opus decoding requires an external codec collaborator (detected, not decoded)"}
		case OggCodecVorbis:
			return nil, &ErrInvalidFormat{Reason: "OGG Vorbis decoding requires an external codec collaborator (detected, not decoded)"}
		default:
			return nil, &ErrInvalidFormat{Reason: "unrecognized OGG codec tag"}
		}
	}

	data, sampleRate, channels, err := decodeWAV(buf)
	if err != nil {
		return nil, err
	}

	pcmLength := uint64(len(data)) / uint64(channels)
	return NewRawPCMReader(data, sampleRate, channels, pcmLength)
}

// LoadAudioBuffer wraps a caller-decoded interleaved f32 buffer directly,
// the path AudioSample and raw-PCM channel construction use.
func LoadAudioBuffer(data []float32, sampleRate uint32, channels uint32, pcmLength uint64) (Reader, error) {
	return NewRawPCMReader(data, sampleRate, channels, pcmLength)
}
