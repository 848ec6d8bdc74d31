package audioio

import (
	"encoding/binary"
	"math"
)

// decodeWAV parses a canonical PCM WAV file (16-bit or 32-bit float) into
// an interleaved f32 buffer. It is the "generic decoder" spec.md refers
// to for anything that isn't OGG: a small, real decoder rather than a
// stub, since WAV framing is simple enough to own directly instead of
// reaching for an external container parser.
func decodeWAV(buf []byte) (data []float32, sampleRate uint32, channels uint32, err error) {
	if len(buf) < 44 || string(buf[0:4]) != "RIFF" || string(buf[8:12]) != "WAVE" {
		return nil, 0, 0, &ErrInvalidFormat{Reason: "not a RIFF/WAVE file"}
	}

	var (
		audioFormat   uint16
		bitsPerSample uint16
		pcmData       []byte
		foundFmt      bool
		foundData     bool
	)

	offset := 12
	for offset+8 <= len(buf) {
		chunkID := string(buf[offset : offset+4])
		chunkSize := binary.LittleEndian.Uint32(buf[offset+4 : offset+8])
		bodyStart := offset + 8
		bodyEnd := bodyStart + int(chunkSize)
		if bodyEnd > len(buf) {
			bodyEnd = len(buf)
		}

		switch chunkID {
		case "fmt ":
			if bodyEnd-bodyStart < 16 {
				return nil, 0, 0, &ErrInvalidFormat{Reason: "fmt chunk too small"}
			}
			audioFormat = binary.LittleEndian.Uint16(buf[bodyStart : bodyStart+2])
			channels = uint32(binary.LittleEndian.Uint16(buf[bodyStart+2 : bodyStart+4]))
			sampleRate = binary.LittleEndian.Uint32(buf[bodyStart+4 : bodyStart+8])
			bitsPerSample = binary.LittleEndian.Uint16(buf[bodyStart+14 : bodyStart+16])
			foundFmt = true
		case "data":
			pcmData = buf[bodyStart:bodyEnd]
			foundData = true
		}

		offset = bodyEnd
		if chunkSize%2 == 1 {
			offset++
		}
	}

	if !foundFmt || !foundData {
		return nil, 0, 0, &ErrInvalidFormat{Reason: "missing fmt or data chunk"}
	}
	if channels < 1 || channels > 8 {
		return nil, 0, 0, &ErrInvalidFormat{Reason: "channel count out of range"}
	}

	switch {
	case audioFormat == 1 && bitsPerSample == 16:
		n := len(pcmData) / 2
		data = make([]float32, n)
		for i := 0; i < n; i++ {
			v := int16(binary.LittleEndian.Uint16(pcmData[i*2 : i*2+2]))
			data[i] = float32(v) / 32768.0
		}
	case audioFormat == 3 && bitsPerSample == 32:
		n := len(pcmData) / 4
		data = make([]float32, n)
		for i := 0; i < n; i++ {
			bits := binary.LittleEndian.Uint32(pcmData[i*4 : i*4+4])
			data[i] = math.Float32frombits(bits)
		}
	default:
		return nil, 0, 0, &ErrInvalidFormat{Reason: "unsupported WAV sample format"}
	}

	return data, sampleRate, channels, nil
}
