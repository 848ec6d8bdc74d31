package capi

/*
#include <stdint.h>
#include <stdbool.h>
*/
import "C"

import (
	"unsafe"

	"github.com/rcdx/resonance/internal/builder"
	"github.com/rcdx/resonance/internal/graph"
)

//export ResonanceChannel_new_file
func ResonanceChannel_new_file(deviceHandle C.uintptr_t, file *C.char) C.uintptr_t {
	if file == nil {
		return 0
	}
	cb := builder.NewChannel().File(C.GoString(file))
	if device, ok := handleAs[*graph.Device](deviceHandle); ok {
		cb = cb.AttachTo(device, nil, nil)
	}
	channel, err := cb.Build()
	if err != nil {
		return 0
	}
	return newHandle(channel)
}

//export ResonanceChannel_new_file_buffer
func ResonanceChannel_new_file_buffer(deviceHandle C.uintptr_t, buffer *C.char, size C.size_t) C.uintptr_t {
	if buffer == nil {
		return 0
	}
	buf := C.GoBytes(unsafe.Pointer(buffer), C.int(size))
	cb := builder.NewChannel().FileBuffer(buf)
	if device, ok := handleAs[*graph.Device](deviceHandle); ok {
		cb = cb.AttachTo(device, nil, nil)
	}
	channel, err := cb.Build()
	if err != nil {
		return 0
	}
	return newHandle(channel)
}

//export ResonanceChannel_new_audio_buffer
func ResonanceChannel_new_audio_buffer(
	deviceHandle C.uintptr_t,
	channels C.uint32_t,
	sampleRate C.uint32_t,
	pcmLength C.uint64_t,
	buffer *C.float,
) C.uintptr_t {
	if buffer == nil {
		return 0
	}
	frameLen := int(uint64(pcmLength) * uint64(uint32(channels)))
	data := unsafe.Slice((*float32)(unsafe.Pointer(buffer)), frameLen)

	desc := builder.BufferDesc{
		Data:       data,
		PCMLength:  uint64(pcmLength),
		SampleRate: uint32(sampleRate),
		Channels:   uint32(channels),
	}
	cb := builder.NewChannel().AudioBuffer(desc)
	if device, ok := handleAs[*graph.Device](deviceHandle); ok {
		cb = cb.AttachTo(device, nil, nil)
	}
	channel, err := cb.Build()
	if err != nil {
		return 0
	}
	return newHandle(channel)
}

//export ResonanceChannel_play
func ResonanceChannel_play(channelHandle C.uintptr_t) C.bool {
	channel, ok := handleAs[*graph.Channel](channelHandle)
	if !ok {
		return C.bool(false)
	}
	return C.bool(channel.Play() == nil)
}

//export ResonanceChannel_stop
func ResonanceChannel_stop(channelHandle C.uintptr_t) C.bool {
	channel, ok := handleAs[*graph.Channel](channelHandle)
	if !ok {
		return C.bool(false)
	}
	channel.Stop()
	return C.bool(true)
}

//export ResonanceChannel_is_playing
func ResonanceChannel_is_playing(channelHandle C.uintptr_t) C.bool {
	channel, ok := handleAs[*graph.Channel](channelHandle)
	if !ok {
		return C.bool(false)
	}
	return C.bool(channel.IsPlaying())
}

//export ResonanceChannel_set_attribute_f32
func ResonanceChannel_set_attribute_f32(channelHandle C.uintptr_t, attribute *C.char, value C.float) C.bool {
	channel, ok := handleAs[*graph.Channel](channelHandle)
	if !ok || attribute == nil {
		return C.bool(false)
	}
	attr := graph.AttributeFromName(C.GoString(attribute))
	return C.bool(channel.SetAttributeF32(attr, float32(value)) == nil)
}

//export ResonanceChannel_set_attribute_bool
func ResonanceChannel_set_attribute_bool(channelHandle C.uintptr_t, attribute *C.char, value C.bool) C.bool {
	channel, ok := handleAs[*graph.Channel](channelHandle)
	if !ok || attribute == nil {
		return C.bool(false)
	}
	attr := graph.AttributeFromName(C.GoString(attribute))
	return C.bool(channel.SetAttributeBool(attr, bool(value)) == nil)
}

//export ResonanceChannel_free
func ResonanceChannel_free(channelHandle C.uintptr_t) {
	if channel, ok := handleAs[*graph.Channel](channelHandle); ok {
		channel.MarkDeleted()
	}
	deleteHandle(channelHandle)
}
