package capi

/*
#include <stdint.h>
#include <stdbool.h>
*/
import "C"

import (
	"github.com/rcdx/resonance/internal/builder"
	"github.com/rcdx/resonance/internal/graph"
)

//export ResonanceMixer_new
func ResonanceMixer_new(deviceHandle C.uintptr_t, channels C.uint32_t, sampleRate C.uint32_t) C.uintptr_t {
	mb := builder.NewMixer().Channels(uint32(channels)).SampleRate(uint32(sampleRate))
	if device, ok := handleAs[*graph.Device](deviceHandle); ok {
		mb = mb.AttachTo(device, nil, nil)
	}
	mixer, err := mb.Build()
	if err != nil {
		return 0
	}
	return newHandle(mixer)
}

//export ResonanceMixer_add_channel
func ResonanceMixer_add_channel(mixerHandle, channelHandle C.uintptr_t) C.bool {
	mixer, ok := handleAs[*graph.Mixer](mixerHandle)
	if !ok {
		return C.bool(false)
	}
	channel, ok := handleAs[*graph.Channel](channelHandle)
	if !ok {
		return C.bool(false)
	}
	return C.bool(mixer.AddChannel(channel, nil, nil) == nil)
}

//export ResonanceMixer_set_attribute_f32
func ResonanceMixer_set_attribute_f32(mixerHandle C.uintptr_t, attribute *C.char, value C.float) C.bool {
	mixer, ok := handleAs[*graph.Mixer](mixerHandle)
	if !ok || attribute == nil {
		return C.bool(false)
	}
	attr := graph.AttributeFromName(C.GoString(attribute))
	return C.bool(mixer.SetAttributeF32(attr, float32(value)) == nil)
}

//export ResonanceMixer_free
func ResonanceMixer_free(mixerHandle C.uintptr_t) {
	if mixer, ok := handleAs[*graph.Mixer](mixerHandle); ok {
		mixer.MarkDeleted()
	}
	deleteHandle(mixerHandle)
}
