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

//export ResonanceDevice_new
func ResonanceDevice_new(channels C.uint32_t, sampleRate C.uint32_t) C.uintptr_t {
	device, err := builder.NewDevice().
		Channels(uint32(channels)).
		SampleRate(uint32(sampleRate)).
		Build()
	if err != nil {
		return 0
	}
	return newHandle(device)
}

//export ResonanceDevice_start
func ResonanceDevice_start(deviceHandle C.uintptr_t) C.bool {
	device, ok := handleAs[*graph.Device](deviceHandle)
	if !ok {
		return C.bool(false)
	}
	return C.bool(device.Start() == nil)
}

//export ResonanceDevice_stop
func ResonanceDevice_stop(deviceHandle C.uintptr_t) C.bool {
	device, ok := handleAs[*graph.Device](deviceHandle)
	if !ok {
		return C.bool(false)
	}
	return C.bool(device.Stop() == nil)
}

//export ResonanceDevice_add_channel
func ResonanceDevice_add_channel(deviceHandle, channelHandle C.uintptr_t) C.bool {
	device, ok := handleAs[*graph.Device](deviceHandle)
	if !ok {
		return C.bool(false)
	}
	channel, ok := handleAs[*graph.Channel](channelHandle)
	if !ok {
		return C.bool(false)
	}
	return C.bool(device.AddChannel(channel, nil, nil) == nil)
}

//export ResonanceDevice_add_mixer
func ResonanceDevice_add_mixer(deviceHandle, mixerHandle C.uintptr_t) C.bool {
	device, ok := handleAs[*graph.Device](deviceHandle)
	if !ok {
		return C.bool(false)
	}
	mixer, ok := handleAs[*graph.Mixer](mixerHandle)
	if !ok {
		return C.bool(false)
	}
	return C.bool(device.AddMixer(mixer, nil, nil) == nil)
}

//export ResonanceDevice_remove_channel_by_ref
func ResonanceDevice_remove_channel_by_ref(deviceHandle C.uintptr_t, refID C.uint64_t) C.bool {
	device, ok := handleAs[*graph.Device](deviceHandle)
	if !ok {
		return C.bool(false)
	}
	return C.bool(device.RemoveChannel(uint64(refID)) == nil)
}

//export ResonanceDevice_remove_mixer_by_ref
func ResonanceDevice_remove_mixer_by_ref(deviceHandle C.uintptr_t, refID C.uint64_t) C.bool {
	device, ok := handleAs[*graph.Device](deviceHandle)
	if !ok {
		return C.bool(false)
	}
	return C.bool(device.RemoveMixer(uint64(refID)) == nil)
}

//export ResonanceDevice_set_attribute_f32
func ResonanceDevice_set_attribute_f32(deviceHandle C.uintptr_t, attribute *C.char, value C.float) C.bool {
	device, ok := handleAs[*graph.Device](deviceHandle)
	if !ok || attribute == nil {
		return C.bool(false)
	}
	attr := graph.AttributeFromName(C.GoString(attribute))
	return C.bool(device.SetAttributeF32(attr, float32(value)) == nil)
}

//export ResonanceDevice_set_attribute_bool
func ResonanceDevice_set_attribute_bool(deviceHandle C.uintptr_t, attribute *C.char, value C.bool) C.bool {
	device, ok := handleAs[*graph.Device](deviceHandle)
	if !ok || attribute == nil {
		return C.bool(false)
	}
	attr := graph.AttributeFromName(C.GoString(attribute))
	return C.bool(device.SetAttributeBool(attr, bool(value)) == nil)
}

//export ResonanceDevice_free
func ResonanceDevice_free(deviceHandle C.uintptr_t) {
	if device, ok := handleAs[*graph.Device](deviceHandle); ok {
		_ = device.Stop()
	}
	deleteHandle(deviceHandle)
}
