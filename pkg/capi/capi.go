// Package capi exports a C ABI over internal/graph and internal/builder:
// create/use/free entry points callable from C or any other FFI-capable
// language, mirroring original_source/src/capi.rs's opaque
// pointer-per-object surface. Go's cgo rules forbid handing C code a raw
// Go pointer it can hold onto across calls (the pointee may move or be
// collected), so every object here is addressed by a runtime/cgo.Handle
// packed into a C.uintptr_t instead of the Rust original's raw
// Box::into_raw pointer — the same "opaque handle, free exactly once"
// contract, expressed the way cgo requires.
package capi

/*
#include <stdint.h>
#include <stdbool.h>
*/
import "C"

import "runtime/cgo"

// handleAs resolves h to a value of type T, reporting false for a zero
// handle or one whose stored value is not a T.
func handleAs[T any](h C.uintptr_t) (T, bool) {
	var zero T
	if h == 0 {
		return zero, false
	}
	v, ok := cgo.Handle(h).Value().(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// newHandle packs v into a fresh cgo.Handle, returned as the opaque
// C.uintptr_t callers pass back into every other function in this
// package.
func newHandle(v any) C.uintptr_t {
	return C.uintptr_t(cgo.NewHandle(v))
}

// deleteHandle releases the handle's registry slot. It does not by
// itself stop or close whatever the handle pointed to — callers that
// need that (ResonanceDevice_free stopping playback, for instance) do it
// before calling this.
func deleteHandle(h C.uintptr_t) {
	if h == 0 {
		return
	}
	cgo.Handle(h).Delete()
}
