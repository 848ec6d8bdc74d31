package capi

import (
	"testing"

	"github.com/rcdx/resonance/internal/builder"
	"github.com/rcdx/resonance/internal/graph"
)

func TestHandleAs_RoundTripsAndRejectsWrongType(t *testing.T) {
	device, err := builder.NewDevice().UseNullOutput(true).Build()
	if err != nil {
		t.Fatalf("new test device: %v", err)
	}

	h := newHandle(device)
	defer deleteHandle(h)

	got, ok := handleAs[*graph.Device](h)
	if !ok || got != device {
		t.Fatalf("expected handle to resolve back to the same device")
	}

	if _, ok := handleAs[*graph.Channel](h); ok {
		t.Fatalf("expected a device handle to not resolve as a channel")
	}
}

func TestHandleAs_ZeroHandleRejected(t *testing.T) {
	if _, ok := handleAs[*graph.Device](0); ok {
		t.Fatalf("expected zero handle to never resolve")
	}
}
