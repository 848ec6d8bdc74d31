package graph

import "github.com/rcdx/resonance/internal/fx"

// Pullable is the uniform pull interface both Channel and Mixer expose so
// a mixer's child list can hold either variant behind one abstraction,
// per spec.md's "polymorphic children" design note.
type Pullable interface {
	// ReadPCMFrames produces up to frameCount frames into output, using
	// temp as scratch, and returns the number of frames actually
	// produced. listener may be nil.
	ReadPCMFrames(listener *fx.SpatializationListener, output, temp []float32, frameCount uint64) (uint64, error)

	IsPlaying() bool

	// Seek repositions the node's own timeline and returns the resulting
	// position (for mixers, the maximum resumable child position).
	Seek(position uint64) (uint64, error)

	// NaturalLength is reader.pcm_length for a channel, compute_length()
	// for a mixer.
	NaturalLength() uint64

	// SetPlaying propagates a play/stop transition recursively.
	SetPlaying(playing bool)

	RefID() uint64

	// TryLockPull attempts the non-blocking pull a parent mixer/device
	// uses from inside the audio callback.
	TryLockPull(listener *fx.SpatializationListener, output, temp []float32, frameCount uint64) (uint64, error)

	MarkedAsDeleted() bool
}

// ChildEntry schedules a Pullable child on its parent's timeline: active
// iff delay <= parent_position < delay+duration, where a nil Duration
// defaults to the child's NaturalLength at evaluation time.
type ChildEntry struct {
	Node     Pullable
	Delay    *uint64
	Duration *uint64
}

func (c *ChildEntry) delay() uint64 {
	if c.Delay == nil {
		return 0
	}
	return *c.Delay
}

func (c *ChildEntry) duration() uint64 {
	if c.Duration != nil {
		return *c.Duration
	}
	return c.Node.NaturalLength()
}
