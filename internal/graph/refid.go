package graph

import "sync/atomic"

// channelRefID and mixerRefID are process-wide monotonic counters, one per
// kind, per spec.md's "ref_id is unique within its kind across the process
// for the lifetime of the process." Overflow wraps; acceptable for
// practical process lifetimes.
var (
	channelRefID uint64
	mixerRefID   uint64
)

func nextChannelRefID() uint64 { return atomic.AddUint64(&channelRefID, 1) - 1 }
func nextMixerRefID() uint64   { return atomic.AddUint64(&mixerRefID, 1) - 1 }
