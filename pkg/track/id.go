package track

import "sync/atomic"

// globalIDCounter is the source of unique IDs for objects and observers.
var globalIDCounter uint64

// NextID returns the next process-unique identifier.
// IDs are monotonically increasing and never reused. Hosts use it to
// identify their observers.
func NextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
