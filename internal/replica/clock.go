package replica

import "sync/atomic"

// Clock is the monotonic version counter of one replica. Every local update
// is stamped with a fresh version so identifier allocation never reuses a
// (site, version) pair.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// though the replica's single-writer contract means one goroutine normally
// calls Next().
type Clock struct {
	ver atomic.Uint64
}

// NewClock creates a clock starting at 0; the first Next() returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming from a specific version, for hosts
// that restore a replica from a snapshot.
func NewClockAt(start uint64) *Clock {
	c := &Clock{}
	c.ver.Store(start)
	return c
}

// Next returns the next version and advances the clock. Each call returns
// a unique, strictly increasing value.
func (c *Clock) Next() uint64 {
	return c.ver.Add(1)
}

// Current returns the current version without advancing.
func (c *Clock) Current() uint64 {
	return c.ver.Load()
}
