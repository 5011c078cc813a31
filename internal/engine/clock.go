package engine

import "sync/atomic"

// Clock is a monotonic logical clock stamping every firing with a strictly
// increasing sequence number.
//
// Sequence numbers make the reduction order explicit: trace output, journal
// rows, and replayed diagnostics all refer to the same seq. There is no
// wall-clock involvement, so a re-run of the same program produces the same
// stamps.
//
// Thread-safety: Clock uses atomics and is safe for concurrent use, although
// the engine's single-writer loop means only one goroutine calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}
