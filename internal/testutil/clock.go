package testutil

import "sync/atomic"

// DeterministicClock is a logical clock that stamps harness trace events
// with seq numbers. It never reads wall-clock time, so a scenario run
// twice produces the same trace.
//
// Thread-safety: DeterministicClock is safe for concurrent use.
type DeterministicClock struct {
	seq atomic.Int64
}

// NewDeterministicClock creates a clock whose first Next returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// NewDeterministicClockAt creates a clock whose first Next returns
// start+1. Used to continue numbering after a previously stored run.
func NewDeterministicClockAt(start int64) *DeterministicClock {
	c := &DeterministicClock{}
	c.seq.Store(start)
	return c
}

// Next increments and returns the next sequence number.
func (c *DeterministicClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *DeterministicClock) Current() int64 {
	return c.seq.Load()
}

// Reset sets the clock back to 0.
func (c *DeterministicClock) Reset() {
	c.seq.Store(0)
}
