// Package sequence issues strictly monotonic counters. The book draws
// order ids and arrival ranks from these rather than from the clock:
// a logical counter is deterministic under replay and immune to
// coarse clock resolution, which wall-time tie-breaking is not.
package sequence

import "sync/atomic"

// Sequencer generates strictly increasing sequence values.
type Sequencer struct {
	last atomic.Uint64
}

// New creates a sequencer that will issue start+1 next.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.last.Store(start)
	return s
}

// Next returns the next value.
func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

// Current returns the last issued value.
func (s *Sequencer) Current() uint64 {
	return s.last.Load()
}

// Reset rewinds or fast-forwards the counter. Only replay and
// snapshot loading may call this.
func (s *Sequencer) Reset(v uint64) {
	s.last.Store(v)
}
