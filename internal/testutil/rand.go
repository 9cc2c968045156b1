package testutil

import "sync"

// StubRand replays queued values. Once a queue is empty Float64 returns
// Fallback and IntN returns 0.
type StubRand struct {
	mu       sync.Mutex
	floats   []float64
	ints     []int
	Fallback float64
}

// NewStubRand returns a StubRand whose Float64 falls back to 0.99, so
// probability checks fail unless a value is queued.
func NewStubRand() *StubRand {
	return &StubRand{Fallback: 0.99}
}

// QueueFloats appends values returned by Float64, in order.
func (r *StubRand) QueueFloats(v ...float64) *StubRand {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.floats = append(r.floats, v...)
	return r
}

// QueueInts appends values returned by IntN, in order. Each is reduced
// modulo n when returned.
func (r *StubRand) QueueInts(v ...int) *StubRand {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ints = append(r.ints, v...)
	return r
}

func (r *StubRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.floats) == 0 {
		return r.Fallback
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *StubRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}
