// Package memory provides the arena-style allocator behind the book's
// order records. Handles (pointers) stay stable for an order's whole
// lifetime; recycling one record never moves or invalidates another.
package memory

import "sync"

// Pool is a typed object pool. The book allocates every order record
// through one of these so steady-state churn (insert, cancel, insert)
// recycles memory instead of pressuring the GC.
type Pool[T any] struct {
	p *sync.Pool
}

func NewPool[T any](ctor func() *T) *Pool[T] {
	return &Pool[T]{
		p: &sync.Pool{
			New: func() any { return ctor() },
		},
	}
}

// Get returns a pooled object. Callers must fully reinitialize it.
func (p *Pool[T]) Get() *T {
	return p.p.Get().(*T)
}

// Put recycles an object. Callers must have cleared any references it
// holds first; the pool does not zero it.
func (p *Pool[T]) Put(v *T) {
	p.p.Put(v)
}
