// Package ring implements a fixed-capacity circular buffer.
//
// A full Ring overwrites its oldest element on Push, which suits
// rolling-window uses (recent events, last N samples) where dropping
// old data beats blocking the producer. A Ring allocates once, at
// construction, and is not safe for concurrent use.
package ring

import "fmt"

// Ring is a fixed-capacity circular buffer of T.
type Ring[T any] struct {
	buf  []T
	head int // index of the oldest element
	n    int // number of live elements
}

// New creates a ring with the given capacity. Capacity must be positive.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("ring: invalid capacity %d", capacity))
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v. When the ring is full the oldest element is
// overwritten and returned with ok=true.
func (r *Ring[T]) Push(v T) (evicted T, ok bool) {
	if r.n == len(r.buf) {
		evicted, ok = r.buf[r.head], true
		r.buf[r.head] = v
		r.head = r.next(r.head)
		return evicted, ok
	}
	r.buf[(r.head+r.n)%len(r.buf)] = v
	r.n++
	return evicted, false
}

// Pop removes and returns the oldest element.
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	if r.n == 0 {
		return zero, false
	}
	v := r.buf[r.head]
	r.buf[r.head] = zero
	r.head = r.next(r.head)
	r.n--
	return v, true
}

// Peek returns the oldest element without removing it.
func (r *Ring[T]) Peek() (T, bool) {
	if r.n == 0 {
		var zero T
		return zero, false
	}
	return r.buf[r.head], true
}

// Len returns the number of live elements.
func (r *Ring[T]) Len() int { return r.n }

// Cap returns the ring's fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Do calls f on every live element, oldest first.
func (r *Ring[T]) Do(f func(T)) {
	for i := 0; i < r.n; i++ {
		f(r.buf[(r.head+i)%len(r.buf)])
	}
}

func (r *Ring[T]) next(i int) int {
	i++
	if i == len(r.buf) {
		return 0
	}
	return i
}
