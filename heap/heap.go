// Package heap implements min-heap operations on plain slices, ordered
// by a caller-supplied less function. Unlike container/heap there is no
// interface to implement; the slice itself is the heap.
package heap

// Push adds item to the heap.
func Push[T any](h *[]T, item T, less func(a, b T) bool) {
	*h = append(*h, item)
	up(*h, len(*h)-1, less)
}

// Pop removes and returns the smallest element. The heap must not be
// empty.
func Pop[T any](h *[]T, less func(a, b T) bool) T {
	min := (*h)[0]
	last := len(*h) - 1
	(*h)[0] = (*h)[last]
	*h = (*h)[:last]
	if last > 0 {
		down(*h, 0, less)
	}
	return min
}

// Order rearranges an arbitrary slice into heap order. After Order, the
// smallest element is at index 0.
func Order[T any](h []T, less func(a, b T) bool) {
	for i := len(h)/2 - 1; i >= 0; i-- {
		down(h, i, less)
	}
}

// Fix restores heap order after the element at index i changed.
func Fix[T any](h []T, i int, less func(a, b T) bool) {
	down(h, i, less)
	up(h, i, less)
}

func up[T any](h []T, i int, less func(a, b T) bool) {
	for i > 0 {
		p := (i - 1) / 2
		if !less(h[i], h[p]) {
			break
		}
		h[i], h[p] = h[p], h[i]
		i = p
	}
}

func down[T any](h []T, i int, less func(a, b T) bool) {
	for {
		left := 2*i + 1
		if left >= len(h) {
			return
		}
		c := left
		if right := left + 1; right < len(h) && less(h[right], h[left]) {
			c = right
		}
		if !less(h[c], h[i]) {
			return
		}
		h[i], h[c] = h[c], h[i]
		i = c
	}
}
