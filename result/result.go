// Package result provides a small result type carrying either a value
// or an error, for APIs that hand outcomes around as data (queues,
// callbacks, batch reports) rather than returning them immediately.
package result

import "fmt"

// Result holds either a value of T or an error, never both.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err wraps a failure.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// IsOk reports whether the result holds a value.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Get returns the value and error in Go's usual two-value shape.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// Err returns the held error, nil on success.
func (r Result[T]) Err() error {
	return r.err
}

// Must returns the value and panics on a failed result.
func (r Result[T]) Must() T {
	if r.err != nil {
		panic(fmt.Sprintf("result: Must on error: %v", r.err))
	}
	return r.value
}

// OrElse returns the value, or def when the result failed.
func (r Result[T]) OrElse(def T) T {
	if r.err != nil {
		return def
	}
	return r.value
}

// Map applies f to a successful result's value; errors pass through
// untouched.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return Ok(f(r.value))
}
