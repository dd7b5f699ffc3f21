// Package tracker keeps a time-ordered window of input events and
// detects sequence gestures (a series of input codes arriving in order
// within a time window).
//
// Events live in a min-heap keyed on timestamp, so recording is O(log n)
// regardless of arrival order and expiry always trims the oldest events
// first. A Tracker is not safe for concurrent use; input handling is
// expected to run on one goroutine.
package tracker

import (
	"slices"
	"time"

	"github.com/Neumenon/skein/heap"
)

// Code identifies one kind of input event (a key, button or axis edge).
type Code uint32

// Event is one timestamped input.
type Event struct {
	Code Code
	Time time.Time
}

func eventBefore(a, b Event) bool {
	return a.Time.Before(b.Time)
}

// Tracker accumulates input events for gesture detection.
type Tracker struct {
	events []Event
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{}
}

// Record adds one event. Arrival order need not match timestamp order.
func (t *Tracker) Record(ev Event) {
	heap.Push(&t.events, ev, eventBefore)
}

// Len returns the number of recorded events.
func (t *Tracker) Len() int {
	return len(t.events)
}

// ExpireBefore drops every event with a timestamp before cutoff and
// returns how many were dropped.
func (t *Tracker) ExpireBefore(cutoff time.Time) int {
	dropped := 0
	for len(t.events) > 0 && t.events[0].Time.Before(cutoff) {
		heap.Pop(&t.events, eventBefore)
		dropped++
	}
	return dropped
}

// Detect reports whether the codes of seq occurred in order, not
// necessarily adjacently, with the whole sequence inside window
// (last match time minus first match time). An empty seq never matches.
func (t *Tracker) Detect(seq []Code, window time.Duration) bool {
	if len(seq) == 0 || len(seq) > len(t.events) {
		return false
	}
	evs := t.ordered()

	// Try each occurrence of the first code as a start; later starts can
	// succeed where an earlier one overruns the window.
	for i := range evs {
		if evs[i].Code != seq[0] {
			continue
		}
		matched := 1
		last := evs[i].Time
		for j := i + 1; j < len(evs) && matched < len(seq); j++ {
			if evs[j].Code == seq[matched] {
				last = evs[j].Time
				matched++
			}
		}
		if matched == len(seq) && last.Sub(evs[i].Time) <= window {
			return true
		}
	}
	return false
}

// ordered returns the events sorted by timestamp, leaving the heap
// untouched.
func (t *Tracker) ordered() []Event {
	evs := slices.Clone(t.events)
	out := make([]Event, 0, len(evs))
	for len(evs) > 0 {
		out = append(out, heap.Pop(&evs, eventBefore))
	}
	return out
}
