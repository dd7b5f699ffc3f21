package sbv

import (
	"fmt"
	"sync"
)

// Pool is an append-only, 1-indexed table of interned long strings.
//
// The pool is shared mutable state for the lifetime of its Session.
// Entries are never evicted; Add deduplicates on exact string equality
// only. The pool's contents are never written to the wire: a StringRef
// in a stream resolves correctly only against the pool instance that
// was populated when the stream was encoded.
type Pool struct {
	mu      sync.RWMutex
	entries []string
	slots   map[string]int // string -> 1-based slot
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{slots: make(map[string]int)}
}

// Add interns s and returns its 1-based slot. If s was interned before,
// the existing slot is returned.
func (p *Pool) Add(s string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if slot, ok := p.slots[s]; ok {
		return slot
	}
	p.entries = append(p.entries, s)
	slot := len(p.entries)
	p.slots[s] = slot
	return slot
}

// Lookup returns the 1-based slot of s, if interned.
func (p *Pool) Lookup(s string) (int, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	slot, ok := p.slots[s]
	return slot, ok
}

// Get returns the string at the given 1-based slot.
func (p *Pool) Get(slot int) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if slot < 1 || slot > len(p.entries) {
		return "", fmt.Errorf("%w: slot %d of %d", ErrInvalidStringRef, slot, len(p.entries))
	}
	return p.entries[slot-1], nil
}

// Len returns the number of interned strings.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
