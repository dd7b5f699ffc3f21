// Package emitter implements a topic-based publish/subscribe event
// emitter. Subscribers for a topic live on a linked list; published
// events are dispatched to handlers by a fixed pool of worker
// goroutines, so a slow handler delays other handlers but never the
// publisher's goroutine beyond queue admission.
package emitter

import (
	"container/list"
	"sync"

	"github.com/google/uuid"
)

// Handler receives events published on a subscribed topic.
type Handler func(topic string, payload any)

// Token identifies one subscription. It is returned by Subscribe and
// accepted by Unsubscribe.
type Token struct {
	topic string
	id    uuid.UUID
}

// Topic returns the topic the token subscribes to.
func (t Token) Topic() string { return t.topic }

// String returns the subscription's unique id, for logs.
func (t Token) String() string { return t.topic + "/" + t.id.String() }

type subscriber struct {
	id uuid.UUID
	fn Handler
}

// topicSubs holds one topic's subscribers: the list preserves
// subscription order for dispatch, the index gives O(1) unsubscribe.
type topicSubs struct {
	order *list.List // of subscriber
	byID  map[uuid.UUID]*list.Element
}

type job struct {
	fn      Handler
	topic   string
	payload any
}

// Emitter routes published events to topic subscribers via a worker
// pool. All methods are safe for concurrent use.
type Emitter struct {
	mu     sync.RWMutex
	topics map[string]*topicSubs
	closed bool

	// sendMu serializes queue sends against Close's close(jobs), so a
	// publisher can never hit a closed channel. It is separate from mu
	// so handlers may subscribe and unsubscribe freely.
	sendMu sync.RWMutex
	jobs   chan job
	wg     sync.WaitGroup
}

// DefaultWorkers is the pool size used when New is given a
// non-positive worker count.
const DefaultWorkers = 4

// queueDepth bounds how many undelivered events Emit may buffer before
// it blocks.
const queueDepth = 256

// New creates an emitter and starts its worker pool.
func New(workers int) *Emitter {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	e := &Emitter{
		topics: make(map[string]*topicSubs),
		jobs:   make(chan job, queueDepth),
	}
	e.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go e.worker()
	}
	return e
}

func (e *Emitter) worker() {
	defer e.wg.Done()
	for j := range e.jobs {
		j.fn(j.topic, j.payload)
	}
}

// Subscribe registers fn for events on topic and returns the token that
// cancels the subscription.
func (e *Emitter) Subscribe(topic string, fn Handler) Token {
	tok := Token{topic: topic, id: uuid.New()}

	e.mu.Lock()
	defer e.mu.Unlock()
	ts, ok := e.topics[topic]
	if !ok {
		ts = &topicSubs{
			order: list.New(),
			byID:  make(map[uuid.UUID]*list.Element),
		}
		e.topics[topic] = ts
	}
	ts.byID[tok.id] = ts.order.PushBack(subscriber{id: tok.id, fn: fn})
	return tok
}

// Unsubscribe cancels a subscription. It reports whether the token was
// still registered. Events already queued for the handler may still be
// delivered.
func (e *Emitter) Unsubscribe(tok Token) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ts, ok := e.topics[tok.topic]
	if !ok {
		return false
	}
	el, ok := ts.byID[tok.id]
	if !ok {
		return false
	}
	ts.order.Remove(el)
	delete(ts.byID, tok.id)
	if ts.order.Len() == 0 {
		delete(e.topics, tok.topic)
	}
	return true
}

// Emit publishes payload to every subscriber of topic and returns the
// number of handlers the event was queued for. Emit blocks only when
// the dispatch queue is full. Emitting on a closed emitter is a no-op.
func (e *Emitter) Emit(topic string, payload any) int {
	e.mu.RLock()
	var fns []Handler
	if ts, ok := e.topics[topic]; ok {
		fns = make([]Handler, 0, ts.order.Len())
		for el := ts.order.Front(); el != nil; el = el.Next() {
			fns = append(fns, el.Value.(subscriber).fn)
		}
	}
	e.mu.RUnlock()
	if len(fns) == 0 {
		return 0
	}

	e.sendMu.RLock()
	defer e.sendMu.RUnlock()
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return 0
	}
	for _, fn := range fns {
		e.jobs <- job{fn: fn, topic: topic, payload: payload}
	}
	return len(fns)
}

// Close stops accepting events, waits for queued events to be handled
// and stops the workers. Close is idempotent.
//
// Close must not be called from inside a handler: it waits for every
// worker to finish, and a worker cannot wait for itself.
func (e *Emitter) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	// Wait for in-flight Emit calls, then stop intake and drain.
	e.sendMu.Lock()
	close(e.jobs)
	e.sendMu.Unlock()
	e.wg.Wait()
}
