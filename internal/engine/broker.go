package engine

import (
	"sync"
	"time"
)

// subscriberBufferSize is the channel buffer for each diagnostics subscriber.
// Events are dropped if a subscriber falls this far behind.
const subscriberBufferSize = 64

// Mismatch describes one evaluation whose output differed across engines.
type Mismatch struct {
	Engine  string            `json:"engine"`
	Script  string            `json:"script"`
	Outputs map[string]string `json:"outputs"`
	Time    time.Time         `json:"time"`
}

// Broker fans out mismatch diagnostics to subscribers.
// It is safe for concurrent use.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]chan Mismatch
	nextID int
	closed bool
}

// NewBroker creates a new diagnostics broker.
func NewBroker() *Broker {
	return &Broker{
		subs: make(map[int]chan Mismatch),
	}
}

// Subscribe returns a channel that receives mismatches and an unsubscribe
// function. After Close the returned channel is already closed.
func (b *Broker) Subscribe() (<-chan Mismatch, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Mismatch, subscriberBufferSize)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish sends m to every subscriber without blocking.
func (b *Broker) Publish(m Mismatch) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- m:
		default:
			// Slow subscriber.
		}
	}
}

// Close closes every subscriber channel. Later Subscribe calls return a
// closed channel and Publish becomes a no-op.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
