// Package event provides an in-process broadcaster for item change
// events.
package event

import (
	"sync"

	"github.com/avbelov/items-api/internal/model"
)

// subscriberBuffer is the per-subscriber channel capacity. Events for
// a subscriber that falls this far behind are dropped rather than
// blocking writers.
const subscriberBuffer = 16

// Bus fans item events out to subscribers. Publishing never blocks.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[chan model.ItemEvent]struct{}
	closed      bool
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[chan model.ItemEvent]struct{}),
	}
}

// Subscribe registers a new subscriber and returns its event channel
// together with an unsubscribe function. The channel is closed on
// unsubscribe and on Close.
func (b *Bus) Subscribe() (<-chan model.ItemEvent, func()) {
	ch := make(chan model.ItemEvent, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch, func() {}
	}

	b.subscribers[ch] = struct{}{}

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
	}

	return ch, unsubscribe
}

// Publish delivers the event to every current subscriber, dropping it
// for subscribers whose buffer is full.
func (b *Bus) Publish(event model.ItemEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close shuts the bus down and closes all subscriber channels.
// Subsequent publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for ch := range b.subscribers {
		delete(b.subscribers, ch)
		close(ch)
	}
}
