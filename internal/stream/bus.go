// Package stream is the subscription port between the store-facing services
// and their live-view consumers. Writers publish change events; consumers
// subscribe and re-derive their filtered/ranked views on every event instead
// of patching them incrementally.
package stream

import "sync"

// Topic identifies a logical collection whose changes can be observed.
type Topic string

const (
	TopicTrips  Topic = "trips"
	TopicOffers Topic = "offers"
	TopicUsers  Topic = "users"
)

// Event describes a change to an entity in a topic.
type Event struct {
	Topic  Topic
	Kind   string // e.g. "created", "updated", "accepted"
	ID     string // entity id
	TripID string // parent trip for offer events, empty otherwise
}

// Bus delivers change events to subscribers.
type Bus interface {
	// Subscribe returns a channel of events for the topic and a cancel
	// function that drops the subscription.
	Subscribe(topic Topic) (<-chan Event, func())

	// Publish delivers an event to all current subscribers of its topic.
	Publish(event Event)
}

// subscriberBuffer bounds a slow consumer. A consumer that falls this far
// behind loses events; it re-derives its full view on the next one, so a gap
// costs staleness, not correctness.
const subscriberBuffer = 16

// MemoryBus is an in-process Bus. Publish delivers synchronously, which lets
// tests observe every notification as soon as the triggering write returns.
type MemoryBus struct {
	mu   sync.RWMutex
	next int
	subs map[Topic]map[int]chan Event
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[Topic]map[int]chan Event)}
}

// Subscribe returns a channel of events for the topic.
func (b *MemoryBus) Subscribe(topic Topic) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan Event)
	}

	id := b.next
	b.next++
	ch := make(chan Event, subscriberBuffer)
	b.subs[topic][id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[topic][id]; ok {
			delete(b.subs[topic], id)
			close(sub)
		}
	}

	return ch, cancel
}

// Publish delivers an event to all current subscribers of its topic.
func (b *MemoryBus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[event.Topic] {
		select {
		case ch <- event:
		default:
			// Subscriber is full; drop rather than block the writer.
		}
	}
}

var _ Bus = (*MemoryBus)(nil)
