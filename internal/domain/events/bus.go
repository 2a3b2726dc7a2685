package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handler receives dashboard events for a subscribed user.
type Handler func(DashboardEvent)

// Bus fans dashboard events out to in-process subscribers, keyed by the user
// whose dashboard the event touches. Forwarders receive every locally
// published event regardless of user; the Redis pub/sub bridge registers one
// so sibling API instances converge.
type Bus struct {
	mu         sync.RWMutex
	subs       map[uuid.UUID]map[string]Handler
	forwarders []Handler
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[uuid.UUID]map[string]Handler),
	}
}

// Subscribe registers a handler for events touching userID and returns a
// cancel function. The handler is invoked synchronously on the publishing
// goroutine; handlers that do real work should hand it off themselves.
func (b *Bus) Subscribe(userID uuid.UUID, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[userID]; !ok {
		b.subs[userID] = make(map[string]Handler)
	}
	id := uuid.New().String()
	b.subs[userID][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if handlers, ok := b.subs[userID]; ok {
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(b.subs, userID)
			}
		}
	}
}

// AddForwarder registers a handler that receives every locally published
// event. Used to bridge events onto Redis pub/sub.
func (b *Bus) AddForwarder(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forwarders = append(b.forwarders, h)
}

// Publish dispatches an event to local subscribers and forwarders. A zero
// timestamp is filled in with the current time.
func (b *Bus) Publish(ev DashboardEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	b.Dispatch(ev)

	b.mu.RLock()
	forwarders := make([]Handler, len(b.forwarders))
	copy(forwarders, b.forwarders)
	b.mu.RUnlock()

	for _, f := range forwarders {
		f(ev)
	}
}

// Dispatch delivers an event to local subscribers only. Events arriving from
// the Redis bridge come in through here so they are not forwarded again.
func (b *Bus) Dispatch(ev DashboardEvent) {
	b.mu.RLock()
	var handlers []Handler
	for _, userID := range ev.UserIDs {
		for _, h := range b.subs[userID] {
			handlers = append(handlers, h)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

// SubscriberCount returns the number of handlers registered for a user.
func (b *Bus) SubscriberCount(userID uuid.UUID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[userID])
}
