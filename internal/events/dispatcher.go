package events

import (
	"log/slog"
	"sync"
)

// Handler processes one event. Handlers run synchronously on the
// publishing goroutine; they must not block.
type Handler func(Event)

// Dispatcher fans engine push events out to subscribed components.
// Subscriptions return a teardown function so an owner can unhook its
// handlers when its session or component identity changes, preventing
// stale closures from mutating state they no longer own.
type Dispatcher struct {
	mu     sync.RWMutex
	subs   map[EventType]map[int]Handler
	nextID int
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{subs: make(map[EventType]map[int]Handler)}
}

// Subscribe registers a handler for one event type and returns the
// function that removes it again.
func (d *Dispatcher) Subscribe(t EventType, h Handler) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.subs[t] == nil {
		d.subs[t] = make(map[int]Handler)
	}
	id := d.nextID
	d.nextID++
	d.subs[t][id] = h

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subs[t], id)
	}
}

// Publish delivers an event to every handler subscribed to its type.
func (d *Dispatcher) Publish(e Event) {
	d.mu.RLock()
	handlers := make([]Handler, 0, len(d.subs[e.Type()]))
	for _, h := range d.subs[e.Type()] {
		handlers = append(handlers, h)
	}
	d.mu.RUnlock()

	if len(handlers) == 0 {
		slog.Debug("No subscribers for event", "type", e.Type())
	}
	for _, h := range handlers {
		h(e)
	}
}
