package chat

import (
	"sync"
	"time"

	"scribe-ai/core/internal/engine"
	"scribe-ai/core/internal/events"
)

// Manager hands out one Coordinator per session and wires it to the
// event dispatcher. Coordinators live until their session is released or
// deleted; releasing tears down the subscriptions so handlers for a
// dead session never fire again.
type Manager struct {
	mu           sync.Mutex
	engine       engine.Engine
	dispatcher   *events.Dispatcher
	pollInterval time.Duration
	coordinators map[string]*Coordinator
}

func NewManager(eng engine.Engine, dispatcher *events.Dispatcher, pollInterval time.Duration) *Manager {
	return &Manager{
		engine:       eng,
		dispatcher:   dispatcher,
		pollInterval: pollInterval,
		coordinators: make(map[string]*Coordinator),
	}
}

// Get returns the session's coordinator, creating and subscribing it on
// first use.
func (m *Manager) Get(sessionID string) *Coordinator {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.coordinators[sessionID]; ok {
		return c
	}

	c := newCoordinator(sessionID, m.engine, m.pollInterval)
	c.unsubs = append(c.unsubs,
		m.dispatcher.Subscribe(events.TypeMessageStream, func(e events.Event) {
			if ev, ok := e.(events.MessageStreamEvent); ok {
				c.handleStream(ev)
			}
		}),
		m.dispatcher.Subscribe(events.TypeMessageComplete, func(e events.Event) {
			if ev, ok := e.(events.MessageCompleteEvent); ok {
				c.handleComplete(ev)
			}
		}),
	)
	m.coordinators[sessionID] = c
	return c
}

// Release drops a session's coordinator and its subscriptions.
func (m *Manager) Release(sessionID string) {
	m.mu.Lock()
	c, ok := m.coordinators[sessionID]
	delete(m.coordinators, sessionID)
	m.mu.Unlock()

	if ok {
		c.release()
	}
}
