package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/doccpub/internal/eventstore"
	"git.home.luguber.info/inful/doccpub/internal/logfields"
)

// Handler processes an Event; return error to signal failure.
type Handler func(Event) error

// Bus is a simple synchronous pub/sub event bus.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	store       eventstore.Store // optional persistence
}

// NewBus creates a bus without persistence.
func NewBus() *Bus { return &Bus{subscribers: map[string][]Handler{}} }

// NewBusWithStore creates a bus that persists events to the run store.
func NewBusWithStore(store eventstore.Store) *Bus {
	return &Bus{subscribers: map[string][]Handler{}, store: store}
}

// Subscribe registers a handler for a given event name.
func (b *Bus) Subscribe(event string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.subscribers[event] = append(b.subscribers[event], h)
	b.mu.Unlock()
}

// Publish persists the event (when a store is configured) and delivers it to
// all handlers synchronously.
func (b *Bus) Publish(e Event) error {
	if b.store != nil {
		payload, err := json.Marshal(e)
		if err != nil {
			payload = nil
		}
		if err := b.store.Append(context.Background(), e.GetRunID(), e.Name(), payload); err != nil {
			// Persistence failure must not abort a run.
			slog.Warn("Failed to persist run event",
				logfields.RunID(e.GetRunID()),
				logfields.Error(err))
		}
	}

	b.mu.RLock()
	hs := append([]Handler(nil), b.subscribers[e.Name()]...)
	b.mu.RUnlock()
	for _, h := range hs {
		if err := h(e); err != nil {
			return err
		}
	}
	return nil
}
