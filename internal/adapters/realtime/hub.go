// Package realtime distributes participant changes to subscribers.
package realtime

import (
	"context"
	"sync"

	"eventmanager/internal/domain"
)

// Hub is an in-process change feed keyed by event id. It implements both
// domain.ChangeNotifier and domain.ChangeFeed.
type Hub struct {
	mu     sync.Mutex
	nextID uint64
	events map[string]map[uint64]func(domain.ParticipantChange)
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{events: make(map[string]map[uint64]func(domain.ParticipantChange))}
}

// Subscribe registers onChange for the event. The returned function removes it
// and is safe to call more than once.
func (h *Hub) Subscribe(eventID string, onChange func(domain.ParticipantChange)) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	subs, ok := h.events[eventID]
	if !ok {
		subs = make(map[uint64]func(domain.ParticipantChange))
		h.events[eventID] = subs
	}
	subs[id] = onChange
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			subs := h.events[eventID]
			delete(subs, id)
			if len(subs) == 0 {
				delete(h.events, eventID)
			}
		})
	}
}

// Publish delivers change to the event's current subscribers, synchronously and
// outside the hub lock.
func (h *Hub) Publish(_ context.Context, change domain.ParticipantChange) error {
	h.mu.Lock()
	subs := h.events[change.EventID]
	targets := make([]func(domain.ParticipantChange), 0, len(subs))
	for _, fn := range subs {
		targets = append(targets, fn)
	}
	h.mu.Unlock()

	for _, fn := range targets {
		fn(change)
	}
	return nil
}

// Subscribers returns the number of subscriptions for the event.
func (h *Hub) Subscribers(eventID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events[eventID])
}
