package emit

import (
	"context"
	"sync"
)

// BufferedEmitter implements Emitter by storing events in memory.
//
// This emitter captures all events and provides query capabilities for
// choreographer history analysis. Events are organized by sessionID for
// efficient retrieval and filtering.
//
// Features:
//   - Thread-safe concurrent access
//   - Query by sessionID with optional filtering
//   - Filter by routeKey, message, sequence range
//   - Clear events by sessionID or all events
//
// Use cases:
//   - Development and debugging
//   - Testing and validation
//   - Real-time monitoring dashboards
//   - Post-dispatch analysis
//
// Warning: This emitter stores all events in memory. For long-running
// choreographer sessions or high event volume, consider using a
// persistent storage backend (see nav/audit) or implement event
// rotation/cleanup.
//
// Example usage:
//
//	emitter := emit.NewBufferedEmitter()
//	c, _ := nav.New(g, actors, nav.WithEmitter(emitter))
//
//	allEvents := emitter.GetHistory("session-001")
//	errorEvents := emitter.GetHistoryWithFilter("session-001", emit.HistoryFilter{Msg: "validation_result"})
//
//	emitter.Clear("session-001")
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event // sessionID -> events
}

// HistoryFilter specifies criteria for filtering choreographer history.
//
// All filter fields are optional. When multiple fields are set, they are
// combined with AND logic (all conditions must match).
type HistoryFilter struct {
	RouteKey    string // Filter by route key (empty = no filter)
	Msg         string // Filter by message (empty = no filter)
	MinSequence *int   // Minimum sequence number (nil = no filter)
	MaxSequence *int   // Maximum sequence number (nil = no filter)
}

// NewBufferedEmitter creates a new BufferedEmitter. Safe for concurrent
// use.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{
		events: make(map[string][]Event),
	}
}

// Emit stores an event in the buffer, keyed by its SessionID.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[event.SessionID] = append(b.events[event.SessionID], event)
}

// Flush is a no-op: events are already stored in memory on Emit.
func (b *BufferedEmitter) Flush(_ context.Context) error {
	return nil
}

// GetHistory retrieves all events for a specific sessionID, in the order
// they were emitted. Returns an empty slice if none exist.
func (b *BufferedEmitter) GetHistory(sessionID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := b.events[sessionID]
	if events == nil {
		return []Event{}
	}

	result := make([]Event, len(events))
	copy(result, events)
	return result
}

// GetHistoryWithFilter retrieves filtered events for a specific
// sessionID. All filter conditions must match for an event to be
// included (AND logic).
func (b *BufferedEmitter) GetHistoryWithFilter(sessionID string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := b.events[sessionID]
	if events == nil {
		return []Event{}
	}

	if filter.RouteKey == "" && filter.Msg == "" && filter.MinSequence == nil && filter.MaxSequence == nil {
		result := make([]Event, len(events))
		copy(result, events)
		return result
	}

	var result []Event
	for _, event := range events {
		if !b.matchesFilter(event, filter) {
			continue
		}
		result = append(result, event)
	}

	if result == nil {
		return []Event{}
	}
	return result
}

// matchesFilter checks if an event matches the filter criteria.
func (b *BufferedEmitter) matchesFilter(event Event, filter HistoryFilter) bool {
	if filter.RouteKey != "" && event.RouteKey != filter.RouteKey {
		return false
	}

	if filter.Msg != "" && event.Msg != filter.Msg {
		return false
	}

	if filter.MinSequence != nil && event.Sequence < *filter.MinSequence {
		return false
	}

	if filter.MaxSequence != nil && event.Sequence > *filter.MaxSequence {
		return false
	}

	return true
}

// Clear removes stored events. If sessionID is non-empty, clears only
// events for that session. If empty, clears all stored events.
func (b *BufferedEmitter) Clear(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sessionID == "" {
		b.events = make(map[string][]Event)
	} else {
		delete(b.events, sessionID)
	}
}
