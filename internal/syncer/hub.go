package syncer

import (
	"sync"

	"venue-feedback-backend/internal/triage"
)

// Hub holds one coordinator per served venue. It fronts the resolution
// and API layers: refresh triggers fan out to every venue, and session
// lookups search across venues because session ids are globally unique.
type Hub struct {
	mu           sync.RWMutex
	coordinators map[int64]*Coordinator
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{coordinators: make(map[int64]*Coordinator)}
}

// Add registers a venue's coordinator. Must be called before serving.
func (h *Hub) Add(venueID int64, c *Coordinator) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.coordinators[venueID] = c
}

// Coordinator returns the coordinator serving the venue.
func (h *Hub) Coordinator(venueID int64) (*Coordinator, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.coordinators[venueID]
	return c, ok
}

// Trigger requests a refresh on every venue. Triggers coalesce inside
// each coordinator, so fanning out after a staff action is cheap even
// when most venues saw no change.
func (h *Hub) Trigger() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.coordinators {
		c.Trigger()
	}
}

// SessionByID searches every venue's latest snapshot for the session.
func (h *Hub) SessionByID(id string) (*triage.FeedbackSession, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.coordinators {
		if s, ok := c.SessionByID(id); ok {
			return s, true
		}
	}
	return nil, false
}
