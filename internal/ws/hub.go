package ws

import (
	"encoding/json"
	"sync"

	"entangle_backend/internal/logger"
)

// Hub fans session events out to connected watchers. The services publish
// through the EventSink interface; each client watches exactly one session.
type Hub struct {
	mu       sync.RWMutex
	watchers map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{watchers: make(map[int64]map[*Client]struct{})}
}

// Publish pushes one event to every watcher of the session. Slow clients
// have their frame dropped rather than blocking the caller.
func (h *Hub) Publish(sessionID int64, event string, payload any) {
	frame, err := json.Marshal(Envelope{Type: event, SessionID: sessionID, Payload: payload})
	if err != nil {
		logger.Error("ws: marshal event failed", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.watchers[sessionID] {
		select {
		case c.send <- frame:
		default:
			logger.Warn("ws: dropping frame for slow client",
				"session_id", sessionID, "player_id", c.PlayerID, "event", event)
		}
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.watchers[c.SessionID]
	if !ok {
		set = make(map[*Client]struct{})
		h.watchers[c.SessionID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.watchers[c.SessionID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.watchers, c.SessionID)
	}
}

// WatcherCount reports how many clients watch the session.
func (h *Hub) WatcherCount(sessionID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[sessionID])
}
