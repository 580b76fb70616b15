package push

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// envelope is the wire format of every server-pushed frame.
type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// connection represents a single live WebSocket client.
type connection struct {
	id     string
	userID int64
	group  string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub maps live connections to per-user broadcast groups and delivers
// at-most-once, best-effort events to a group's current members. State is
// process-local and never persisted; a reconnect is a brand-new connection.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*connection]struct{}
	log    logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		groups: make(map[string]map[*connection]struct{}),
		log:    log,
	}
}

// GroupForUser is the group key owning all of one user's connections.
func GroupForUser(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// add joins a connection to its group. Idempotent.
func (h *Hub) add(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.groups[c.group]
	if !ok {
		set = make(map[*connection]struct{})
		h.groups[c.group] = set
	}
	set[c] = struct{}{}
}

// remove leaves the group and releases the connection's send channel.
// Idempotent; empty groups are dropped so the registry never grows
// unbounded with dead keys.
func (h *Hub) remove(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.groups[c.group]
	if !ok {
		return
	}
	if _, member := set[c]; !member {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.groups, c.group)
	}
}

// GroupSize reports how many connections are currently joined to a group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// Send broadcasts an event to every connection currently in the user's
// group. A group with no members is a silent no-op. Slow consumers are
// skipped rather than blocking the caller.
func (h *Hub) Send(userID int64, event string, payload any) error {
	data, err := json.Marshal(envelope{Event: event, Payload: payload})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.groups[GroupForUser(userID)] {
		select {
		case c.send <- data:
		default:
			h.log.WithFields(logrus.Fields{
				"conn_id": c.id,
				"user_id": c.userID,
				"event":   event,
			}).Warn("push dropped: connection send buffer full")
		}
	}
	return nil
}
