package push

import (
	"sync"

	"tasknotify/internal/logger"
	"tasknotify/pkg/metrics"
)

// Connection is a live push channel to one client. Implementations must be
// safe for concurrent sends.
type Connection interface {
	SendJSON(v interface{}) error
}

// Message is the wire shape of every server-sent push message.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub tracks live connections per user and fans messages out to them. It is
// shared mutable state touched concurrently by handshakes, disconnect cleanup
// and broadcasts, so every registry access goes through the mutex.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[Connection]struct{}
	logger      logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		connections: make(map[string]map[Connection]struct{}),
		logger:      log,
	}
}

func (h *Hub) Register(conn Connection, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.connections[userID]; !ok {
		h.connections[userID] = make(map[Connection]struct{})
	}
	h.connections[userID][conn] = struct{}{}

	metrics.ActiveConnections.Inc()
	h.logger.Infow("Push channel registered", "user_id", userID)
}

func (h *Hub) Unregister(conn Connection, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(conn, userID)
	h.logger.Infow("Push channel unregistered", "user_id", userID)
}

func (h *Hub) removeLocked(conn Connection, userID string) {
	set, ok := h.connections[userID]
	if !ok {
		return
	}
	if _, ok := set[conn]; !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.connections, userID)
	}
	metrics.ActiveConnections.Dec()
}

// Broadcast sends a message to every live connection of one user. It never
// aborts early: a failed send marks that connection for removal and the rest
// still receive the message. No connections for the user is a silent no-op.
func (h *Hub) Broadcast(userID string, message interface{}) {
	h.mu.RLock()
	targets := make([]Connection, 0, len(h.connections[userID]))
	for conn := range h.connections[userID] {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	var dead []Connection
	for _, conn := range targets {
		if err := conn.SendJSON(message); err != nil {
			metrics.BroadcastsTotal.WithLabelValues("failed").Inc()
			h.logger.Warnw("Failed to send push message, dropping connection",
				"user_id", userID,
				"error", err,
			)
			dead = append(dead, conn)
			continue
		}
		metrics.BroadcastsTotal.WithLabelValues("success").Inc()
	}

	if len(dead) > 0 {
		h.mu.Lock()
		for _, conn := range dead {
			h.removeLocked(conn, userID)
		}
		h.mu.Unlock()
	}
}

// BroadcastEvent wraps a payload in the standard message shape.
func (h *Hub) BroadcastEvent(userID, eventType string, data interface{}) {
	h.Broadcast(userID, Message{Type: eventType, Data: data})
}

// Count returns the number of live connections for one user.
func (h *Hub) Count(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// Total returns the number of live connections across all users.
func (h *Hub) Total() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, set := range h.connections {
		total += len(set)
	}
	return total
}
