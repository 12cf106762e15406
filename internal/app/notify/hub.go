/*
Package notify contains the realtime notification layer.

This file defines the Hub struct, the central registry of active notification
connections. A user may hold several connections at once (multiple tabs or
devices); events published for a user are fanned out to all of them.
*/
package notify

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"friendapp/internal/app/friend"
	"friendapp/internal/pkg/logx"
)

// Hub tracks the active notification clients per user and fans events out to them.
// It implements friend.Notifier.
type Hub struct {
	// mu protects concurrent access to the clients map.
	mu sync.RWMutex

	// clients maps a user id to that user's active connections.
	clients map[uuid.UUID]map[*Client]struct{}

	// closed marks the hub as shut down; registrations are rejected afterwards.
	closed bool

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub constructs and returns a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]map[*Client]struct{}),
		logger:  logx.Logger().With().Str("component", "NotifyHub").Logger(),
	}
}

// Register adds a client to the hub. It returns false when the hub has already
// been shut down, in which case the caller must close the connection itself.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}

	h.logger.Info().
		Str("user_id", c.userID.String()).
		Int("connections", len(set)).
		Msg("Notification client registered")

	return true
}

// Unregister removes a client from the hub. Unregistering a client that is not
// registered is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.userID]
	if !ok {
		return
	}

	if _, registered := set[c]; !registered {
		return
	}

	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}

	h.logger.Info().
		Str("user_id", c.userID.String()).
		Msg("Notification client unregistered")
}

// Publish delivers the event to every active connection of the given user.
// Users without an active connection simply miss the event; the REST surface
// remains the source of truth.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("event_type", string(event.Type)).Msg("Failed to marshal event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[userID] {
		c.enqueue(payload)
	}
}

// FriendRequestReceived implements friend.Notifier.
func (h *Hub) FriendRequestReceived(userID uuid.UUID, from friend.Summary) {
	h.Publish(userID, NewEvent(TypeFriendRequest, from))
}

// FriendRequestAccepted implements friend.Notifier.
func (h *Hub) FriendRequestAccepted(userID uuid.UUID, by friend.Summary) {
	h.Publish(userID, NewEvent(TypeRequestAccepted, by))
}

// Shutdown closes every active client connection and rejects further registrations.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	count := 0
	for _, set := range h.clients {
		for c := range set {
			c.closeSend()
			count++
		}
	}
	h.clients = make(map[uuid.UUID]map[*Client]struct{})

	h.logger.Info().Int("closed_connections", count).Msg("Hub shutdown complete")
}
