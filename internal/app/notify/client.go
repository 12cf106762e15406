/*
Package notify contains the realtime notification layer.

This file defines the Client struct, representing one active WebSocket
connection of a signed-in user. It manages the connection lifecycle and the
read/write pump loops, including heartbeats.
*/
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"friendapp/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound frame. Clients only listen
	// on this socket; anything beyond control frames is discarded.
	maxMessageSize = 512
)

// Client represents one active notification connection of a signed-in user.
type Client struct {
	// hub is the registry this client belongs to.
	hub *Hub

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// userID identifies the signed-in user behind the connection.
	userID uuid.UUID

	// a buffered channel used to queue events waiting to be sent to the client.
	send chan []byte

	// once guards the send channel against double close.
	once sync.Once

	// structured logger with client context.
	logger zerolog.Logger
}

// NewClient constructs a Client for the given connection and user.
func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, username string) *Client {
	clientLogger := logx.Logger().With().
		Str("component", "NotifyClient").
		Str("user_id", userID.String()).
		Str("username", username).
		Logger()

	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
		logger: clientLogger,
	}
}

// enqueue queues an event payload for delivery. When the client's queue is
// full the payload is dropped; the REST surface remains the source of truth.
func (c *Client) enqueue(payload []byte) {
	select {
	case c.send <- payload:
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping event")
	}
}

// closeSend closes the send channel exactly once, which makes WritePump send a
// close frame and terminate.
func (c *Client) closeSend() {
	c.once.Do(func() { close(c.send) })
}

// ReadPump consumes the client side of the connection. The notification socket
// is push-only, so inbound payloads are discarded; the loop exists to service
// Pong heartbeats and to detect the connection closing.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.closeSend()
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close after read loop")
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Notification connection closed unexpectedly")
			}
			return
		}
	}
}

// WritePump writes queued events from the send channel to the WebSocket
// connection and keeps the connection alive with periodic Ping messages.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close after write loop")
		}
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				// Hub or read loop closed the channel.
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Error().Err(err).Msg("Error writing event")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Error().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}
