/*
Package notify contains the realtime notification layer: a Hub that tracks the
WebSocket connections of signed-in users and fans friend events out to them.

This file defines the event envelope pushed to clients.
*/
package notify

import (
	"time"

	"friendapp/internal/app/friend"
)

// EventType identifies the kind of friend event carried by an Event.
type EventType string

const (
	// TypeFriendRequest signals that another user sent the recipient a friend request.
	TypeFriendRequest EventType = "FRIEND_REQUEST"

	// TypeRequestAccepted signals that the recipient's friend request was accepted.
	TypeRequestAccepted EventType = "REQUEST_ACCEPTED"
)

// Event is the JSON envelope pushed over the notification socket.
type Event struct {
	// Type identifies the kind of event.
	Type EventType `json:"type"`

	// From identifies the counterpart user the event concerns.
	From friend.Summary `json:"from"`

	// Timestamp is the server time of the event in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// NewEvent constructs an Event stamped with the current server time.
func NewEvent(eventType EventType, from friend.Summary) Event {
	return Event{
		Type:      eventType,
		From:      from,
		Timestamp: time.Now().UnixMilli(),
	}
}
