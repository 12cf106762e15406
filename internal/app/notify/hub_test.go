package notify

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"friendapp/internal/app/friend"
)

// newIdleClient builds a client that is never pumped, so events stay queued in
// the send channel where the test can inspect them.
func newIdleClient(hub *Hub, userID uuid.UUID) *Client {
	return NewClient(hub, nil, userID, "test")
}

func receiveEvent(t *testing.T, c *Client) Event {
	t.Helper()

	select {
	case payload := <-c.send:
		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			t.Fatalf("decode queued event: %v", err)
		}
		return event
	default:
		t.Fatal("no event queued")
		return Event{}
	}
}

func TestPublishFansOutToAllConnections(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()
	otherID := uuid.New()

	first := newIdleClient(hub, userID)
	second := newIdleClient(hub, userID)
	other := newIdleClient(hub, otherID)
	for _, c := range []*Client{first, second, other} {
		if !hub.Register(c) {
			t.Fatal("Register returned false on an open hub")
		}
	}

	from := friend.Summary{ID: uuid.New(), Username: "alice"}
	hub.FriendRequestReceived(userID, from)

	for _, c := range []*Client{first, second} {
		event := receiveEvent(t, c)
		if event.Type != TypeFriendRequest {
			t.Errorf("event type = %q, want %q", event.Type, TypeFriendRequest)
		}
		if event.From.Username != "alice" {
			t.Errorf("event from = %q, want %q", event.From.Username, "alice")
		}
		if event.Timestamp == 0 {
			t.Error("event timestamp not set")
		}
	}

	if len(other.send) != 0 {
		t.Errorf("other user's client received %d events, want 0", len(other.send))
	}
}

func TestPublishAfterUnregister(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	c := newIdleClient(hub, userID)
	hub.Register(c)
	hub.Unregister(c)

	hub.FriendRequestAccepted(userID, friend.Summary{ID: uuid.New(), Username: "bob"})

	if len(c.send) != 0 {
		t.Errorf("unregistered client received %d events, want 0", len(c.send))
	}

	// Unregistering twice is harmless.
	hub.Unregister(c)
}

func TestPublishDropsWhenQueueFull(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	c := newIdleClient(hub, userID)
	hub.Register(c)

	from := friend.Summary{ID: uuid.New(), Username: "alice"}
	for i := 0; i < cap(c.send)+5; i++ {
		hub.FriendRequestReceived(userID, from)
	}

	if len(c.send) != cap(c.send) {
		t.Errorf("queued events = %d, want queue capacity %d", len(c.send), cap(c.send))
	}
}

func TestShutdownClosesClientsAndRejectsRegistration(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	c := newIdleClient(hub, userID)
	hub.Register(c)

	hub.Shutdown()

	// The send channel is closed, which is what terminates WritePump.
	if _, ok := <-c.send; ok {
		t.Error("send channel still open after shutdown")
	}

	if hub.Register(newIdleClient(hub, userID)) {
		t.Error("Register succeeded after shutdown")
	}

	// Publishing into a shut-down hub is a no-op.
	hub.FriendRequestReceived(userID, friend.Summary{ID: uuid.New(), Username: "alice"})

	// A second shutdown is harmless.
	hub.Shutdown()
}
