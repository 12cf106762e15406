/*
Package friend contains the core logic of the friend-relationship system: the user
record, the directory abstraction over durable storage, and the Service implementing
search, friend requests, unfriending, and mutual-friend recommendations.

This file defines the data model and the Directory interface the Service operates
against. Two implementations exist: the PostgreSQL store (internal/app/db) and an
in-memory directory used for tests and local development.
*/
package friend

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors returned by Directory implementations. The Service maps these
// to the application-level error codes in the errs package.
var (
	// ErrNoUser indicates that no user record exists for the given identifier or username.
	ErrNoUser = errors.New("user does not exist")

	// ErrUsernameTaken indicates that a user record with the same username already exists.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrDuplicateRequest indicates an unresolved request from the same requester
	// to the same recipient already exists.
	ErrDuplicateRequest = errors.New("friend request already exists")
)

// User is the full user record as held by the directory.
// PasswordHash is an opaque credential owned by the auth layer; it never leaves the server.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Public is the externally visible projection of a user record.
type Public struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary is the minimal username-only projection used for request and
// recommendation listings.
type Summary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Public returns the externally visible projection of the user record.
func (u User) Public() Public {
	return Public{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

// Summary returns the username-only projection of the user record.
func (u User) Summary() Summary {
	return Summary{ID: u.ID, Username: u.Username}
}

// Recommendation is a friend-of-a-friend candidate together with the number of
// confirmed friends the acting user shares with them.
type Recommendation struct {
	User          Summary
	MutualFriends int
}

// Directory is the durable storage abstraction for user records and the
// relationship graph. Friendships are symmetric: implementations must persist
// both directions of a friendship inside a single transaction scope, so a
// storage failure never leaves the relationship half-written.
type Directory interface {
	// CreateUser persists a new user record. Returns ErrUsernameTaken when the
	// username is already in use.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// UserByID returns the user record for the given identifier, or ErrNoUser.
	UserByID(ctx context.Context, id uuid.UUID) (*User, error)

	// UserByUsername returns the user record with the exact username, or ErrNoUser.
	UserByUsername(ctx context.Context, username string) (*User, error)

	// UsersByIDs resolves the given identifiers to user records, preserving the
	// order of ids. Identifiers without a record are silently skipped.
	UsersByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)

	// SearchByUsername returns all users whose username contains substr as a
	// case-insensitive, unanchored substring. An empty substr matches everyone.
	SearchByUsername(ctx context.Context, substr string) ([]User, error)

	// Friends returns the confirmed friends of the given user, in the order the
	// friendships were established.
	Friends(ctx context.Context, userID uuid.UUID) ([]User, error)

	// FriendIDs returns the identifiers of the confirmed friends of the given user.
	FriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// FriendsOfUsers returns the one-hop expansion of the given users: one entry
	// per friendship edge, so an identifier reachable through several of the
	// given users appears several times.
	FriendsOfUsers(ctx context.Context, userIDs []uuid.UUID) ([]uuid.UUID, error)

	// AreFriends reports whether a confirmed friendship exists between a and b.
	AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error)

	// IncomingRequests returns the users with an unresolved friend request to
	// the given recipient, in insertion order.
	IncomingRequests(ctx context.Context, recipientID uuid.UUID) ([]User, error)

	// HasPendingRequest reports whether requester has an unresolved friend
	// request to recipient.
	HasPendingRequest(ctx context.Context, recipientID, requesterID uuid.UUID) (bool, error)

	// AddRequest records an unresolved friend request from requester to recipient.
	// Returns ErrDuplicateRequest when such a request is already pending.
	AddRequest(ctx context.Context, recipientID, requesterID uuid.UUID) error

	// RemoveRequest deletes the pending request from requester to recipient.
	// Removing a request that does not exist is a no-op.
	RemoveRequest(ctx context.Context, recipientID, requesterID uuid.UUID) error

	// AcceptRequest resolves a pending request into a confirmed friendship: it
	// removes the pending entry (no-op if absent) and adds each user to the
	// other's friend set, all within one transaction scope.
	AcceptRequest(ctx context.Context, recipientID, requesterID uuid.UUID) error

	// RemoveFriendship removes the friendship between a and b from both friend
	// sets within one transaction scope. Removing a friendship that does not
	// exist is a no-op.
	RemoveFriendship(ctx context.Context, a, b uuid.UUID) error
}

// Notifier receives friend events for realtime delivery. Implementations must
// not block; the Service calls these inline on the request path.
type Notifier interface {
	// FriendRequestReceived notifies userID that `from` sent them a friend request.
	FriendRequestReceived(userID uuid.UUID, from Summary)

	// FriendRequestAccepted notifies userID that `by` accepted their friend request.
	FriendRequestAccepted(userID uuid.UUID, by Summary)
}
