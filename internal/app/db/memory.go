/*
Package db provides the PostgreSQL persistence layer for the friend service.

This file implements MemDirectory, an in-memory friend.Directory used by the
test suite and by development mode when no DATABASE_URL is configured. It keeps
the same observable semantics as the PostgreSQL store: insertion-ordered
request listings, symmetric friendship mutations, and idempotent removals.
*/
package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"friendapp/internal/app/friend"
)

// MemDirectory is a mutex-guarded in-memory implementation of friend.Directory.
type MemDirectory struct {
	mu sync.RWMutex

	users     map[uuid.UUID]friend.User
	usernames map[string]uuid.UUID

	// friends holds the adjacency list per user, in friendship-establishment order.
	friends map[uuid.UUID][]uuid.UUID

	// requests holds, per recipient, the requester ids in insertion order.
	requests map[uuid.UUID][]uuid.UUID
}

// NewMemDirectory constructs an empty in-memory directory.
func NewMemDirectory() *MemDirectory {
	return &MemDirectory{
		users:     make(map[uuid.UUID]friend.User),
		usernames: make(map[string]uuid.UUID),
		friends:   make(map[uuid.UUID][]uuid.UUID),
		requests:  make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *MemDirectory) CreateUser(_ context.Context, username, passwordHash string) (*friend.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.usernames[username]; exists {
		return nil, friend.ErrUsernameTaken
	}

	u := friend.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.users[u.ID] = u
	m.usernames[username] = u.ID

	return &u, nil
}

func (m *MemDirectory) UserByID(_ context.Context, id uuid.UUID) (*friend.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, friend.ErrNoUser
	}
	return &u, nil
}

func (m *MemDirectory) UserByUsername(_ context.Context, username string) (*friend.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.usernames[username]
	if !ok {
		return nil, friend.ErrNoUser
	}
	u := m.users[id]
	return &u, nil
}

func (m *MemDirectory) UsersByIDs(_ context.Context, ids []uuid.UUID) ([]friend.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]friend.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (m *MemDirectory) SearchByUsername(_ context.Context, substr string) ([]friend.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(substr)

	var users []friend.User
	for _, u := range m.users {
		if strings.Contains(strings.ToLower(u.Username), needle) {
			users = append(users, u)
		}
	}

	// Same ordering as the SQL store.
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (m *MemDirectory) Friends(_ context.Context, userID uuid.UUID) ([]friend.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.friends[userID]
	users := make([]friend.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (m *MemDirectory) FriendIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.friends[userID]
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out, nil
}

func (m *MemDirectory) FriendsOfUsers(_ context.Context, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var edges []uuid.UUID
	for _, id := range userIDs {
		edges = append(edges, m.friends[id]...)
	}
	return edges, nil
}

func (m *MemDirectory) AreFriends(_ context.Context, a, b uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return containsID(m.friends[a], b), nil
}

func (m *MemDirectory) IncomingRequests(_ context.Context, recipientID uuid.UUID) ([]friend.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.requests[recipientID]
	users := make([]friend.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (m *MemDirectory) HasPendingRequest(_ context.Context, recipientID, requesterID uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return containsID(m.requests[recipientID], requesterID), nil
}

func (m *MemDirectory) AddRequest(_ context.Context, recipientID, requesterID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if containsID(m.requests[recipientID], requesterID) {
		return friend.ErrDuplicateRequest
	}

	m.requests[recipientID] = append(m.requests[recipientID], requesterID)
	return nil
}

func (m *MemDirectory) RemoveRequest(_ context.Context, recipientID, requesterID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests[recipientID] = removeID(m.requests[recipientID], requesterID)
	return nil
}

func (m *MemDirectory) AcceptRequest(_ context.Context, recipientID, requesterID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests[recipientID] = removeID(m.requests[recipientID], requesterID)

	if !containsID(m.friends[recipientID], requesterID) {
		m.friends[recipientID] = append(m.friends[recipientID], requesterID)
	}
	if !containsID(m.friends[requesterID], recipientID) {
		m.friends[requesterID] = append(m.friends[requesterID], recipientID)
	}
	return nil
}

func (m *MemDirectory) RemoveFriendship(_ context.Context, a, b uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.friends[a] = removeID(m.friends[a], b)
	m.friends[b] = removeID(m.friends[b], a)
	return nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
