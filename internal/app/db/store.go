/*
Package db provides the PostgreSQL persistence layer for the friend service.

This file implements friend.Directory over a pgx connection pool. Paired
mutations of the relationship graph (accepting a request, removing a
friendship) run inside a single transaction so the symmetric invariant
cannot be half-written.
*/
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"friendapp/internal/app/friend"
)

// Store implements friend.Directory backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store over an initialized connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const userColumns = "id, username, password_hash, created_at"

func scanUser(row pgx.Row) (*friend.User, error) {
	var u friend.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, friend.ErrNoUser
		}
		return nil, err
	}
	return &u, nil
}

func collectUsers(rows pgx.Rows) ([]friend.User, error) {
	defer rows.Close()

	var users []friend.User
	for rows.Next() {
		var u friend.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser persists a new user record, mapping a username collision to
// friend.ErrUsernameTaken.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*friend.User, error) {
	row := s.pool.QueryRow(ctx,
		"INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING "+userColumns,
		username, passwordHash)

	u, err := scanUser(row)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, friend.ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (*friend.User, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*friend.User, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username)
	return scanUser(row)
}

// UsersByIDs resolves ids to user records, preserving the order of ids.
func (s *Store) UsersByIDs(ctx context.Context, ids []uuid.UUID) ([]friend.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, "SELECT "+userColumns+" FROM users WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("users by ids: %w", err)
	}

	users, err := collectUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("users by ids: %w", err)
	}

	byID := make(map[uuid.UUID]friend.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	ordered := make([]friend.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
		}
	}
	return ordered, nil
}

// escapeLike escapes the LIKE wildcard characters so user input is matched literally.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

// SearchByUsername matches substr anywhere in the username, case-insensitively.
func (s *Store) SearchByUsername(ctx context.Context, substr string) ([]friend.User, error) {
	pattern := "%" + escapeLike(substr) + "%"

	rows, err := s.pool.Query(ctx,
		"SELECT "+userColumns+` FROM users WHERE username ILIKE $1 ESCAPE '\' ORDER BY username`,
		pattern)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return collectUsers(rows)
}

// Friends returns confirmed friends in the order the friendships were established.
func (s *Store) Friends(ctx context.Context, userID uuid.UUID) ([]friend.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT u.id, u.username, u.password_hash, u.created_at
		   FROM friendships f
		   JOIN users u ON u.id = f.friend_id
		  WHERE f.user_id = $1
		  ORDER BY f.id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return collectUsers(rows)
}

func (s *Store) FriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT friend_id FROM friendships WHERE user_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("friend ids: %w", err)
	}
	return collectIDs(rows)
}

// FriendsOfUsers returns one entry per friendship edge leaving the given users.
func (s *Store) FriendsOfUsers(ctx context.Context, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		"SELECT friend_id FROM friendships WHERE user_id = ANY($1) ORDER BY id", userIDs)
	if err != nil {
		return nil, fmt.Errorf("friends of users: %w", err)
	}
	return collectIDs(rows)
}

func collectIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM friendships WHERE user_id = $1 AND friend_id = $2)",
		a, b).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("friendship check: %w", err)
	}
	return exists, nil
}

// IncomingRequests returns the requesters with an unresolved request to the
// recipient, in insertion order.
func (s *Store) IncomingRequests(ctx context.Context, recipientID uuid.UUID) ([]friend.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT u.id, u.username, u.password_hash, u.created_at
		   FROM friend_requests r
		   JOIN users u ON u.id = r.requester_id
		  WHERE r.recipient_id = $1
		  ORDER BY r.id`,
		recipientID)
	if err != nil {
		return nil, fmt.Errorf("incoming requests: %w", err)
	}
	return collectUsers(rows)
}

func (s *Store) HasPendingRequest(ctx context.Context, recipientID, requesterID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM friend_requests WHERE recipient_id = $1 AND requester_id = $2)",
		recipientID, requesterID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("pending request check: %w", err)
	}
	return exists, nil
}

// AddRequest inserts the pending entry, mapping the unique-pair constraint to
// friend.ErrDuplicateRequest so a send racing past the pending check stays a
// business error.
func (s *Store) AddRequest(ctx context.Context, recipientID, requesterID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO friend_requests (recipient_id, requester_id) VALUES ($1, $2)",
		recipientID, requesterID)
	if err != nil {
		if IsUniqueViolation(err) {
			return friend.ErrDuplicateRequest
		}
		return fmt.Errorf("add request: %w", err)
	}
	return nil
}

func (s *Store) RemoveRequest(ctx context.Context, recipientID, requesterID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		"DELETE FROM friend_requests WHERE recipient_id = $1 AND requester_id = $2",
		recipientID, requesterID)
	if err != nil {
		return fmt.Errorf("remove request: %w", err)
	}
	return nil
}

// AcceptRequest removes the pending entry and writes both friendship
// directions in one transaction. The ON CONFLICT guard keeps the operation
// idempotent when the friendship already exists through a concurrent accept.
func (s *Store) AcceptRequest(ctx context.Context, recipientID, requesterID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("accept request: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		"DELETE FROM friend_requests WHERE recipient_id = $1 AND requester_id = $2",
		recipientID, requesterID); err != nil {
		return fmt.Errorf("accept request: delete pending: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO friendships (user_id, friend_id)
		 VALUES ($1, $2), ($2, $1)
		 ON CONFLICT (user_id, friend_id) DO NOTHING`,
		recipientID, requesterID); err != nil {
		return fmt.Errorf("accept request: insert friendship: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("accept request: commit: %w", err)
	}
	return nil
}

// RemoveFriendship deletes both directions of the friendship in one statement;
// removing a friendship that does not exist is a no-op.
func (s *Store) RemoveFriendship(ctx context.Context, a, b uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM friendships
		  WHERE (user_id = $1 AND friend_id = $2)
		     OR (user_id = $2 AND friend_id = $1)`,
		a, b)
	if err != nil {
		return fmt.Errorf("remove friendship: %w", err)
	}
	return nil
}
