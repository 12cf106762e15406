package db

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"friendapp/internal/app/friend"
)

// Both stores must satisfy the directory contract.
var (
	_ friend.Directory = (*Store)(nil)
	_ friend.Directory = (*MemDirectory)(nil)
)

func mustCreate(t *testing.T, dir *MemDirectory, username string) *friend.User {
	t.Helper()

	u, err := dir.CreateUser(t.Context(), username, "hashed")
	if err != nil {
		t.Fatalf("CreateUser(%q): %v", username, err)
	}
	return u
}

func TestMemDirectoryUserLookups(t *testing.T) {
	dir := NewMemDirectory()
	ctx := t.Context()
	alice := mustCreate(t, dir, "alice")

	if _, err := dir.CreateUser(ctx, "alice", "other"); !errors.Is(err, friend.ErrUsernameTaken) {
		t.Errorf("duplicate CreateUser error = %v, want ErrUsernameTaken", err)
	}

	byID, err := dir.UserByID(ctx, alice.ID)
	if err != nil || byID.Username != "alice" {
		t.Errorf("UserByID = %v, %v", byID, err)
	}

	byName, err := dir.UserByUsername(ctx, "alice")
	if err != nil || byName.ID != alice.ID {
		t.Errorf("UserByUsername = %v, %v", byName, err)
	}

	if _, err := dir.UserByID(ctx, uuid.New()); !errors.Is(err, friend.ErrNoUser) {
		t.Errorf("UserByID for unknown id error = %v, want ErrNoUser", err)
	}
	if _, err := dir.UserByUsername(ctx, "ghost"); !errors.Is(err, friend.ErrNoUser) {
		t.Errorf("UserByUsername for unknown name error = %v, want ErrNoUser", err)
	}
}

func TestMemDirectoryUsersByIDsPreservesOrder(t *testing.T) {
	dir := NewMemDirectory()
	ctx := t.Context()

	alice := mustCreate(t, dir, "alice")
	bob := mustCreate(t, dir, "bob")
	carol := mustCreate(t, dir, "carol")

	// Requested order wins, unknown ids are skipped.
	users, err := dir.UsersByIDs(ctx, []uuid.UUID{carol.ID, uuid.New(), alice.ID, bob.ID})
	if err != nil {
		t.Fatalf("UsersByIDs: %v", err)
	}

	want := []string{"carol", "alice", "bob"}
	if len(users) != len(want) {
		t.Fatalf("UsersByIDs returned %d users, want %d", len(users), len(want))
	}
	for i, username := range want {
		if users[i].Username != username {
			t.Errorf("users[%d] = %q, want %q", i, users[i].Username, username)
		}
	}
}

func TestMemDirectorySearchOrdering(t *testing.T) {
	dir := NewMemDirectory()
	ctx := t.Context()

	for _, name := range []string{"zoe", "Alice", "ali_99", "bob"} {
		mustCreate(t, dir, name)
	}

	users, err := dir.SearchByUsername(ctx, "ali")
	if err != nil {
		t.Fatalf("SearchByUsername: %v", err)
	}

	// Matches are sorted by username, like the SQL store's ORDER BY.
	want := []string{"Alice", "ali_99"}
	if len(users) != len(want) {
		t.Fatalf("search returned %d users, want %d", len(users), len(want))
	}
	for i, username := range want {
		if users[i].Username != username {
			t.Errorf("users[%d] = %q, want %q", i, users[i].Username, username)
		}
	}
}

func TestMemDirectoryRequestLifecycle(t *testing.T) {
	dir := NewMemDirectory()
	ctx := t.Context()

	alice := mustCreate(t, dir, "alice")
	bob := mustCreate(t, dir, "bob")
	carol := mustCreate(t, dir, "carol")

	if err := dir.AddRequest(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("AddRequest: %v", err)
	}
	if err := dir.AddRequest(ctx, bob.ID, carol.ID); err != nil {
		t.Fatalf("AddRequest: %v", err)
	}

	pending, err := dir.HasPendingRequest(ctx, bob.ID, alice.ID)
	if err != nil || !pending {
		t.Errorf("HasPendingRequest = %v, %v, want true", pending, err)
	}

	// Recording the same request again reports the duplicate instead of
	// double-listing the requester.
	if err := dir.AddRequest(ctx, bob.ID, alice.ID); !errors.Is(err, friend.ErrDuplicateRequest) {
		t.Errorf("duplicate AddRequest error = %v, want ErrDuplicateRequest", err)
	}

	requests, err := dir.IncomingRequests(ctx, bob.ID)
	if err != nil {
		t.Fatalf("IncomingRequests: %v", err)
	}
	if len(requests) != 2 || requests[0].Username != "alice" || requests[1].Username != "carol" {
		t.Fatalf("IncomingRequests = %v, want alice then carol", requests)
	}

	if err := dir.AcceptRequest(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}

	// The accepted request is gone, the other remains.
	requests, err = dir.IncomingRequests(ctx, bob.ID)
	if err != nil || len(requests) != 1 || requests[0].Username != "carol" {
		t.Fatalf("IncomingRequests after accept = %v, %v, want only carol", requests, err)
	}

	// Friendship is symmetric.
	for _, pair := range [][2]uuid.UUID{{bob.ID, alice.ID}, {alice.ID, bob.ID}} {
		ok, err := dir.AreFriends(ctx, pair[0], pair[1])
		if err != nil || !ok {
			t.Errorf("AreFriends(%v, %v) = %v, %v, want true", pair[0], pair[1], ok, err)
		}
	}

	// Rejecting removes without befriending.
	if err := dir.RemoveRequest(ctx, bob.ID, carol.ID); err != nil {
		t.Fatalf("RemoveRequest: %v", err)
	}
	requests, err = dir.IncomingRequests(ctx, bob.ID)
	if err != nil || len(requests) != 0 {
		t.Errorf("IncomingRequests after reject = %v, %v, want none", requests, err)
	}
	if ok, _ := dir.AreFriends(ctx, bob.ID, carol.ID); ok {
		t.Error("reject established a friendship")
	}

	// Accepting a request that is not pending still converges on friendship
	// without duplicating the adjacency entry.
	if err := dir.AcceptRequest(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("repeat AcceptRequest: %v", err)
	}
	ids, err := dir.FriendIDs(ctx, bob.ID)
	if err != nil || len(ids) != 1 {
		t.Errorf("FriendIDs after repeat accept = %v, %v, want exactly one", ids, err)
	}
}

func TestMemDirectoryRemoveFriendship(t *testing.T) {
	dir := NewMemDirectory()
	ctx := t.Context()

	alice := mustCreate(t, dir, "alice")
	bob := mustCreate(t, dir, "bob")

	if err := dir.AddRequest(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("AddRequest: %v", err)
	}
	if err := dir.AcceptRequest(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}

	if err := dir.RemoveFriendship(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("RemoveFriendship: %v", err)
	}

	for _, id := range []uuid.UUID{alice.ID, bob.ID} {
		ids, err := dir.FriendIDs(ctx, id)
		if err != nil || len(ids) != 0 {
			t.Errorf("FriendIDs(%v) after removal = %v, %v, want none", id, ids, err)
		}
	}

	// Removing again is a no-op.
	if err := dir.RemoveFriendship(ctx, alice.ID, bob.ID); err != nil {
		t.Errorf("repeat RemoveFriendship: %v", err)
	}
}

func TestMemDirectoryFriendsOfUsers(t *testing.T) {
	dir := NewMemDirectory()
	ctx := t.Context()

	me := mustCreate(t, dir, "me")
	bianca := mustCreate(t, dir, "bianca")
	carol := mustCreate(t, dir, "carol")
	dora := mustCreate(t, dir, "dora")

	for _, pair := range [][2]uuid.UUID{
		{me.ID, bianca.ID}, {me.ID, carol.ID}, {bianca.ID, dora.ID}, {carol.ID, dora.ID},
	} {
		if err := dir.AddRequest(ctx, pair[1], pair[0]); err != nil {
			t.Fatalf("AddRequest: %v", err)
		}
		if err := dir.AcceptRequest(ctx, pair[1], pair[0]); err != nil {
			t.Fatalf("AcceptRequest: %v", err)
		}
	}

	// FriendsOfUsers returns one entry per edge; dora appears twice.
	edges, err := dir.FriendsOfUsers(ctx, []uuid.UUID{bianca.ID, carol.ID})
	if err != nil {
		t.Fatalf("FriendsOfUsers: %v", err)
	}

	counts := make(map[uuid.UUID]int)
	for _, id := range edges {
		counts[id]++
	}
	if counts[me.ID] != 2 || counts[dora.ID] != 2 || len(edges) != 4 {
		t.Errorf("edge multiset = %v, want me twice and dora twice", counts)
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"50%", `50\%`},
		{"under_score", `under\_score`},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		if got := escapeLike(tt.in); got != tt.want {
			t.Errorf("escapeLike(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
