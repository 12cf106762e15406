/*
Package friend contains the core logic of the friend-relationship system.

This file defines the Service struct, which implements the relationship operations
exposed over HTTP: search, request send/resolve, friend listing, unfriending, and
mutual-friend recommendation. All storage access goes through the Directory
interface; business failures are reported as *errs.CustomError so handlers can map
them directly onto HTTP responses.
*/
package friend

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"friendapp/internal/pkg/errs"
	"friendapp/internal/pkg/logx"
)

// MaxRecommendations caps the number of candidates returned by Recommend.
const MaxRecommendations = 10

// Service implements the friend-relationship operations for an authenticated
// acting user against a Directory.
type Service struct {
	dir Directory

	// notifier receives friend events for realtime delivery; may be nil.
	notifier Notifier

	// structured logger with Service context.
	logger zerolog.Logger
}

// NewService constructs a Service over the given directory. notifier may be nil,
// in which case friend events are not published.
func NewService(dir Directory, notifier Notifier) *Service {
	return &Service{
		dir:      dir,
		notifier: notifier,
		logger:   logx.Logger().With().Str("component", "FriendService").Logger(),
	}
}

// Search returns all users whose username contains query as a case-insensitive
// substring. An empty query returns all users, the acting user included.
func (s *Service) Search(ctx context.Context, query string) ([]Public, *errs.CustomError) {
	users, err := s.dir.SearchByUsername(ctx, query)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("User search failed")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	results := make([]Public, 0, len(users))
	for _, u := range users {
		results = append(results, u.Public())
	}
	return results, nil
}

// SendRequest records an unresolved friend request from me to target.
// It fails when the target does not exist, is the acting user, is already a
// confirmed friend, or already holds an unresolved request from me.
func (s *Service) SendRequest(ctx context.Context, meID, targetID uuid.UUID) *errs.CustomError {
	if meID == targetID {
		return errs.NewError(errs.ErrSelfFriendship)
	}

	me, customErr := s.loadActingUser(ctx, meID)
	if customErr != nil {
		return customErr
	}

	if _, err := s.dir.UserByID(ctx, targetID); err != nil {
		if errors.Is(err, ErrNoUser) {
			return errs.NewError(errs.ErrTargetNotFound)
		}
		s.logger.Error().Err(err).Str("target_id", targetID.String()).Msg("Target lookup failed")
		return errs.NewError(errs.ErrUnknown)
	}

	friends, err := s.dir.AreFriends(ctx, meID, targetID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Friendship check failed")
		return errs.NewError(errs.ErrUnknown)
	}
	if friends {
		return errs.NewError(errs.ErrAlreadyFriends)
	}

	pending, err := s.dir.HasPendingRequest(ctx, targetID, meID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Pending request check failed")
		return errs.NewError(errs.ErrUnknown)
	}
	if pending {
		return errs.NewError(errs.ErrRequestAlreadyPending)
	}

	if err := s.dir.AddRequest(ctx, targetID, meID); err != nil {
		// A concurrent send can slip past the pending check and land on the
		// storage-level uniqueness guarantee instead.
		if errors.Is(err, ErrDuplicateRequest) {
			return errs.NewError(errs.ErrRequestAlreadyPending)
		}
		s.logger.Error().Err(err).Msg("Failed to record friend request")
		return errs.NewError(errs.ErrUnknown)
	}

	s.logger.Info().
		Str("from", meID.String()).
		Str("to", targetID.String()).
		Msg("Friend request sent")

	if s.notifier != nil {
		s.notifier.FriendRequestReceived(targetID, me.Summary())
	}

	return nil
}

// IncomingRequests returns the unresolved friend requests addressed to me, as
// username summaries in insertion order.
func (s *Service) IncomingRequests(ctx context.Context, meID uuid.UUID) ([]Summary, *errs.CustomError) {
	if _, customErr := s.loadActingUser(ctx, meID); customErr != nil {
		return nil, customErr
	}

	requesters, err := s.dir.IncomingRequests(ctx, meID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list incoming requests")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	summaries := make([]Summary, 0, len(requesters))
	for _, u := range requesters {
		summaries = append(summaries, u.Summary())
	}
	return summaries, nil
}

// ResolveRequest removes the pending request from requester to me, whether
// accepted or rejected. Accepting additionally establishes the symmetric
// friendship. Resolving a request that was never pending is a silent no-op,
// which is why the requester must still be checked against the acting user:
// accepting "from myself" would otherwise write a self-friendship.
func (s *Service) ResolveRequest(ctx context.Context, meID, requesterID uuid.UUID, accept bool) *errs.CustomError {
	if meID == requesterID {
		return errs.NewError(errs.ErrSelfFriendship)
	}

	me, customErr := s.loadActingUser(ctx, meID)
	if customErr != nil {
		return customErr
	}

	if _, err := s.dir.UserByID(ctx, requesterID); err != nil {
		if errors.Is(err, ErrNoUser) {
			return errs.NewError(errs.ErrTargetNotFound)
		}
		s.logger.Error().Err(err).Str("requester_id", requesterID.String()).Msg("Requester lookup failed")
		return errs.NewError(errs.ErrUnknown)
	}

	if accept {
		if err := s.dir.AcceptRequest(ctx, meID, requesterID); err != nil {
			s.logger.Error().Err(err).Msg("Failed to accept friend request")
			return errs.NewError(errs.ErrUnknown)
		}

		s.logger.Info().
			Str("recipient", meID.String()).
			Str("requester", requesterID.String()).
			Msg("Friend request accepted")

		if s.notifier != nil {
			s.notifier.FriendRequestAccepted(requesterID, me.Summary())
		}
		return nil
	}

	if err := s.dir.RemoveRequest(ctx, meID, requesterID); err != nil {
		s.logger.Error().Err(err).Msg("Failed to reject friend request")
		return errs.NewError(errs.ErrUnknown)
	}

	s.logger.Info().
		Str("recipient", meID.String()).
		Str("requester", requesterID.String()).
		Msg("Friend request rejected")

	return nil
}

// ListFriends returns the confirmed friends of me as public records.
func (s *Service) ListFriends(ctx context.Context, meID uuid.UUID) ([]Public, *errs.CustomError) {
	if _, customErr := s.loadActingUser(ctx, meID); customErr != nil {
		return nil, customErr
	}

	friends, err := s.dir.Friends(ctx, meID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list friends")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	results := make([]Public, 0, len(friends))
	for _, u := range friends {
		results = append(results, u.Public())
	}
	return results, nil
}

// Unfriend removes the friendship between me and target from both friend sets.
// Unfriending a user who is not a friend is a silent no-op.
func (s *Service) Unfriend(ctx context.Context, meID, targetID uuid.UUID) *errs.CustomError {
	if _, customErr := s.loadActingUser(ctx, meID); customErr != nil {
		return customErr
	}

	if _, err := s.dir.UserByID(ctx, targetID); err != nil {
		if errors.Is(err, ErrNoUser) {
			return errs.NewError(errs.ErrTargetNotFound)
		}
		s.logger.Error().Err(err).Str("target_id", targetID.String()).Msg("Target lookup failed")
		return errs.NewError(errs.ErrUnknown)
	}

	if err := s.dir.RemoveFriendship(ctx, meID, targetID); err != nil {
		s.logger.Error().Err(err).Msg("Failed to remove friendship")
		return errs.NewError(errs.ErrUnknown)
	}

	s.logger.Info().
		Str("user", meID.String()).
		Str("target", targetID.String()).
		Msg("Friendship removed")

	return nil
}

// Recommend returns up to MaxRecommendations friend-of-a-friend candidates for
// me, ranked by the number of shared confirmed friends (descending, stable on
// ties). The acting user is excluded; users already in me's friend set are not.
func (s *Service) Recommend(ctx context.Context, meID uuid.UUID) ([]Recommendation, *errs.CustomError) {
	if _, customErr := s.loadActingUser(ctx, meID); customErr != nil {
		return nil, customErr
	}

	friendIDs, err := s.dir.FriendIDs(ctx, meID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load friend set for recommendation")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	// No friends, no base to expand from.
	if len(friendIDs) == 0 {
		return []Recommendation{}, nil
	}

	edges, err := s.dir.FriendsOfUsers(ctx, friendIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("One-hop expansion failed")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	// Count each candidate once per path through a member of the friend set.
	// Candidates are kept in first-seen order so equal counts rank stably.
	counts := make(map[uuid.UUID]int, len(edges))
	order := make([]uuid.UUID, 0, len(edges))
	for _, candidate := range edges {
		if candidate == meID {
			continue
		}
		if _, seen := counts[candidate]; !seen {
			order = append(order, candidate)
		}
		counts[candidate]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > MaxRecommendations {
		order = order[:MaxRecommendations]
	}

	candidates, err := s.dir.UsersByIDs(ctx, order)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to resolve recommendation candidates")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	recommendations := make([]Recommendation, 0, len(candidates))
	for _, u := range candidates {
		recommendations = append(recommendations, Recommendation{
			User:          u.Summary(),
			MutualFriends: counts[u.ID],
		})
	}
	return recommendations, nil
}

// loadActingUser resolves the acting user's record, mapping a missing record to
// ErrUserNotFound. Tokens outlive accounts, so a valid token may still name a
// user that no longer exists.
func (s *Service) loadActingUser(ctx context.Context, meID uuid.UUID) (*User, *errs.CustomError) {
	me, err := s.dir.UserByID(ctx, meID)
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}
		s.logger.Error().Err(err).Str("user_id", meID.String()).Msg("Acting user lookup failed")
		return nil, errs.NewError(errs.ErrUnknown)
	}
	return me, nil
}
