/*
Package handler provides HTTP handler functions for the friend-relationship operations:
search, friend requests, friend listing, unfriending, and recommendations.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"friendapp/internal/app/friend"
	"friendapp/internal/pkg/auth/jwt"
	"friendapp/internal/pkg/errs"
	"friendapp/internal/pkg/logx"
	"friendapp/internal/pkg/req"
	"friendapp/internal/pkg/resp"
)

// actingUserID extracts the authenticated user's id from the request context.
func actingUserID(r *http.Request) (uuid.UUID, *errs.CustomError) {
	identity := jwt.GetPayloadFromContext(r)
	if identity == nil {
		return uuid.Nil, errs.NewError(errs.ErrUnauthorized)
	}

	id, err := uuid.Parse(identity.ID)
	if err != nil {
		logx.Warn("token carries malformed user id", "id", identity.ID)
		return uuid.Nil, errs.NewError(errs.ErrUnauthorized)
	}
	return id, nil
}

// targetID extracts and parses the {id} URL parameter. A malformed id cannot
// name any user, so it reports the same error as a missing one.
func targetID(r *http.Request) (uuid.UUID, *errs.CustomError) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errs.NewError(errs.ErrTargetNotFound)
	}
	return id, nil
}

// HandleSearch returns all users whose username contains the q query parameter
// as a case-insensitive substring. An empty q returns all users.
func HandleSearch(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, customErr := actingUserID(r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		users, customErr := deps.Friends.Search(r.Context(), r.URL.Query().Get("q"))
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, users)
	}
}

// HandleSendRequest records a friend request from the acting user to the user
// named by the {id} URL parameter.
func HandleSendRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meID, customErr := actingUserID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		target, customErr := targetID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := deps.Friends.SendRequest(r.Context(), meID, target); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]string{"msg": "Friend request sent"})
	}
}

// HandleListRequests returns the acting user's unresolved incoming friend
// requests as username summaries, oldest first.
func HandleListRequests(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meID, customErr := actingUserID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		requests, customErr := deps.Friends.IncomingRequests(r.Context(), meID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, requests)
	}
}

type ResolveRequestInput struct {
	// Accept is a pointer so a body that omits the field can be told apart
	// from an explicit rejection.
	Accept *bool `json:"accept"`
}

// HandleResolveRequest accepts or rejects the pending friend request from the
// user named by the {id} URL parameter. The request body must state the
// decision explicitly via the accept field.
func HandleResolveRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meID, customErr := actingUserID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		requester, customErr := targetID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input ResolveRequestInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if input.Accept == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		accept := *input.Accept

		if customErr := deps.Friends.ResolveRequest(r.Context(), meID, requester, accept); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		msg := "Friend request rejected"
		if accept {
			msg = "Friend request accepted"
		}
		resp.RespondSuccess(w, r, map[string]string{"msg": msg})
	}
}

// HandleListFriends returns the acting user's confirmed friends as public records.
func HandleListFriends(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meID, customErr := actingUserID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		friends, customErr := deps.Friends.ListFriends(r.Context(), meID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, friends)
	}
}

// HandleUnfriend removes the friendship between the acting user and the user
// named by the {id} URL parameter.
func HandleUnfriend(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meID, customErr := actingUserID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		target, customErr := targetID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := deps.Friends.Unfriend(r.Context(), meID, target); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]string{"msg": "Unfriended successfully"})
	}
}

// HandleRecommendations returns up to ten friend-of-a-friend candidates for the
// acting user, ranked by shared friend count.
func HandleRecommendations(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meID, customErr := actingUserID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		recommendations, customErr := deps.Friends.Recommend(r.Context(), meID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		summaries := make([]friend.Summary, 0, len(recommendations))
		for _, rec := range recommendations {
			summaries = append(summaries, rec.User)
		}
		resp.RespondSuccess(w, r, summaries)
	}
}
