/*
Package handler provides HTTP handler functions for user signup and login.
*/
package handler

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"friendapp/internal/app/friend"
	"friendapp/internal/pkg/auth/jwt"
	"friendapp/internal/pkg/errs"
	"friendapp/internal/pkg/logx"
	"friendapp/internal/pkg/req"
	"friendapp/internal/pkg/resp"
)

type SignupInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleSignup processes the request to create a new user account with username and password.
// On success it responds 201 with a signed identity token and the public user record.
func HandleSignup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := jwt.GetPayloadFromContext(r); payload != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input SignupInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Username == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}
		if input.Password == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		user, err := deps.Directory.CreateUser(r.Context(), input.Username, string(hashedPassword))
		if err != nil {
			if errors.Is(err, friend.ErrUsernameTaken) {
				logx.Warn("signup conflict: username already exists", "username", input.Username)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "failed to create user in directory")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		token, err := issueToken(user, deps.Config.JWTSecret)
		if err != nil {
			logx.Error(err, "failed to generate token after signup")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondCreated(w, r, map[string]any{
			"token": token,
			"user":  user.Public(),
		})
	}
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin verifies user credentials and issues a JWT token.
// Unknown usernames and wrong passwords share one error so the endpoint does
// not reveal which accounts exist.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := jwt.GetPayloadFromContext(r); payload != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input LoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		user, err := deps.Directory.UserByUsername(r.Context(), input.Username)
		if err != nil {
			if !errors.Is(err, friend.ErrNoUser) {
				logx.Error(err, "login: user fetch failed", "username", input.Username)
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		token, err := issueToken(user, deps.Config.JWTSecret)
		if err != nil {
			logx.Error(err, "login: jwt generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": token,
			"user":  user.Public(),
		})
	}
}

// issueToken signs an identity token for the given user record.
func issueToken(user *friend.User, secret string) (string, error) {
	payload := &jwt.Payload{
		ID:       user.ID.String(),
		Username: user.Username,
	}
	return jwt.GenerateToken(payload, secret, jwt.UserIdentityExpiration)
}
