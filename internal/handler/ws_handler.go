/*
Package handler provides the HTTP handler function for WebSocket connection upgrading
and initialization of the notification channel.
*/
package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"friendapp/internal/app/notify"
	"friendapp/internal/pkg/auth/jwt"
	"friendapp/internal/pkg/errs"
	"friendapp/internal/pkg/logx"
	"friendapp/internal/pkg/resp"
)

// HandleNotifySocket creates an HTTP HandlerFunc that upgrades the connection to
// WebSocket and registers it with the notification hub. Browsers cannot set an
// Authorization header during the WebSocket handshake, so the bearer token may
// alternatively arrive as the `token` query parameter.
func HandleNotifySocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		if identity == nil {
			tokenString := r.URL.Query().Get("token")
			if tokenString == "" {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			payload, err := jwt.ParseToken(tokenString, deps.Config.JWTSecret)
			if err != nil {
				logx.Warn("WebSocket request rejected: invalid token", "error", err)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}
			identity = payload
		}

		userID, err := uuid.Parse(identity.ID)
		if err != nil {
			logx.Warn("WebSocket request rejected: malformed user id in token", "id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := notify.NewClient(deps.Hub, conn, userID, identity.Username)

		if !deps.Hub.Register(client) {
			// Hub already shut down.
			conn.Close()
			return
		}

		go client.WritePump()

		logx.Info("Notification connection established", "user_id", identity.ID)

		client.ReadPump()
	}
}
