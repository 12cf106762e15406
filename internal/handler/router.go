/*
Package handler provides the HTTP handlers and routing setup for the friend service.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers (auth,
friends, and the notification WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"friendapp/internal/pkg/auth/jwt"
	"friendapp/internal/pkg/limiter"
	"friendapp/internal/pkg/logx"
	"friendapp/internal/pkg/resp"
)

const (
	// AuthRate limits signups and logins per IP to slow down credential stuffing
	// and bulk account creation.
	AuthRate  = 0.2
	AuthBurst = 5
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes the IP-based rate limiter for the auth endpoints, configures CORS,
// and applies global and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Friend Service",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/auth", func(auth chi.Router) {
		auth.Use(authLimiter.Middleware)
		auth.Post("/signup", HandleSignup(deps))
		auth.Post("/login", HandleLogin(deps))
	})

	r.Route("/friends", func(friends chi.Router) {
		friends.Get("/", HandleListFriends(deps))
		friends.Get("/search", HandleSearch(deps))
		friends.Post("/add/{id}", HandleSendRequest(deps))
		friends.Get("/requests", HandleListRequests(deps))
		friends.Post("/requests/{id}", HandleResolveRequest(deps))
		friends.Post("/unfriend/{id}", HandleUnfriend(deps))
		friends.Get("/recommendations", HandleRecommendations(deps))
	})

	r.Get("/ws", HandleNotifySocket(wsUpgrader, deps))

	return r
}
