/*
Package handler provides the HTTP handlers and routing setup for the chat server.

This file defines the main Router, applying logging, CORS, and IP rate
limiting before delegating to the WebSocket, health, metrics, and admin
handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"emberchat/internal/pkg/limiter"
	"emberchat/internal/pkg/logx"
	"emberchat/internal/pkg/metrics"
	"emberchat/internal/pkg/resp"
)

// Per-IP rate for WebSocket connection attempts.
const (
	ConnectRate  = 0.2
	ConnectBurst = 5
)

// Router sets up the HTTP routing table for the application.
func Router(deps *AppDeps) http.Handler {
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
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
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		stats := deps.Room.Health()

		resp.RespondJSON(w, r, http.StatusOK, map[string]any{
			"status":        "ok",
			"onlineUsers":   stats.OnlineUsers,
			"totalMessages": stats.TotalMessages,
			"adminExists":   stats.AdminExists,
		})
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/admin", func(admin chi.Router) {
		admin.Post("/clear-bans", HandleClearBans(deps))
		admin.Post("/clear-users", HandleClearUsers(deps))
		admin.Post("/unban-ip", HandleUnbanIP(deps))
		admin.Post("/banned-ips", HandleListBannedIPs(deps))
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	return r
}
