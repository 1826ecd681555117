/*
Package handler provides the HTTP handlers and routing setup for the chat server.

This file contains the WebSocket upgrade handler: rate limiting, banned-IP
rejection at the connection trust boundary, the upgrade itself, and starting
the client lifecycle.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"emberchat/internal/app/chat"
	"emberchat/internal/pkg/errs"
	"emberchat/internal/pkg/limiter"
	"emberchat/internal/pkg/logx"
	"emberchat/internal/pkg/resp"
)

// HandleWebSocket returns the handler for WebSocket connection requests.
func HandleWebSocket(upgrader websocket.Upgrader, connectLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !connectLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: rate limit exceeded.")
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		if deps.Room.IsIPBanned(ip) {
			logx.Warn("WebSocket connection rejected: banned IP.")
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Room, conn, ip)

		go client.WritePump()

		deps.Room.HandleConnect(client)

		client.ReadPump()
	}
}
