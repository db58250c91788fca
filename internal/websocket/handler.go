package websocket

import (
	"net/http"

	"dispatchai-pro/internal/middleware"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the connection. Browsers can't set headers on a
// websocket handshake, so the token comes from the query string.
func HandleWebSocket(hub *Hub, auth *middleware.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var userClaims middleware.UserClaims

		if tokenString := r.URL.Query().Get("token"); tokenString != "" {
			claims, err := auth.ParseToken(tokenString)
			if err != nil {
				hub.log.Warn("❌ Invalid token in query parameter", "error", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			userClaims = claims
		} else {
			// Fallback: user set by the Auth middleware
			claims, ok := middleware.GetUserFromContext(r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			userClaims = claims
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.Warn("❌ WebSocket upgrade failed", "error", err)
			return
		}

		client := NewClient(userClaims.UserID, userClaims.Role, conn, hub)
		hub.registerClient(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
