package handlers

import (
	"net/http"
	"os"

	"entangle_backend/internal/logger"
	"entangle_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WS upgrades the connection and binds the watcher to one session.
// session_id and player_id come from the query string.
func (h *Handler) WS(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := parseID(c.Query("session_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id required"})
			return
		}
		pid, err := parseID(c.Query("player_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "player_id required"})
			return
		}

		allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err)
			return
		}

		client := ws.NewClient(hub, conn, sid, pid)
		go client.Run()
	}
}
