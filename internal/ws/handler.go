package ws

import (
	"net/http"

	"creatememe/internal/solana"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleChart upgrades GET /ws/chart/:address?interval=5s to a candle
// stream. An empty allowedOrigin accepts any origin.
func HandleChart(hub *Hub, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		address := c.Param("address")
		if err := solana.ValidateAddress(address); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token address"})
			return
		}
		interval, ok := hub.normalizeInterval(c.Query("interval"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interval"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Warn("ws upgrade failed", "error", err)
			return
		}

		client := NewClient(conn, hub)
		go client.Run(address, interval)
	}
}
