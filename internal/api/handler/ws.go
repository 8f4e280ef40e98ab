package handler

import (
	"net/http"

	"educhat/backend/internal/chathub"
	"educhat/backend/internal/config"
	"educhat/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins; tighten per deployment.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the HTTP connection and hands it to the hub. The
// principal comes from the bearer middleware, same as the REST surface.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &chathub.WebSocketClient{
		ConnID:    uuid.New().String(),
		Principal: currentPrincipal(c),
		Conn:      conn,
		Hub:       h.Hub,
		Send:      make(chan models.ServerEvent, config.ClientSendBuffer),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
