package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"campus-sync/internal/observability"
)

// InboxWebSocketHandler streams notification pushes to the signed-in user.
type InboxWebSocketHandler struct {
	hub       *Hub
	validator TokenValidator
}

// NewInboxWebSocketHandler constructs an InboxWebSocketHandler.
func NewInboxWebSocketHandler(hub *Hub, validator TokenValidator) *InboxWebSocketHandler {
	return &InboxWebSocketHandler{hub: hub, validator: validator}
}

// Handle upgrades the connection and registers it to the user's inbox room.
func (h *InboxWebSocketHandler) Handle(c *gin.Context) {
	userID, err := bearerSubject(c, h.validator)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		ConnectedAt: time.Now(),
	}
	h.hub.AddInboxClient(userID, conn, info)
	observability.IncWSActive("inbox")
	observability.IncWSEvent("inbox", "ws_connect")

	go func() {
		defer func() {
			h.hub.RemoveInboxClient(userID, conn)
			observability.DecWSActive("inbox")
			observability.IncWSEvent("inbox", "ws_disconnect")
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("inbox", "ws_error")
				}
				return
			}
		}
	}()
}
