package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"campus-sync/internal/observability"
	"campus-sync/internal/presence"
)

// PresenceWebSocketHandler handles presence websocket connections. Holding the
// connection open keeps the user online; the read pump teardown is the
// disconnect trigger that flips them offline.
type PresenceWebSocketHandler struct {
	hub       *Hub
	tracker   *presence.Tracker
	validator TokenValidator
}

// NewPresenceWebSocketHandler constructs a PresenceWebSocketHandler.
func NewPresenceWebSocketHandler(hub *Hub, tracker *presence.Tracker, validator TokenValidator) *PresenceWebSocketHandler {
	return &PresenceWebSocketHandler{hub: hub, tracker: tracker, validator: validator}
}

// Handle upgrades the connection, marks the user online and streams presence
// transitions until the connection drops.
func (h *PresenceWebSocketHandler) Handle(c *gin.Context) {
	userID, err := bearerSubject(c, h.validator)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	// Current state first, then live transitions.
	if err := conn.WriteJSON(h.tracker.Snapshot()); err != nil {
		conn.Close()
		return
	}

	h.hub.AddPresenceClient(conn)
	h.tracker.SetOnline(userID)
	observability.IncWSActive("presence")
	observability.IncWSEvent("presence", "ws_connect")

	go func() {
		defer func() {
			h.hub.RemovePresenceClient(conn)
			h.tracker.Disconnected(userID)
			observability.DecWSActive("presence")
			observability.IncWSEvent("presence", "ws_disconnect")
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("presence", "ws_error")
				}
				return
			}
		}
	}()
}
