package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"campus-sync/internal/conversation"
	"campus-sync/internal/models"
	"campus-sync/internal/observability"
	"campus-sync/internal/repositories"
)

// TokenValidator checks a bearer token and returns the subject user id.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// ConversationWebSocketHandler handles conversation stream connections.
type ConversationWebSocketHandler struct {
	hub       *Hub
	convRepo  repositories.ConversationRepository
	connRepo  repositories.ConnectionRepository
	msgRepo   repositories.MessageRepository
	validator TokenValidator
}

// NewConversationWebSocketHandler constructs a ConversationWebSocketHandler.
func NewConversationWebSocketHandler(hub *Hub, convRepo repositories.ConversationRepository, connRepo repositories.ConnectionRepository, msgRepo repositories.MessageRepository, validator TokenValidator) *ConversationWebSocketHandler {
	return &ConversationWebSocketHandler{hub: hub, convRepo: convRepo, connRepo: connRepo, msgRepo: msgRepo, validator: validator}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection, replays the stored stream and registers the
// client for live updates.
func (h *ConversationWebSocketHandler) Handle(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	ctx, span := otel.Tracer("campus-sync/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, err := h.validateToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if err := h.authorize(ctx, conversationID, userID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for conversation"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}

	// Replay the stored stream in order, then go live. The hub serializes the
	// replay with room registration so nothing lands between the two.
	if err := h.hub.JoinConversation(ctx, conversationID, conn, info, func(ctx context.Context) ([]models.Message, error) {
		return h.msgRepo.List(ctx, conversationID)
	}); err != nil {
		conn.Close()
		return
	}

	observability.IncWSActive("conversation")
	observability.IncWSEvent("conversation", "ws_connect")
	_ = observability.PublishEvent(ctx, "ws_events.conversations",
		observability.NewEnvelope("ws_events", "ws_connect",
			wsEventPayload("conversation", conversationID, "ws_connect", info, 0, "")),
		observability.BuildHeaders(requestID, traceID))

	// Keep connection alive and clean on close
	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveConversationClient(conversationID, conn)
			observability.DecWSActive("conversation")
			observability.IncWSEvent("conversation", "ws_disconnect")
			_ = observability.PublishEvent(ctx, "ws_events.conversations",
				observability.NewEnvelope("ws_events", "ws_disconnect",
					wsEventPayload("conversation", conversationID, "ws_disconnect", info, time.Since(info.ConnectedAt).Milliseconds(), closeReason)),
				observability.BuildHeaders(requestID, traceID))
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("conversation", "ws_error")
					_ = observability.PublishEvent(ctx, "ws_events.conversations",
						observability.NewEnvelope("ws_events", "ws_error",
							wsEventPayload("conversation", conversationID, "ws_error", info, time.Since(info.ConnectedAt).Milliseconds(), closeReason)),
						observability.BuildHeaders(requestID, traceID))
				}
				return
			}
		}
	}()
}

// authorize checks stream access with the same rules as the HTTP surface:
// DM ids admit only their two participants and only while they are connected,
// groups admit members, channels admit everyone.
func (h *ConversationWebSocketHandler) authorize(ctx context.Context, conversationID, userID string) error {
	if a, b, ok := conversation.DMParticipants(conversationID); ok {
		if !conversation.IsDMParticipant(conversationID, userID) {
			return errors.New("not a participant")
		}
		connected, err := h.connRepo.AreConnected(ctx, a, b)
		if err != nil {
			return err
		}
		if !connected {
			return errors.New("participants are not connected")
		}
		return nil
	}

	conv, err := h.convRepo.Get(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.Kind == models.KindGroup {
		member, err := h.convRepo.IsMember(ctx, conversationID, userID)
		if err != nil {
			return err
		}
		if !member {
			return errors.New("not a member")
		}
		return nil
	}
	if !conversation.CanAccess(conv, nil, userID) {
		return errors.New("not a member")
	}
	return nil
}

func (h *ConversationWebSocketHandler) validateToken(c *gin.Context) (string, error) {
	return bearerSubject(c, h.validator)
}

func bearerSubject(c *gin.Context, validator TokenValidator) (string, error) {
	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}
	parts := strings.Split(token, " ")
	if len(parts) == 2 {
		return validator.Validate(parts[1])
	}
	return "", fmt.Errorf("invalid token")
}

func wsEventPayload(kind, resourceID, event string, info ConnInfo, durationMS int64, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        kind,
			"resource_id": resourceID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": durationMS,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
