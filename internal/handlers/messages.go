package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-sync/internal/apperrors"
	"campus-sync/internal/blob"
	"campus-sync/internal/conversation"
	"campus-sync/internal/middleware"
	"campus-sync/internal/models"
	"campus-sync/internal/repositories"
	"campus-sync/internal/ws"
)

// MessageHandler manages message streams over HTTP. Live delivery happens on
// the conversation websocket; these endpoints cover append, replay and delete.
type MessageHandler struct {
	convRepo repositories.ConversationRepository
	connRepo repositories.ConnectionRepository
	msgRepo  repositories.MessageRepository
	userRepo repositories.UserRepository
	blobs    blob.Store
	hub      *ws.Hub
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(convRepo repositories.ConversationRepository, connRepo repositories.ConnectionRepository, msgRepo repositories.MessageRepository, userRepo repositories.UserRepository, blobs blob.Store, hub *ws.Hub) *MessageHandler {
	return &MessageHandler{
		convRepo: convRepo,
		connRepo: connRepo,
		msgRepo:  msgRepo,
		userRepo: userRepo,
		blobs:    blobs,
		hub:      hub,
	}
}

// ListMessages replays a conversation's stream in order.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	userID := middleware.UserID(c)

	if _, ok := h.authorize(c, conversationID, userID); !ok {
		return
	}

	msgs, err := h.msgRepo.List(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, apperrors.Internal("failed to load messages"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostMessage appends a message to the conversation and broadcasts it.
func (h *MessageHandler) PostMessage(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	userID := middleware.UserID(c)

	if _, ok := h.authorize(c, conversationID, userID); !ok {
		return
	}

	var req struct {
		models.Payload
		ClientSeq int64 `json:"client_seq"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidArg(err.Error()))
		return
	}
	if _, err := req.Payload.Kind(); err != nil {
		respondError(c, err)
		return
	}
	if req.Payload.ImageRef != "" && req.Payload.ImageURL == "" {
		req.Payload.ImageURL = h.blobs.URL(req.Payload.ImageRef)
	}

	sender, err := h.userRepo.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apperrors.Internal("failed to load sender"))
		return
	}

	msg, err := h.msgRepo.Append(c.Request.Context(), conversationID, sender, req.Payload, req.ClientSeq)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.BroadcastMessage(conversationID, msg)
	c.JSON(http.StatusCreated, msg)
}

// DeleteMessage removes one message for everyone. The sender may delete their
// own message anywhere; a group admin may delete any message in their group.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	messageID := c.Param("message_id")
	userID := middleware.UserID(c)

	conv, ok := h.authorize(c, conversationID, userID)
	if !ok {
		return
	}

	msg, err := h.msgRepo.Get(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, err)
		return
	}
	if msg.ConversationID != conversationID {
		respondError(c, apperrors.InvalidArg("message does not belong to conversation"))
		return
	}
	if !conversation.CanDeleteMessage(conv, msg, userID) {
		respondError(c, apperrors.Forbidden("not allowed to delete this message"))
		return
	}

	if err := h.msgRepo.Delete(c.Request.Context(), messageID); err != nil {
		respondError(c, err)
		return
	}

	if msg.ImageRef != "" {
		if err := h.blobs.Delete(msg.ImageRef); err != nil && !errors.Is(err, blob.ErrNotFound) {
			log.Printf("blob cleanup for %s failed: %v", msg.ImageRef, err)
		}
	}

	h.hub.BroadcastDeletion(conversationID, messageID)
	c.Status(http.StatusNoContent)
}

func (h *MessageHandler) authorize(c *gin.Context, conversationID, userID string) (models.Conversation, bool) {
	return authorizeConversation(c, h.convRepo, h.connRepo, conversationID, userID)
}

// authorizeConversation resolves the conversation and applies its access rule.
// DM streams additionally require the two participants to be connected.
func authorizeConversation(c *gin.Context, convRepo repositories.ConversationRepository, connRepo repositories.ConnectionRepository, conversationID, userID string) (models.Conversation, bool) {
	if a, b, ok := conversation.DMParticipants(conversationID); ok {
		conv := models.Conversation{ID: conversationID, Kind: models.KindDM}
		if !conversation.IsDMParticipant(conversationID, userID) {
			respondError(c, apperrors.Forbidden("not a conversation participant"))
			return models.Conversation{}, false
		}
		connected, err := connRepo.AreConnected(c.Request.Context(), a, b)
		if err != nil {
			respondError(c, apperrors.Internal("failed to verify connection"))
			return models.Conversation{}, false
		}
		if !connected {
			respondError(c, apperrors.Forbidden("users are not connected"))
			return models.Conversation{}, false
		}
		return conv, true
	}

	conv, err := convRepo.Get(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err)
		return models.Conversation{}, false
	}

	if conv.Kind == models.KindGroup {
		member, err := convRepo.IsMember(c.Request.Context(), conversationID, userID)
		if err != nil {
			respondError(c, apperrors.Internal("failed to check membership"))
			return models.Conversation{}, false
		}
		if !member {
			respondError(c, apperrors.Forbidden("not a conversation participant"))
			return models.Conversation{}, false
		}
		return conv, true
	}
	if !conversation.CanAccess(conv, nil, userID) {
		respondError(c, apperrors.Forbidden("not a conversation participant"))
		return models.Conversation{}, false
	}
	return conv, true
}
