package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-sync/internal/apperrors"
	"campus-sync/internal/middleware"
	"campus-sync/internal/models"
	"campus-sync/internal/notify"
	"campus-sync/internal/repositories"
)

// ConnectionHandler manages the social graph endpoints.
type ConnectionHandler struct {
	connRepo   repositories.ConnectionRepository
	userRepo   repositories.UserRepository
	dispatcher *notify.Dispatcher
}

// NewConnectionHandler builds a ConnectionHandler.
func NewConnectionHandler(connRepo repositories.ConnectionRepository, userRepo repositories.UserRepository, dispatcher *notify.Dispatcher) *ConnectionHandler {
	return &ConnectionHandler{connRepo: connRepo, userRepo: userRepo, dispatcher: dispatcher}
}

// SendRequest opens a pending connection between the caller and a peer.
func (h *ConnectionHandler) SendRequest(c *gin.Context) {
	var req struct {
		PeerID string `json:"peer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidArg(err.Error()))
		return
	}

	userID := middleware.UserID(c)
	from, err := h.userRepo.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apperrors.Internal("failed to load sender"))
		return
	}
	to, err := h.userRepo.GetUser(c.Request.Context(), req.PeerID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.connRepo.SendRequest(c.Request.Context(), from, to); err != nil {
		respondError(c, err)
		return
	}

	_ = h.dispatcher.Notify(c.Request.Context(), models.Notification{
		RecipientID:    to.ID,
		Type:           models.NotifyConnectionRequest,
		SenderID:       from.ID,
		SenderName:     from.DisplayName,
		SenderPhotoURL: from.PhotoURL,
		Message:        fmt.Sprintf("%s sent you a connection request", from.DisplayName),
		RelatedID:      from.ID,
	})
	c.Status(http.StatusCreated)
}

// AcceptRequest promotes a received request to a connection.
func (h *ConnectionHandler) AcceptRequest(c *gin.Context) {
	userID := middleware.UserID(c)
	peerID := c.Param("peer_id")

	recipient, err := h.userRepo.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apperrors.Internal("failed to load user"))
		return
	}
	requester, err := h.userRepo.GetUser(c.Request.Context(), peerID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.connRepo.AcceptRequest(c.Request.Context(), recipient, requester); err != nil {
		respondError(c, err)
		return
	}

	_ = h.dispatcher.Notify(c.Request.Context(), models.Notification{
		RecipientID:    requester.ID,
		Type:           models.NotifyConnectionAccept,
		SenderID:       recipient.ID,
		SenderName:     recipient.DisplayName,
		SenderPhotoURL: recipient.PhotoURL,
		Message:        fmt.Sprintf("%s accepted your connection request", recipient.DisplayName),
		RelatedID:      recipient.ID,
	})
	c.Status(http.StatusNoContent)
}

// CancelRequest withdraws a pending request, or declines a received one. Both
// pending records disappear; no notification is produced.
func (h *ConnectionHandler) CancelRequest(c *gin.Context) {
	userID := middleware.UserID(c)
	peerID := c.Param("peer_id")

	if err := h.connRepo.CancelRequest(c.Request.Context(), userID, peerID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Disconnect severs an established connection from both sides.
func (h *ConnectionHandler) Disconnect(c *gin.Context) {
	userID := middleware.UserID(c)
	peerID := c.Param("peer_id")

	if err := h.connRepo.Disconnect(c.Request.Context(), userID, peerID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListConnections returns the caller's edges, optionally filtered by state.
func (h *ConnectionHandler) ListConnections(c *gin.Context) {
	userID := middleware.UserID(c)

	state := models.ConnectionState(c.Query("state"))
	switch state {
	case "", models.ConnectionConnected, models.ConnectionRequestSent, models.ConnectionRequestReceived:
	default:
		respondError(c, apperrors.InvalidArg("invalid state filter"))
		return
	}

	edges, err := h.connRepo.ListEdges(c.Request.Context(), userID, state)
	if err != nil {
		respondError(c, apperrors.Internal("failed to load connections"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": edges})
}
