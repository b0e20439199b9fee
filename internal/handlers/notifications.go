package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-sync/internal/apperrors"
	"campus-sync/internal/middleware"
	"campus-sync/internal/repositories"
)

// NotificationHandler serves the per-user notification inbox.
type NotificationHandler struct {
	repo repositories.NotificationRepository
}

// NewNotificationHandler builds a NotificationHandler.
func NewNotificationHandler(repo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

// ListInbox returns the caller's notifications, newest first.
func (h *NotificationHandler) ListInbox(c *gin.Context) {
	userID := middleware.UserID(c)
	items, err := h.repo.ListInbox(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apperrors.Internal("failed to load notifications"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// MarkRead flags one notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.repo.MarkRead(c.Request.Context(), userID, c.Param("notification_id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead flags the whole inbox as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.repo.MarkAllRead(c.Request.Context(), userID); err != nil {
		respondError(c, apperrors.Internal("failed to mark notifications"))
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete removes one notification from the inbox.
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.repo.Delete(c.Request.Context(), userID, c.Param("notification_id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
