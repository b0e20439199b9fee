package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campus-sync/internal/apperrors"
	"campus-sync/internal/middleware"
	"campus-sync/internal/models"
	"campus-sync/internal/notify"
	"campus-sync/internal/repositories"
)

// NoticeHandler serves the digital notice board. Publishing a notice fans a
// notification out to the addressed department.
type NoticeHandler struct {
	noticeRepo repositories.NoticeRepository
	userRepo   repositories.UserRepository
	dispatcher *notify.Dispatcher
}

// NewNoticeHandler builds a NoticeHandler.
func NewNoticeHandler(noticeRepo repositories.NoticeRepository, userRepo repositories.UserRepository, dispatcher *notify.Dispatcher) *NoticeHandler {
	return &NoticeHandler{noticeRepo: noticeRepo, userRepo: userRepo, dispatcher: dispatcher}
}

// CreateNotice publishes a notice and broadcasts it to its audience. A run
// with some failed deliveries still succeeds; the report carries the split.
func (h *NoticeHandler) CreateNotice(c *gin.Context) {
	var req struct {
		Title          string     `json:"title" binding:"required"`
		Content        string     `json:"content" binding:"required"`
		Category       string     `json:"category"`
		Priority       string     `json:"priority"`
		DepartmentFrom string     `json:"department_from"`
		Pinned         bool       `json:"pinned"`
		ExpiresAt      *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidArg(err.Error()))
		return
	}
	if req.Category == "" {
		req.Category = "academic"
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}
	if req.DepartmentFrom == "" {
		req.DepartmentFrom = models.DepartmentAll
	}

	userID := middleware.UserID(c)
	author, err := h.userRepo.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apperrors.Internal("failed to load author"))
		return
	}

	notice, err := h.noticeRepo.Create(c.Request.Context(), models.Notice{
		Title:          req.Title,
		Content:        req.Content,
		Category:       req.Category,
		Priority:       req.Priority,
		DepartmentFrom: req.DepartmentFrom,
		Pinned:         req.Pinned,
		ExpiresAt:      req.ExpiresAt,
		CreatedBy:      author.ID,
		CreatedByName:  author.DisplayName,
	})
	if err != nil {
		respondError(c, apperrors.Internal("failed to create notice"))
		return
	}

	report, err := h.dispatcher.Broadcast(c.Request.Context(), notice.DepartmentFrom, models.Notification{
		Type:           models.NotifyNewNotice,
		SenderID:       author.ID,
		SenderName:     author.DisplayName,
		SenderPhotoURL: author.PhotoURL,
		Message:        fmt.Sprintf("New notice: %s", notice.Title),
		RelatedID:      notice.ID,
	})
	if err != nil {
		// The notice itself is live; only the fan-out failed outright.
		c.JSON(http.StatusCreated, gin.H{"notice": notice, "broadcast": notify.Report{}})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"notice": notice, "broadcast": report})
}

// ListNotices returns unexpired notices, pinned first.
func (h *NoticeHandler) ListNotices(c *gin.Context) {
	notices, err := h.noticeRepo.List(c.Request.Context())
	if err != nil {
		respondError(c, apperrors.Internal("failed to load notices"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"notices": notices})
}

// SetPinned toggles a notice's pinned flag. Author only.
func (h *NoticeHandler) SetPinned(c *gin.Context) {
	var req struct {
		Pinned bool `json:"pinned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidArg(err.Error()))
		return
	}

	noticeID := c.Param("notice_id")
	notice, err := h.noticeRepo.Get(c.Request.Context(), noticeID)
	if err != nil {
		respondError(c, err)
		return
	}
	if notice.CreatedBy != middleware.UserID(c) {
		respondError(c, apperrors.Forbidden("only the author can pin a notice"))
		return
	}

	if err := h.noticeRepo.SetPinned(c.Request.Context(), noticeID, req.Pinned); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteNotice removes a notice. Author only.
func (h *NoticeHandler) DeleteNotice(c *gin.Context) {
	noticeID := c.Param("notice_id")
	notice, err := h.noticeRepo.Get(c.Request.Context(), noticeID)
	if err != nil {
		respondError(c, err)
		return
	}
	if notice.CreatedBy != middleware.UserID(c) {
		respondError(c, apperrors.Forbidden("only the author can delete a notice"))
		return
	}

	if err := h.noticeRepo.Delete(c.Request.Context(), noticeID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
