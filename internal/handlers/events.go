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

// EventHandler serves campus events. Publishing an event fans a notification
// out to the addressed department.
type EventHandler struct {
	eventRepo  repositories.EventRepository
	userRepo   repositories.UserRepository
	dispatcher *notify.Dispatcher
}

// NewEventHandler builds an EventHandler.
func NewEventHandler(eventRepo repositories.EventRepository, userRepo repositories.UserRepository, dispatcher *notify.Dispatcher) *EventHandler {
	return &EventHandler{eventRepo: eventRepo, userRepo: userRepo, dispatcher: dispatcher}
}

// CreateEvent publishes an event and broadcasts it to its audience.
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req struct {
		Title       string    `json:"title" binding:"required"`
		Description string    `json:"description"`
		Location    string    `json:"location"`
		Department  string    `json:"department"`
		StartsAt    time.Time `json:"starts_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidArg(err.Error()))
		return
	}
	if req.Department == "" {
		req.Department = models.DepartmentAll
	}

	userID := middleware.UserID(c)
	author, err := h.userRepo.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apperrors.Internal("failed to load author"))
		return
	}

	event, err := h.eventRepo.Create(c.Request.Context(), models.Event{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		Department:    req.Department,
		StartsAt:      req.StartsAt,
		CreatedBy:     author.ID,
		CreatedByName: author.DisplayName,
	})
	if err != nil {
		respondError(c, apperrors.Internal("failed to create event"))
		return
	}

	report, err := h.dispatcher.Broadcast(c.Request.Context(), event.Department, models.Notification{
		Type:           models.NotifyNewEvent,
		SenderID:       author.ID,
		SenderName:     author.DisplayName,
		SenderPhotoURL: author.PhotoURL,
		Message:        fmt.Sprintf("New event: %s", event.Title),
		RelatedID:      event.ID,
	})
	if err != nil {
		c.JSON(http.StatusCreated, gin.H{"event": event, "broadcast": notify.Report{}})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": event, "broadcast": report})
}

// ListEvents returns events ordered by start time.
func (h *EventHandler) ListEvents(c *gin.Context) {
	events, err := h.eventRepo.List(c.Request.Context())
	if err != nil {
		respondError(c, apperrors.Internal("failed to load events"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// DeleteEvent removes an event. Author only.
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	eventID := c.Param("event_id")
	event, err := h.eventRepo.Get(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}
	if event.CreatedBy != middleware.UserID(c) {
		respondError(c, apperrors.Forbidden("only the author can delete an event"))
		return
	}

	if err := h.eventRepo.Delete(c.Request.Context(), eventID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
