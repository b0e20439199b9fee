package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campus-sync/internal/apperrors"
	"campus-sync/internal/blob"
	"campus-sync/internal/models"
	"campus-sync/internal/repositories"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func userIDFromContext(c *gin.Context) *string {
	if val, ok := c.Get("userID"); ok {
		if id, ok := val.(string); ok && id != "" {
			return &id
		}
	}

	if header := c.GetHeader("X-User-ID"); header != "" {
		return &header
	}

	return nil
}

// respondError maps a classified error onto its HTTP status. Repository and
// domain sentinels are classified first; anything unrecognized reports as a
// generic internal error rather than leaking its cause.
func respondError(c *gin.Context, err error) {
	code, msg := classify(err)
	status := http.StatusInternalServerError
	switch code {
	case apperrors.CodeInvalidArgument:
		status = http.StatusBadRequest
	case apperrors.CodeUnauthenticated:
		status = http.StatusUnauthorized
	case apperrors.CodePermissionDenied:
		status = http.StatusForbidden
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeAlreadyExists:
		status = http.StatusConflict
	case apperrors.CodeUnavailable:
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func classify(err error) (apperrors.Code, string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code, appErr.Message
	}

	switch {
	case errors.Is(err, repositories.ErrUserNotFound),
		errors.Is(err, repositories.ErrConversationNotFound),
		errors.Is(err, repositories.ErrMessageNotFound),
		errors.Is(err, repositories.ErrNotificationNotFound),
		errors.Is(err, repositories.ErrPostNotFound),
		errors.Is(err, repositories.ErrNoticeNotFound),
		errors.Is(err, repositories.ErrEventNotFound),
		errors.Is(err, repositories.ErrNoPendingRequest),
		errors.Is(err, repositories.ErrNotConnected),
		errors.Is(err, blob.ErrNotFound):
		return apperrors.CodeNotFound, err.Error()
	case errors.Is(err, repositories.ErrSelfConnection),
		errors.Is(err, models.ErrEmptyMessage):
		return apperrors.CodeInvalidArgument, err.Error()
	case errors.Is(err, repositories.ErrConnectionExists):
		return apperrors.CodeAlreadyExists, err.Error()
	}
	return apperrors.CodeInternal, "internal error"
}
