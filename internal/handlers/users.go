package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-sync/internal/apperrors"
	"campus-sync/internal/middleware"
	"campus-sync/internal/repositories"
)

// UserHandler serves the campus directory and profile updates.
type UserHandler struct {
	userRepo repositories.UserRepository
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// ListUsers returns the campus directory.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userRepo.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, apperrors.Internal("failed to load users"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetUser returns one user's profile.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userRepo.GetUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile lets the signed-in user edit their own profile fields.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.UserID(c)
	if c.Param("user_id") != userID {
		respondError(c, apperrors.Forbidden("cannot edit another user's profile"))
		return
	}

	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidArg(err.Error()))
		return
	}
	if len(req) == 0 {
		respondError(c, apperrors.InvalidArg("no fields to update"))
		return
	}

	if err := h.userRepo.UpdateProfile(c.Request.Context(), userID, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
