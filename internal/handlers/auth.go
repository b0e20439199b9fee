package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"campus-sync/internal/apperrors"
	"campus-sync/internal/middleware"
	"campus-sync/internal/models"
	"campus-sync/internal/presence"
	"campus-sync/internal/repositories"
	"campus-sync/internal/telemetry"
)

// AuthHandler gates sign-in on institutional identity and issues session tokens.
type AuthHandler struct {
	userRepo      repositories.UserRepository
	tokens        *middleware.TokenManager
	tracker       *presence.Tracker
	allowedDomain string
	audit         *telemetry.AuditEmitter
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(userRepo repositories.UserRepository, tokens *middleware.TokenManager, tracker *presence.Tracker, allowedDomain string, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{
		userRepo:      userRepo,
		tokens:        tokens,
		tracker:       tracker,
		allowedDomain: allowedDomain,
		audit:         audit,
	}
}

// Login validates the asserted identity and opens a session. Only verified
// institutional addresses are admitted; everyone else is rejected before any
// user record is written.
func (h *AuthHandler) Login(c *gin.Context) {
	var profile models.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		respondError(c, apperrors.InvalidArg(err.Error()))
		return
	}

	if !profile.EmailVerified {
		respondError(c, apperrors.Forbidden("email not verified"))
		return
	}
	if !strings.HasSuffix(strings.ToLower(profile.Email), "@"+h.allowedDomain) {
		respondError(c, apperrors.Forbidden("not an institutional account"))
		return
	}

	user, err := h.userRepo.UpsertOnLogin(c.Request.Context(), models.User{
		ID:          profile.Subject,
		DisplayName: profile.DisplayName,
		PhotoURL:    profile.PhotoURL,
		Email:       strings.ToLower(profile.Email),
	})
	if err != nil {
		respondError(c, apperrors.Internal("failed to record sign-in"))
		return
	}

	token, err := h.tokens.Issue(user.ID, user.DisplayName)
	if err != nil {
		respondError(c, apperrors.Internal("failed to issue session"))
		return
	}

	if h.audit != nil {
		h.audit.Emit(c.Request.Context(), "auth", "INFO", "user signed in", requestIDFromContext(c), &user.ID)
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Logout closes the session and writes the explicit offline presence record.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := middleware.UserID(c)
	h.tracker.SetOffline(userID)

	if h.audit != nil {
		h.audit.Emit(c.Request.Context(), "auth", "INFO", "user signed out", requestIDFromContext(c), &userID)
	}
	c.Status(http.StatusNoContent)
}
