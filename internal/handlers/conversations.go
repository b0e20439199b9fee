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
)

// ConversationHandler manages channels, groups and DM resolution.
type ConversationHandler struct {
	convRepo repositories.ConversationRepository
	connRepo repositories.ConnectionRepository
	msgRepo  repositories.MessageRepository
	blobs    blob.Store
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(convRepo repositories.ConversationRepository, connRepo repositories.ConnectionRepository, msgRepo repositories.MessageRepository, blobs blob.Store) *ConversationHandler {
	return &ConversationHandler{convRepo: convRepo, connRepo: connRepo, msgRepo: msgRepo, blobs: blobs}
}

// ListChannels returns the public channels.
func (h *ConversationHandler) ListChannels(c *gin.Context) {
	channels, err := h.convRepo.ListChannels(c.Request.Context())
	if err != nil {
		respondError(c, apperrors.Internal("failed to load channels"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

// ResolveDM derives the canonical DM conversation id for the caller and a
// connected peer. The id is computable client-side too; this endpoint also
// enforces that the two users are actually connected.
func (h *ConversationHandler) ResolveDM(c *gin.Context) {
	userID := middleware.UserID(c)
	peerID := c.Param("peer_id")
	if peerID == "" || peerID == userID {
		respondError(c, apperrors.InvalidArg("invalid peer id"))
		return
	}

	connected, err := h.connRepo.AreConnected(c.Request.Context(), userID, peerID)
	if err != nil {
		respondError(c, apperrors.Internal("failed to verify connection"))
		return
	}
	if !connected {
		respondError(c, apperrors.Forbidden("users are not connected"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation_id": conversation.DMID(userID, peerID)})
}

// CreateGroup creates a group with the caller as admin.
func (h *ConversationHandler) CreateGroup(c *gin.Context) {
	var req struct {
		Name      string   `json:"name" binding:"required"`
		MemberIDs []string `json:"member_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidArg(err.Error()))
		return
	}
	if !conversation.ValidGroupName(req.Name) {
		respondError(c, apperrors.InvalidArg("invalid group name"))
		return
	}

	userID := middleware.UserID(c)
	group, err := h.convRepo.CreateGroup(c.Request.Context(), userID, req.Name, req.MemberIDs)
	if err != nil {
		respondError(c, apperrors.Internal("failed to create group"))
		return
	}
	c.JSON(http.StatusCreated, group)
}

// ListGroups returns the caller's groups.
func (h *ConversationHandler) ListGroups(c *gin.Context) {
	userID := middleware.UserID(c)
	groups, err := h.convRepo.ListGroupsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apperrors.Internal("failed to load groups"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// GetGroup returns one group with its member list. Members only.
func (h *ConversationHandler) GetGroup(c *gin.Context) {
	groupID := c.Param("group_id")
	group, members, err := h.loadGroup(c, groupID)
	if err != nil {
		return
	}

	userID := middleware.UserID(c)
	if !conversation.CanAccess(group, members, userID) {
		respondError(c, apperrors.Forbidden("not a group member"))
		return
	}
	c.JSON(http.StatusOK, models.GroupSummary{Conversation: group, Members: members})
}

// AddMembers lets the admin add users to the group.
func (h *ConversationHandler) AddMembers(c *gin.Context) {
	var req struct {
		MemberIDs []string `json:"member_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidArg(err.Error()))
		return
	}

	groupID := c.Param("group_id")
	group, _, err := h.loadGroup(c, groupID)
	if err != nil {
		return
	}
	if group.AdminID != middleware.UserID(c) {
		respondError(c, apperrors.Forbidden("only the admin can add members"))
		return
	}

	if err := h.convRepo.AddMembers(c.Request.Context(), groupID, req.MemberIDs); err != nil {
		respondError(c, apperrors.Internal("failed to add members"))
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveMember removes a member. The admin may remove any other member; a
// member may remove only themselves. The admin cannot be removed.
func (h *ConversationHandler) RemoveMember(c *gin.Context) {
	groupID := c.Param("group_id")
	memberID := c.Param("member_id")

	group, _, err := h.loadGroup(c, groupID)
	if err != nil {
		return
	}

	userID := middleware.UserID(c)
	if memberID == group.AdminID {
		respondError(c, apperrors.InvalidArg("the admin cannot leave; delete the group instead"))
		return
	}
	if userID != group.AdminID && userID != memberID {
		respondError(c, apperrors.Forbidden("cannot remove another member"))
		return
	}

	if err := h.convRepo.RemoveMember(c.Request.Context(), groupID, memberID); err != nil {
		respondError(c, apperrors.Internal("failed to remove member"))
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteGroup deletes the group and its message stream. Admin only. Image
// attachments referenced by the deleted stream are reclaimed best effort.
func (h *ConversationHandler) DeleteGroup(c *gin.Context) {
	groupID := c.Param("group_id")
	group, _, err := h.loadGroup(c, groupID)
	if err != nil {
		return
	}
	if group.AdminID != middleware.UserID(c) {
		respondError(c, apperrors.Forbidden("only the admin can delete the group"))
		return
	}

	refs, err := h.msgRepo.DeleteByConversation(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, apperrors.Internal("failed to delete messages"))
		return
	}
	if err := h.convRepo.DeleteGroup(c.Request.Context(), groupID); err != nil {
		respondError(c, err)
		return
	}

	for _, ref := range refs {
		if err := h.blobs.Delete(ref); err != nil && !errors.Is(err, blob.ErrNotFound) {
			log.Printf("blob cleanup for %s failed: %v", ref, err)
		}
	}
	c.Status(http.StatusNoContent)
}

func (h *ConversationHandler) loadGroup(c *gin.Context, groupID string) (models.Conversation, []string, error) {
	group, err := h.convRepo.Get(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return models.Conversation{}, nil, err
	}
	if group.Kind != models.KindGroup {
		respondError(c, apperrors.NotFound("group not found"))
		return models.Conversation{}, nil, errors.New("not a group")
	}

	members, err := h.convRepo.GroupMembers(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, apperrors.Internal("failed to load members"))
		return models.Conversation{}, nil, err
	}
	return group, members, nil
}
