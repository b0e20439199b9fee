package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"campus-sync/internal/apperrors"
	"campus-sync/internal/blob"
	"campus-sync/internal/middleware"
	"campus-sync/internal/models"
	"campus-sync/internal/notify"
	"campus-sync/internal/repositories"
	"campus-sync/internal/ws"
)

// PostHandler serves the campus feed.
type PostHandler struct {
	postRepo   repositories.PostRepository
	userRepo   repositories.UserRepository
	msgRepo    repositories.MessageRepository
	convRepo   repositories.ConversationRepository
	connRepo   repositories.ConnectionRepository
	dispatcher *notify.Dispatcher
	blobs      blob.Store
	hub        *ws.Hub
}

// NewPostHandler builds a PostHandler.
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, msgRepo repositories.MessageRepository, convRepo repositories.ConversationRepository, connRepo repositories.ConnectionRepository, dispatcher *notify.Dispatcher, blobs blob.Store, hub *ws.Hub) *PostHandler {
	return &PostHandler{
		postRepo:   postRepo,
		userRepo:   userRepo,
		msgRepo:    msgRepo,
		convRepo:   convRepo,
		connRepo:   connRepo,
		dispatcher: dispatcher,
		blobs:      blobs,
		hub:        hub,
	}
}

// CreatePost publishes a feed post with optional image attachment.
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req struct {
		Content  string `json:"content"`
		ImageRef string `json:"image_ref"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidArg(err.Error()))
		return
	}
	if strings.TrimSpace(req.Content) == "" && req.ImageRef == "" {
		respondError(c, apperrors.InvalidArg("post needs text or an image"))
		return
	}

	userID := middleware.UserID(c)
	author, err := h.userRepo.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apperrors.Internal("failed to load author"))
		return
	}

	post := models.Post{
		AuthorID:       author.ID,
		AuthorName:     author.DisplayName,
		AuthorPhotoURL: author.PhotoURL,
		Content:        req.Content,
		ImageRef:       req.ImageRef,
	}
	if req.ImageRef != "" {
		post.ImageURL = h.blobs.URL(req.ImageRef)
	}

	stored, err := h.postRepo.Create(c.Request.Context(), post)
	if err != nil {
		respondError(c, apperrors.Internal("failed to create post"))
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// ListPosts returns the feed, newest first.
func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.postRepo.List(c.Request.Context())
	if err != nil {
		respondError(c, apperrors.Internal("failed to load posts"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetPost returns one post with its like set.
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postRepo.Get(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost removes the caller's own post; its image is reclaimed best effort.
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID := c.Param("post_id")
	post, err := h.postRepo.Get(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	if post.AuthorID != middleware.UserID(c) {
		respondError(c, apperrors.Forbidden("only the author can delete a post"))
		return
	}

	ref, err := h.postRepo.Delete(c.Request.Context(), postID)
	if err != nil {
		respondError(c, apperrors.Internal("failed to delete post"))
		return
	}
	if ref != "" {
		if err := h.blobs.Delete(ref); err != nil && !errors.Is(err, blob.ErrNotFound) {
			log.Printf("blob cleanup for %s failed: %v", ref, err)
		}
	}
	c.Status(http.StatusNoContent)
}

// ToggleLike flips the caller's like on the post. Liking notifies the author;
// unliking is silent.
func (h *PostHandler) ToggleLike(c *gin.Context) {
	postID := c.Param("post_id")
	userID := middleware.UserID(c)

	post, err := h.postRepo.Get(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}

	liked, err := h.postRepo.ToggleLike(c.Request.Context(), postID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if liked {
		actor, err := h.userRepo.GetUser(c.Request.Context(), userID)
		if err == nil {
			_ = h.dispatcher.Notify(c.Request.Context(), models.Notification{
				RecipientID:    post.AuthorID,
				Type:           models.NotifyLike,
				SenderID:       actor.ID,
				SenderName:     actor.DisplayName,
				SenderPhotoURL: actor.PhotoURL,
				Message:        fmt.Sprintf("%s liked your post", actor.DisplayName),
				RelatedID:      postID,
			})
		}
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// AddComment appends a comment and notifies the post author.
func (h *PostHandler) AddComment(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidArg(err.Error()))
		return
	}

	postID := c.Param("post_id")
	post, err := h.postRepo.Get(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}

	userID := middleware.UserID(c)
	author, err := h.userRepo.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apperrors.Internal("failed to load commenter"))
		return
	}

	comment, err := h.postRepo.AddComment(c.Request.Context(), models.Comment{
		PostID:         postID,
		AuthorID:       author.ID,
		AuthorName:     author.DisplayName,
		AuthorPhotoURL: author.PhotoURL,
		Text:           req.Text,
	})
	if err != nil {
		respondError(c, apperrors.Internal("failed to add comment"))
		return
	}

	_ = h.dispatcher.Notify(c.Request.Context(), models.Notification{
		RecipientID:    post.AuthorID,
		Type:           models.NotifyComment,
		SenderID:       author.ID,
		SenderName:     author.DisplayName,
		SenderPhotoURL: author.PhotoURL,
		Message:        fmt.Sprintf("%s commented on your post", author.DisplayName),
		RelatedID:      postID,
	})
	c.JSON(http.StatusCreated, comment)
}

// ListComments returns a post's comments, oldest first.
func (h *PostHandler) ListComments(c *gin.Context) {
	comments, err := h.postRepo.ListComments(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		respondError(c, apperrors.Internal("failed to load comments"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// SharePost appends a shared-post message to a conversation and notifies the
// post author.
func (h *PostHandler) SharePost(c *gin.Context) {
	var req struct {
		ConversationID string `json:"conversation_id" binding:"required"`
		ClientSeq      int64  `json:"client_seq"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidArg(err.Error()))
		return
	}

	postID := c.Param("post_id")
	post, err := h.postRepo.Get(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}

	userID := middleware.UserID(c)
	if _, ok := authorizeConversation(c, h.convRepo, h.connRepo, req.ConversationID, userID); !ok {
		return
	}

	sender, err := h.userRepo.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apperrors.Internal("failed to load sender"))
		return
	}

	msg, err := h.msgRepo.Append(c.Request.Context(), req.ConversationID, sender, models.Payload{SharedPostID: postID}, req.ClientSeq)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.BroadcastMessage(req.ConversationID, msg)
	_ = h.dispatcher.Notify(c.Request.Context(), models.Notification{
		RecipientID:    post.AuthorID,
		Type:           models.NotifyPostShare,
		SenderID:       sender.ID,
		SenderName:     sender.DisplayName,
		SenderPhotoURL: sender.PhotoURL,
		Message:        fmt.Sprintf("%s shared your post", sender.DisplayName),
		RelatedID:      postID,
	})
	c.JSON(http.StatusCreated, msg)
}
