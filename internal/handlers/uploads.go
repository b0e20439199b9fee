package handlers

import (
	"io"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"campus-sync/internal/apperrors"
	"campus-sync/internal/blob"
	"campus-sync/internal/middleware"
)

// maxUploadBytes caps a single image upload.
const maxUploadBytes = 10 << 20

// UploadHandler stores and serves image attachments.
type UploadHandler struct {
	blobs blob.Store
}

// NewUploadHandler builds an UploadHandler.
func NewUploadHandler(blobs blob.Store) *UploadHandler {
	return &UploadHandler{blobs: blobs}
}

// Upload accepts a multipart image and returns its ref and serving URL.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, apperrors.InvalidArg("missing file"))
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		respondError(c, apperrors.InvalidArg("file too large"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		respondError(c, apperrors.Internal("failed to read file"))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	userID := middleware.UserID(c)
	ref, err := h.blobs.Put(path.Join("uploads", userID), data, contentType)
	if err != nil {
		respondError(c, apperrors.Internal("failed to store file"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ref": ref, "url": h.blobs.URL(ref)})
}

// Serve streams stored blob bytes.
func (h *UploadHandler) Serve(c *gin.Context) {
	ref := c.Param("ref")
	if len(ref) > 0 && ref[0] == '/' {
		ref = ref[1:]
	}

	data, contentType, err := h.blobs.Get(ref)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, contentType, data)
}
