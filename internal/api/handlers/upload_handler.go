package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hasanRafi2002/asgn-12-server/internal/storage"
)

const (
	MsgUploadFieldsRequired = "filename, contentType and agentEmail are required"
	MsgUnsupportedImageType = "Only JPEG, PNG and WebP images are allowed"
	MsgUploadsDisabled      = "Image uploads are not configured"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UploadHandler hands out presigned URLs for listing images.
type UploadHandler struct {
	storage storage.IS3Storage
}

// NewUploadHandler creates a new UploadHandler. A nil storage disables uploads.
func NewUploadHandler(s storage.IS3Storage) *UploadHandler {
	return &UploadHandler{storage: s}
}

type propertyImageRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	AgentEmail  string `json:"agentEmail"`
}

// PropertyImageURL handles POST /api/uploads/property-image
func (h *UploadHandler) PropertyImageURL(c *gin.Context) {
	if h.storage == nil {
		respondMessage(c, http.StatusServiceUnavailable, MsgUploadsDisabled)
		return
	}

	var req propertyImageRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Filename = strings.TrimSpace(req.Filename)
	req.AgentEmail = strings.TrimSpace(req.AgentEmail)
	req.ContentType = strings.ToLower(strings.TrimSpace(req.ContentType))
	if req.Filename == "" || req.ContentType == "" || req.AgentEmail == "" {
		respondMessage(c, http.StatusBadRequest, MsgUploadFieldsRequired)
		return
	}
	if !allowedImageTypes[req.ContentType] {
		respondMessage(c, http.StatusBadRequest, MsgUnsupportedImageType)
		return
	}

	uploadURL, key, err := h.storage.GeneratePresignedPutURL(c.Request.Context(), req.AgentEmail, req.Filename, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uploadUrl": uploadURL,
		"key":       key,
		"imageUrl":  h.storage.PublicURL(key),
	})
}
