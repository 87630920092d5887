package images

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/biffcrash1/image-viewer/api/common"
	"github.com/biffcrash1/image-viewer/internal/catalog"
	"github.com/biffcrash1/image-viewer/utils/mime"
)

// GetFile streams the original image bytes.
func (h *Handler) GetFile(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid image id")
		return
	}

	image, err := h.catalog.GetImage(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			common.RespondError(c, http.StatusNotFound, "image not found")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "Failed to get image")
		return
	}

	reader, err := h.library.GetWithContext(c.Request.Context(), image.RelativePath)
	if err != nil {
		common.RespondError(c, http.StatusNotFound, "image file not found")
		return
	}
	defer reader.Close()

	contentType := mime.TypeByPath(image.RelativePath)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Length", strconv.FormatInt(image.FileSize, 10))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Headers already sent, nothing sensible to respond with.
		c.Abort()
	}
}
