package images

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/biffcrash1/image-viewer/api/common"
	"github.com/biffcrash1/image-viewer/internal/catalog"
)

// GetThumbnail serves a downscaled preview. The width query parameter
// snaps to the nearest configured width.
func (h *Handler) GetThumbnail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid image id")
		return
	}

	requestedWidth := 0
	if raw := c.Query("width"); raw != "" {
		requestedWidth, err = strconv.Atoi(raw)
		if err != nil || requestedWidth <= 0 {
			common.RespondError(c, http.StatusBadRequest, "invalid width")
			return
		}
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

	data, width, err := h.thumbs.Get(c.Request.Context(), image.RelativePath, requestedWidth)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to render thumbnail")
		return
	}

	c.Header("X-Thumbnail-Width", strconv.Itoa(width))
	c.Data(http.StatusOK, "image/jpeg", data)
}
