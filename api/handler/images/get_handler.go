package images

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/biffcrash1/image-viewer/api/common"
	"github.com/biffcrash1/image-viewer/internal/catalog"
)

// GetImage returns one image's metadata with its tags.
func (h *Handler) GetImage(c *gin.Context) {
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

	common.RespondSuccess(c, toImageDTO(image))
}
