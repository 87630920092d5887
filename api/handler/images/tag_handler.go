package images

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biffcrash1/image-viewer/api/common"
)

type TagRequestBody struct {
	IDs    []uint   `json:"ids" binding:"required"`
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

// TagImages adds and removes tags over a batch of images.
func (h *Handler) TagImages(c *gin.Context) {
	var body TagRequestBody

	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(body.Add) == 0 && len(body.Remove) == 0 {
		common.RespondError(c, http.StatusBadRequest, "nothing to add or remove")
		return
	}

	if err := h.catalog.TagImages(c.Request.Context(), body.IDs, body.Add, body.Remove); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to update tags")
		return
	}

	common.RespondSuccessMessage(c, "tags updated", gin.H{
		"ids":     body.IDs,
		"added":   body.Add,
		"removed": body.Remove,
	})
}
