package images

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biffcrash1/image-viewer/api/common"
	"github.com/biffcrash1/image-viewer/database/models"
)

type RatingRequestBody struct {
	IDs    []uint `json:"ids" binding:"required"`
	Rating int    `json:"rating"`
}

// SetRating sets the rating for a batch of images.
func (h *Handler) SetRating(c *gin.Context) {
	var body RatingRequestBody

	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !models.ValidRating(body.Rating) {
		common.RespondError(c, http.StatusBadRequest, "rating out of range")
		return
	}

	updated, err := h.catalog.SetRating(c.Request.Context(), body.IDs, body.Rating)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to set rating")
		return
	}

	common.RespondSuccess(c, gin.H{
		"updated": updated,
		"rating":  body.Rating,
	})
}
