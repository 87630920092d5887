package tags

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biffcrash1/image-viewer/api/common"
	"github.com/biffcrash1/image-viewer/internal/catalog"
)

// Handler serves the tag endpoints.
type Handler struct {
	catalog *catalog.Service
}

// NewHandler creates the tag handler.
func NewHandler(catalogService *catalog.Service) *Handler {
	return &Handler{catalog: catalogService}
}

// ListUsed returns tags attached to at least one image, with usage
// counts.
func (h *Handler) ListUsed(c *gin.Context) {
	usages, err := h.catalog.UsedTags(c.Request.Context())
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to list tags")
		return
	}

	common.RespondSuccess(c, gin.H{
		"tags":  usages,
		"total": len(usages),
	})
}
