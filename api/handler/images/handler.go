package images

import (
	"github.com/biffcrash1/image-viewer/internal/catalog"
	"github.com/biffcrash1/image-viewer/internal/thumbnail"
	"github.com/biffcrash1/image-viewer/storage/local"
)

// Handler serves the image endpoints.
type Handler struct {
	catalog         *catalog.Service
	thumbs          *thumbnail.Service
	library         *local.Storage
	pageSizeDefault int
	pageSizeMax     int
}

// NewHandler creates the image handler.
func NewHandler(catalogService *catalog.Service, thumbs *thumbnail.Service, library *local.Storage, pageSizeDefault, pageSizeMax int) *Handler {
	if pageSizeDefault <= 0 {
		pageSizeDefault = 50
	}
	if pageSizeMax <= 0 {
		pageSizeMax = 500
	}
	return &Handler{
		catalog:         catalogService,
		thumbs:          thumbs,
		library:         library,
		pageSizeDefault: pageSizeDefault,
		pageSizeMax:     pageSizeMax,
	}
}
