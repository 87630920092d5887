package images

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biffcrash1/image-viewer/api/common"
	"github.com/biffcrash1/image-viewer/database/models"
	"github.com/biffcrash1/image-viewer/database/repo/images"
)

type ImageDTO struct {
	ID           uint     `json:"id"`
	FileName     string   `json:"file_name"`
	RelativePath string   `json:"relative_path"`
	FileSize     int64    `json:"file_size"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Rating       int      `json:"rating"`
	Tags         []string `json:"tags"`
	CreatedAt    int64    `json:"created_at"`
}

type ImageRequestBody struct {
	AnyTags     []string `json:"any_tags"`
	AllTags     []string `json:"all_tags"`
	ExcludeTags []string `json:"exclude_tags"`
	MinRating   *int     `json:"min_rating"`
	MaxRating   *int     `json:"max_rating"`
	Search      string   `json:"search"`
	Sort        string   `json:"sort"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type ImageListResponse struct {
	Images     []*ImageDTO `json:"images"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// ListImages returns a filtered, paginated page of the catalog.
func (h *Handler) ListImages(c *gin.Context) {
	var body ImageRequestBody

	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	page, limit := body.Page, body.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = h.pageSizeDefault
	}
	if limit > h.pageSizeMax {
		limit = h.pageSizeMax
	}

	if body.MinRating != nil && !models.ValidRating(*body.MinRating) {
		common.RespondError(c, http.StatusBadRequest, "min_rating out of range")
		return
	}
	if body.MaxRating != nil && !models.ValidRating(*body.MaxRating) {
		common.RespondError(c, http.StatusBadRequest, "max_rating out of range")
		return
	}

	filter := images.ListFilter{
		AnyTags:     body.AnyTags,
		AllTags:     body.AllTags,
		ExcludeTags: body.ExcludeTags,
		MinRating:   body.MinRating,
		MaxRating:   body.MaxRating,
		Search:      body.Search,
		Sort:        body.Sort,
		Page:        page,
		PageSize:    limit,
	}

	result, err := h.catalog.ListImages(c.Request.Context(), filter)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to get image list")
		return
	}

	common.RespondSuccess(c, ImageListResponse{
		Images:     toImageDTOs(result.Images),
		Total:      result.Total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(result.Total) / float64(limit))),
	})
}

func toImageDTO(image *models.Image) *ImageDTO {
	if image == nil {
		return nil
	}

	tagNames := make([]string, 0, len(image.Tags))
	for _, tag := range image.Tags {
		tagNames = append(tagNames, tag.Name)
	}

	return &ImageDTO{
		ID:           image.ID,
		FileName:     image.FileName,
		RelativePath: image.RelativePath,
		FileSize:     image.FileSize,
		Width:        image.Width,
		Height:       image.Height,
		Rating:       image.Rating,
		Tags:         tagNames,
		CreatedAt:    image.CreatedAt.Unix(),
	}
}

func toImageDTOs(images []*models.Image) []*ImageDTO {
	dtos := make([]*ImageDTO, len(images))
	for i, image := range images {
		dtos[i] = toImageDTO(image)
	}
	return dtos
}
