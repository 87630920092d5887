package images

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/biffcrash1/image-viewer/database/models"
	"gorm.io/gorm"
)

// Sort orders accepted by List.
const (
	SortNameAsc     = "name_asc"
	SortNameDesc    = "name_desc"
	SortCreatedAsc  = "created_asc"
	SortCreatedDesc = "created_desc"
)

// ListFilter selects a page of the catalog.
//
// Tag filtering semantics: ExcludeTags always win. AnyTags matches
// images carrying at least one of the names, AllTags matches images
// carrying every name. When both include groups are set, an image
// matching either group passes.
type ListFilter struct {
	AnyTags     []string
	AllTags     []string
	ExcludeTags []string
	MinRating   *int
	MaxRating   *int
	Search      string
	Sort        string
	Page        int
	PageSize    int
}

const (
	existsAnyTag = `EXISTS (SELECT 1 FROM image_tags it JOIN tags t ON t.id = it.tag_id
		WHERE it.image_id = images.id AND t.name IN ?)`
	existsOneTag = `EXISTS (SELECT 1 FROM image_tags it JOIN tags t ON t.id = it.tag_id
		WHERE it.image_id = images.id AND t.name = ?)`
	notExistsTags = `NOT EXISTS (SELECT 1 FROM image_tags it JOIN tags t ON t.id = it.tag_id
		WHERE it.image_id = images.id AND t.name IN ?)`
)

// Repository is the image catalog repository.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new image repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithContext returns a repository bound to ctx.
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

// DB returns the underlying *gorm.DB instance.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Create inserts an image record.
func (r *Repository) Create(image *models.Image) error {
	return r.db.Create(image).Error
}

// CreateBatch inserts image records in chunks.
func (r *Repository) CreateBatch(images []*models.Image) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.CreateInBatches(images, 200).Error
}

// UpsertByRelativePath updates the file metadata of an existing
// record or inserts a new one. Tags and rating are left untouched on
// update.
func (r *Repository) UpsertByRelativePath(image *models.Image) error {
	var existing models.Image
	err := r.db.Where("relative_path = ?", image.RelativePath).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.Create(image).Error
		}
		return err
	}

	return r.db.Model(&existing).Updates(map[string]interface{}{
		"file_name": image.FileName,
		"file_size": image.FileSize,
		"mod_time":  image.ModTime,
		"width":     image.Width,
		"height":    image.Height,
	}).Error
}

// GetByID fetches an image with its tags preloaded.
func (r *Repository) GetByID(id uint) (*models.Image, error) {
	var image models.Image
	err := r.db.Preload("Tags").First(&image, id).Error
	return &image, err
}

// GetByIDs fetches images by ID with tags preloaded.
func (r *Repository) GetByIDs(ids []uint) ([]*models.Image, error) {
	if len(ids) == 0 {
		return []*models.Image{}, nil
	}
	var images []*models.Image
	err := r.db.Preload("Tags").Where("id IN ?", ids).Find(&images).Error
	return images, err
}

// GetByRelativePath fetches an image by its library-relative path.
func (r *Repository) GetByRelativePath(relativePath string) (*models.Image, error) {
	var image models.Image
	err := r.db.Preload("Tags").Where("relative_path = ?", relativePath).First(&image).Error
	return &image, err
}

// ListRelativePaths returns every known relative path. Used by the
// rescan reconciliation pass.
func (r *Repository) ListRelativePaths() ([]string, error) {
	var paths []string
	err := r.db.Model(&models.Image{}).Pluck("relative_path", &paths).Error
	return paths, err
}

// DeleteByRelativePaths removes the records for the given paths and
// clears their tag links in the same transaction.
func (r *Repository) DeleteByRelativePaths(paths []string) (int64, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	var removed int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.Image{}).Where("relative_path IN ?", paths).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Exec("DELETE FROM image_tags WHERE image_id IN ?", ids).Error; err != nil {
			return err
		}
		result := tx.Unscoped().Where("id IN ?", ids).Delete(&models.Image{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return nil
	})
	return removed, err
}

// AddTags links the given tags to every image in ids. Existing links
// are kept.
func (r *Repository) AddTags(ids []uint, tags []*models.Tag) error {
	if len(ids) == 0 || len(tags) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			image := models.Image{Model: gorm.Model{ID: id}}
			if err := tx.Model(&image).Association("Tags").Append(tags); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveTagsByName unlinks tags with the given names from every image
// in ids. Unknown names are ignored.
func (r *Repository) RemoveTagsByName(ids []uint, names []string) error {
	if len(ids) == 0 || len(names) == 0 {
		return nil
	}
	return r.db.Exec(`DELETE FROM image_tags WHERE image_id IN ?
		AND tag_id IN (SELECT id FROM tags WHERE name IN ?)`, ids, names).Error
}

// SetRating updates the rating for a batch of images.
func (r *Repository) SetRating(ids []uint, rating int) (int64, error) {
	if !models.ValidRating(rating) {
		return 0, fmt.Errorf("rating %d out of range [%d,%d]", rating, models.RatingMin, models.RatingMax)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.Model(&models.Image{}).Where("id IN ?", ids).Update("rating", rating)
	return result.RowsAffected, result.Error
}

// Count returns the number of cataloged images.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Image{}).Count(&count).Error
	return count, err
}

// TotalFileSize returns the byte sum of all cataloged files.
func (r *Repository) TotalFileSize() (int64, error) {
	var total int64
	err := r.db.Model(&models.Image{}).Select("COALESCE(SUM(file_size), 0)").Scan(&total).Error
	return total, err
}

// List returns a filtered page of images with the total match count.
func (r *Repository) List(filter ListFilter) ([]*models.Image, int64, error) {
	var imageList []*models.Image
	var total int64

	db := r.db.Model(&models.Image{})

	// Excluded tags always win over any include group.
	if len(filter.ExcludeTags) > 0 {
		db = db.Where(notExistsTags, filter.ExcludeTags)
	}

	if cond, args := includeTagsCondition(filter.AnyTags, filter.AllTags); cond != "" {
		db = db.Where(cond, args...)
	}

	if filter.MinRating != nil {
		db = db.Where("rating >= ?", *filter.MinRating)
	}
	if filter.MaxRating != nil {
		db = db.Where("rating <= ?", *filter.MaxRating)
	}
	if filter.Search != "" {
		db = db.Where("file_name LIKE ?", "%"+filter.Search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := "file_name asc"
	switch filter.Sort {
	case SortNameDesc:
		orderBy = "file_name desc"
	case SortCreatedAsc:
		orderBy = "created_at asc"
	case SortCreatedDesc:
		orderBy = "created_at desc"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * filter.PageSize

	err := db.Preload("Tags").Order(orderBy).Offset(offset).Limit(filter.PageSize).Find(&imageList).Error
	return imageList, total, err
}

// includeTagsCondition builds the include-group SQL. The ANY group is
// a single EXISTS over an IN list, the ALL group one EXISTS per name.
// With both groups present an image matching either group passes.
func includeTagsCondition(anyTags, allTags []string) (string, []interface{}) {
	var parts []string
	var args []interface{}

	if len(anyTags) > 0 {
		parts = append(parts, existsAnyTag)
		args = append(args, anyTags)
	}
	if len(allTags) > 0 {
		allParts := make([]string, 0, len(allTags))
		for _, name := range allTags {
			allParts = append(allParts, existsOneTag)
			args = append(args, name)
		}
		parts = append(parts, "("+strings.Join(allParts, " AND ")+")")
	}

	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
