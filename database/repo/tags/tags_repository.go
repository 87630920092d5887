package tags

import (
	"context"
	"errors"

	"github.com/biffcrash1/image-viewer/database/models"
	"gorm.io/gorm"
)

// TagUsage is a tag name with the number of images carrying it.
type TagUsage struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Repository is the tag repository.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new tag repository.
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

// GetByName fetches a tag by name.
func (r *Repository) GetByName(name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.Where("name = ?", name).First(&tag).Error
	return &tag, err
}

// GetOrCreateByNames resolves the given names to tag records, creating
// any that do not exist yet.
func (r *Repository) GetOrCreateByNames(names []string) ([]*models.Tag, error) {
	if len(names) == 0 {
		return []*models.Tag{}, nil
	}

	result := make([]*models.Tag, 0, len(names))
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			var tag models.Tag
			err := tx.Where("name = ?", name).First(&tag).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				tag = models.Tag{Name: name}
				err = tx.Create(&tag).Error
			}
			if err != nil {
				return err
			}
			result = append(result, &tag)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListUsed returns tags attached to at least one image, with usage
// counts, ordered by name.
func (r *Repository) ListUsed() ([]*TagUsage, error) {
	var usages []*TagUsage
	err := r.db.Model(&models.Tag{}).
		Select("tags.name AS name, COUNT(image_tags.image_id) AS count").
		Joins("JOIN image_tags ON image_tags.tag_id = tags.id").
		Group("tags.id").
		Order("tags.name asc").
		Scan(&usages).Error
	return usages, err
}

// Count returns the number of tags in use.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Tag{}).
		Where("EXISTS (SELECT 1 FROM image_tags WHERE image_tags.tag_id = tags.id)").
		Count(&count).Error
	return count, err
}

// PruneUnused deletes tags no image carries anymore.
func (r *Repository) PruneUnused() (int64, error) {
	result := r.db.Unscoped().
		Where("NOT EXISTS (SELECT 1 FROM image_tags WHERE image_tags.tag_id = tags.id)").
		Delete(&models.Tag{})
	return result.RowsAffected, result.Error
}
