package models

// ImageTag is the explicit join table between images and tags. The
// composite primary key covers image_id lookups; tag_id carries its own
// index so queries filtering by tag alone stay cheap.
type ImageTag struct {
	ImageID uint `gorm:"primaryKey;index:idx_image_tags_image_id"`
	TagID   uint `gorm:"primaryKey;index:idx_image_tags_tag_id"`
}
