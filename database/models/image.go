package models

import (
	"time"

	"gorm.io/gorm"
)

// Rating bounds. 0 means unrated.
const (
	RatingMin = 0
	RatingMax = 10
)

type Image struct {
	gorm.Model
	FileName     string `gorm:"index:idx_images_filename;not null"`
	RelativePath string `gorm:"uniqueIndex:idx_images_relative_path;not null"`
	FileSize     int64  `gorm:"not null"`
	ModTime      time.Time
	Width        int
	Height       int
	Rating       int `gorm:"index:idx_images_rating;default:0;not null"`

	Tags []*Tag `gorm:"many2many:image_tags;"`
}

// ValidRating reports whether r is inside the allowed range.
func ValidRating(r int) bool {
	return r >= RatingMin && r <= RatingMax
}
