package models

import "gorm.io/gorm"

type Tag struct {
	gorm.Model
	Name string `gorm:"uniqueIndex:idx_tags_name;not null"`

	Images []*Image `gorm:"many2many:image_tags;"`
}
