package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// MaxTagsPerArtwork caps the distinct hashtags stored per artwork.
const MaxTagsPerArtwork = 5

type Tag struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(100) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"name"`
	UsageCount int       `gorm:"default:0" json:"usage_count"`
	Artworks   []Artwork `gorm:"many2many:artwork_tags;" json:"artworks,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IncrementTagUsage bumps the global usage counter for a tag, creating the
// row on first use. The increment is a relative update so concurrent
// submissions never lose counts.
func IncrementTagUsage(tx *gorm.DB, name string) (*Tag, error) {
	name = strings.ToLower(name)

	var tag Tag
	result := tx.Where("name = ?", name).First(&tag)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			return nil, result.Error
		}
		tag = Tag{Name: name}
		if err := tx.Create(&tag).Error; err != nil {
			return nil, err
		}
	}

	if err := tx.Model(&Tag{}).Where("name = ?", name).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// DecrementTagUsage lowers the global usage counter and removes the tag row
// once nothing references it anymore.
func DecrementTagUsage(tx *gorm.DB, name string) error {
	name = strings.ToLower(name)
	if err := tx.Model(&Tag{}).Where("name = ?", name).
		UpdateColumn("usage_count", gorm.Expr("usage_count - 1")).Error; err != nil {
		return err
	}
	return tx.Where("name = ? AND usage_count <= 0", name).Delete(&Tag{}).Error
}

// PopularTags lists tags by global usage, most used first.
func PopularTags(db *gorm.DB, limit int) ([]Tag, error) {
	var tags []Tag
	err := db.Order("usage_count DESC").Limit(limit).Find(&tags).Error
	return tags, err
}

// SearchTags finds tags matching a substring, most used first.
func SearchTags(db *gorm.DB, query string, limit int) ([]Tag, error) {
	var tags []Tag
	err := db.Where("name LIKE ?", "%"+strings.ToLower(query)+"%").
		Order("usage_count DESC").Limit(limit).Find(&tags).Error
	return tags, err
}
