package models

import (
	"time"

	"gorm.io/gorm"
)

// PendingArtwork holds a submission the automated screening could not clear.
// It is destroyed when a human reviewer resolves it, either converted to an
// Artwork or discarded.
type PendingArtwork struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"index;not null" json:"owner_id"`
	Owner     User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	FileID    string    `gorm:"type:varchar(255);not null" json:"file_id"`
	Caption   string    `gorm:"type:text" json:"caption"`
	Hashtags  string    `gorm:"type:varchar(512)" json:"hashtags"` // comma separated, lowercased
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func FindPendingArtworkByID(db *gorm.DB, id uint) (*PendingArtwork, error) {
	var pending PendingArtwork
	result := db.First(&pending, id)
	return &pending, result.Error
}

// ListPendingArtworks returns the open human-review queue, oldest first.
func ListPendingArtworks(db *gorm.DB, offset, limit int) ([]PendingArtwork, error) {
	var pending []PendingArtwork
	err := db.Order("created_at ASC").Offset(offset).Limit(limit).Find(&pending).Error
	return pending, err
}
