package models

import (
	"time"

	"gorm.io/gorm"
)

// ReasonUserBlocked tags snapshots created by the trust cascade so unblock
// can restore exactly those and nothing else.
const ReasonUserBlocked = "user-blocked"

// ReasonOwnerDeleted tags snapshots of artworks their owner took down.
const ReasonOwnerDeleted = "owner-deleted"

// DeletedArtworkRetention is how long a snapshot stays restorable before the
// purge sweep drops it for good.
const DeletedArtworkRetention = 24 * time.Hour

// DeletedArtwork is the full snapshot of a soft-deleted artwork. ArtworkID is
// unique: re-deleting a restored artwork reuses the row.
type DeletedArtwork struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	ArtworkID  uint       `gorm:"uniqueIndex;not null" json:"artwork_id"`
	OwnerID    uint       `gorm:"index;not null" json:"owner_id"`
	FileID     string     `gorm:"type:varchar(255);not null" json:"file_id"`
	Caption    string     `gorm:"type:text" json:"caption"`
	Likes      int        `gorm:"default:0" json:"likes"`
	Dislikes   int        `gorm:"default:0" json:"dislikes"`
	Hashtags   string     `gorm:"type:varchar(512)" json:"hashtags"` // comma separated, lowercased
	Reason     string     `gorm:"type:varchar(255)" json:"reason"`
	CreatedAt  time.Time  `gorm:"type:datetime" json:"created_at"` // original artwork creation time
	DeletedAt  time.Time  `gorm:"autoCreateTime;index" json:"deleted_at"`
	RestoredAt *time.Time `gorm:"type:datetime" json:"restored_at,omitempty"`
}

// Restorable reports whether the snapshot is still within the retention
// window and was never restored.
func (d *DeletedArtwork) Restorable(now time.Time) bool {
	return d.RestoredAt == nil && now.Sub(d.DeletedAt) < DeletedArtworkRetention
}

// ListRestorableArtworks returns unrestored snapshots still inside the
// retention window, newest deletion first.
func ListRestorableArtworks(db *gorm.DB, offset, limit int) ([]DeletedArtwork, error) {
	cutoff := time.Now().Add(-DeletedArtworkRetention)
	var snapshots []DeletedArtwork
	err := db.Where("restored_at IS NULL AND deleted_at > ?", cutoff).
		Order("deleted_at DESC").Offset(offset).Limit(limit).Find(&snapshots).Error
	return snapshots, err
}

// ListRestorableArtworksByOwner is the search-by-account view of the blocked
// content browser.
func ListRestorableArtworksByOwner(db *gorm.DB, ownerID uint) ([]DeletedArtwork, error) {
	cutoff := time.Now().Add(-DeletedArtworkRetention)
	var snapshots []DeletedArtwork
	err := db.Where("owner_id = ? AND restored_at IS NULL AND deleted_at > ?", ownerID, cutoff).
		Order("deleted_at DESC").Find(&snapshots).Error
	return snapshots, err
}
