package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventKind string

const (
	EventLike    EventKind = "like"
	EventComment EventKind = "comment"
)

// ViewedReaction marks that an artwork owner has seen a specific like or
// comment. Unique on (user, kind, reaction id); inserts are idempotent.
type ViewedReaction struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"uniqueIndex:idx_viewed_marker;not null" json:"user_id"`
	Kind       EventKind `gorm:"uniqueIndex:idx_viewed_marker;type:varchar(10);not null" json:"kind"`
	ReactionID uint      `gorm:"uniqueIndex:idx_viewed_marker;not null" json:"reaction_id"`
	ArtworkID  uint      `gorm:"index" json:"artwork_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// MarkViewed inserts the marker if absent. Safe to call twice for the same
// event.
func MarkViewed(db *gorm.DB, userID uint, kind EventKind, reactionID, artworkID uint) error {
	marker := ViewedReaction{
		UserID:     userID,
		Kind:       kind,
		ReactionID: reactionID,
		ArtworkID:  artworkID,
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&marker).Error
}
