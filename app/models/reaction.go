package models

import (
	"time"
)

type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// Reaction is unique per (user, artwork). The constraint lives in the store,
// not in application logic: a second concurrent reaction must fail on insert.
type Reaction struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"uniqueIndex:idx_user_artwork;not null" json:"user_id"`
	User      User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ArtworkID uint         `gorm:"uniqueIndex:idx_user_artwork;index;not null" json:"artwork_id"`
	Artwork   Artwork      `gorm:"foreignKey:ArtworkID" json:"artwork,omitempty"`
	Kind      ReactionKind `gorm:"type:varchar(10);not null" json:"kind"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
}
