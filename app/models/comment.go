package models

import (
	"time"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ArtworkID uint      `gorm:"index;not null" json:"artwork_id"`
	Artwork   Artwork   `gorm:"foreignKey:ArtworkID" json:"artwork,omitempty"`
	Text      string    `gorm:"type:text;not null" json:"text" validate:"required,min=1,max=1000"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
