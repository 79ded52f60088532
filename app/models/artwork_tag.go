package models

import "time"

type ArtworkTag struct {
	ArtworkID uint      `gorm:"primaryKey;autoIncrement:false" json:"artwork_id"`
	TagID     uint      `gorm:"primaryKey;autoIncrement:false" json:"tag_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
