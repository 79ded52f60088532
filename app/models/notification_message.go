package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationMessage is the single open reaction-notification ticket per
// owner. The unique index keeps the render channel a singleton: a recount
// supersedes the row, never duplicates it.
type NotificationMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	MessageID   int64     `gorm:"not null" json:"message_id"`
	ChatID      int64     `gorm:"not null" json:"chat_id"`
	LastCount   int       `gorm:"default:0" json:"last_count"`
	LastUpdated time.Time `gorm:"autoUpdateTime" json:"last_updated"`
}

func FindNotificationMessage(db *gorm.DB, userID uint) (*NotificationMessage, error) {
	var ticket NotificationMessage
	result := db.Where("user_id = ?", userID).First(&ticket)
	return &ticket, result.Error
}

func DeleteNotificationMessage(db *gorm.DB, userID uint) error {
	return db.Where("user_id = ?", userID).Delete(&NotificationMessage{}).Error
}
