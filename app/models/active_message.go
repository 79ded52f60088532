package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActiveMessage is a currently rendered view of an artwork that must track
// its live state. Keyed by (message, chat) so a re-render of the same slot
// replaces the registration instead of duplicating it. Previously this lived
// in process memory; rows survive restarts and scale across processes.
type ActiveMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MessageID   int64     `gorm:"uniqueIndex:idx_message_chat;not null" json:"message_id"`
	ChatID      int64     `gorm:"uniqueIndex:idx_message_chat;not null" json:"chat_id"`
	ArtworkID   uint      `gorm:"index;not null" json:"artwork_id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	LastUpdated time.Time `gorm:"autoUpdateTime;index" json:"last_updated"`
}

// UpsertActiveMessage registers or refreshes a rendered view.
func UpsertActiveMessage(db *gorm.DB, messageID, chatID int64, artworkID, userID uint) error {
	row := ActiveMessage{
		MessageID:   messageID,
		ChatID:      chatID,
		ArtworkID:   artworkID,
		UserID:      userID,
		LastUpdated: time.Now(),
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"artwork_id", "user_id", "last_updated"}),
	}).Create(&row).Error
}

// TouchActiveMessage resets the staleness clock of a registration after its
// rendering was brought up to date.
func TouchActiveMessage(db *gorm.DB, messageID, chatID int64) error {
	return db.Model(&ActiveMessage{}).
		Where("message_id = ? AND chat_id = ?", messageID, chatID).
		Update("last_updated", time.Now()).Error
}

func RemoveActiveMessage(db *gorm.DB, messageID, chatID int64) error {
	return db.Where("message_id = ? AND chat_id = ?", messageID, chatID).
		Delete(&ActiveMessage{}).Error
}

// ActiveMessagesForArtwork lists every rendered view of an artwork.
func ActiveMessagesForArtwork(db *gorm.DB, artworkID uint) ([]ActiveMessage, error) {
	var rows []ActiveMessage
	err := db.Where("artwork_id = ?", artworkID).Find(&rows).Error
	return rows, err
}
