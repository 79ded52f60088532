package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WizardState is the finite set of multi-step interactions a conversation can
// be in. Persisted per (user, chat) so handler re-entry and process restarts
// land in the same state; free-form "waiting for X" flags are not allowed.
type WizardState string

const (
	StateIdle              WizardState = "idle"
	StateAwaitingArtwork   WizardState = "awaiting_artwork"
	StateAwaitingComment   WizardState = "awaiting_comment"
	StateAwaitingComplaint WizardState = "awaiting_complaint"
	StateAwaitingAppeal    WizardState = "awaiting_appeal"
	StateAwaitingNickname  WizardState = "awaiting_nickname"
	StateAwaitingBio       WizardState = "awaiting_bio"
	StateAwaitingAvatar    WizardState = "awaiting_avatar"
	StateAwaitingSearch    WizardState = "awaiting_search"
	StateBrowsingReactions WizardState = "browsing_reactions"
)

type SessionState struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"uniqueIndex:idx_user_chat;not null" json:"user_id"`
	ChatID    int64       `gorm:"uniqueIndex:idx_user_chat;not null" json:"chat_id"`
	State     WizardState `gorm:"type:varchar(30);default:'idle'" json:"state"`
	ArtworkID uint        `json:"artwork_id"` // target of awaiting_comment / awaiting_complaint
	Cursor    int         `json:"cursor"`     // position in browsing_reactions
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetSessionState loads the conversation state, defaulting to idle when no
// row exists yet.
func GetSessionState(db *gorm.DB, userID uint, chatID int64) (*SessionState, error) {
	var session SessionState
	result := db.Where("user_id = ? AND chat_id = ?", userID, chatID).First(&session)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return &SessionState{UserID: userID, ChatID: chatID, State: StateIdle}, nil
		}
		return nil, result.Error
	}
	return &session, nil
}

// SetSessionState upserts the conversation state.
func SetSessionState(db *gorm.DB, userID uint, chatID int64, state WizardState, artworkID uint, cursor int) error {
	row := SessionState{
		UserID:    userID,
		ChatID:    chatID,
		State:     state,
		ArtworkID: artworkID,
		Cursor:    cursor,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "artwork_id", "cursor"}),
	}).Create(&row).Error
}

// ResetSessionState returns the conversation to idle.
func ResetSessionState(db *gorm.DB, userID uint, chatID int64) error {
	return SetSessionState(db, userID, chatID, StateIdle, 0, 0)
}
