package models

import (
	"time"

	"gorm.io/gorm"
)

type AppealStatus string

const (
	AppealStatusNone     AppealStatus = "none"
	AppealStatusPending  AppealStatus = "pending"
	AppealStatusApproved AppealStatus = "approved"
	AppealStatusRejected AppealStatus = "rejected"
)

// UserBlock marks an account as blocked. One row per account; re-blocking
// updates in place.
type UserBlock struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	UserID       uint         `gorm:"uniqueIndex;not null" json:"user_id"`
	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Reason       string       `gorm:"type:varchar(255)" json:"reason"`
	ModeratorID  uint         `gorm:"index" json:"moderator_id"`
	AppealStatus AppealStatus `gorm:"type:varchar(20);default:'none'" json:"appeal_status"`
	BlockedAt    time.Time    `gorm:"autoCreateTime" json:"blocked_at"`
}

func FindUserBlock(db *gorm.DB, userID uint) (*UserBlock, error) {
	var block UserBlock
	result := db.Where("user_id = ?", userID).First(&block)
	return &block, result.Error
}

// IsUserBlocked reports whether a live block row exists for the account.
func IsUserBlocked(db *gorm.DB, userID uint) (bool, error) {
	var count int64
	err := db.Model(&UserBlock{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}
