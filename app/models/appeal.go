package models

import (
	"time"

	"gorm.io/gorm"
)

// Appeal is a blocked account's request for review. At most one pending
// appeal exists per account; submitting again while pending edits the text
// in place. A decided appeal is terminal.
type Appeal struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	UserID      uint         `gorm:"index;not null" json:"user_id"`
	User        User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Reason      string       `gorm:"type:text;not null" json:"reason" validate:"required,min=1,max=2000"`
	Status      AppealStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	ModeratorID *uint        `gorm:"index" json:"moderator_id,omitempty"`
	DecidedAt   *time.Time   `gorm:"type:datetime" json:"decided_at,omitempty"`
	SubmittedAt time.Time    `gorm:"autoCreateTime" json:"submitted_at"`
}

// FindPendingAppeal returns the account's open appeal, if any.
func FindPendingAppeal(db *gorm.DB, userID uint) (*Appeal, error) {
	var appeal Appeal
	result := db.Where("user_id = ? AND status = ?", userID, AppealStatusPending).First(&appeal)
	return &appeal, result.Error
}

// ListPendingAppeals returns the moderator queue, oldest first.
func ListPendingAppeals(db *gorm.DB) ([]Appeal, error) {
	var appeals []Appeal
	err := db.Where("status = ?", AppealStatusPending).
		Order("submitted_at ASC").Find(&appeals).Error
	return appeals, err
}
