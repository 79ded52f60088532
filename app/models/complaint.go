package models

import (
	"time"

	"gorm.io/gorm"
)

// Complaint is a write-only audit record. Exactly one of ArtworkID or
// TargetUserID is set, depending on whether content or a profile was
// reported.
type Complaint struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ArtworkID    *uint     `gorm:"index" json:"artwork_id,omitempty"`
	TargetUserID *uint     `gorm:"index" json:"target_user_id,omitempty"`
	ReporterID   uint      `gorm:"index;not null" json:"reporter_id"`
	Reporter     User      `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	Reason       string    `gorm:"type:varchar(100);not null" json:"reason"`
	Comment      string    `gorm:"type:text" json:"comment"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// AddArtworkComplaint records a report against a piece of content.
func AddArtworkComplaint(db *gorm.DB, artworkID, reporterID uint, reason, comment string) error {
	complaint := Complaint{
		ArtworkID:  &artworkID,
		ReporterID: reporterID,
		Reason:     reason,
		Comment:    comment,
	}
	return db.Create(&complaint).Error
}

// AddProfileComplaint records a report against an account.
func AddProfileComplaint(db *gorm.DB, targetUserID, reporterID uint, reason string) error {
	complaint := Complaint{
		TargetUserID: &targetUserID,
		ReporterID:   reporterID,
		Reason:       reason,
	}
	return db.Create(&complaint).Error
}
