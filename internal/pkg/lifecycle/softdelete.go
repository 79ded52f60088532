package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/internal/pkg/reason"
)

// SoftDelete snapshots an artwork and removes it together with every
// dependent row, as one atomic unit. Global hashtag usage is decremented;
// tags reaching zero usage disappear.
func (m *Manager) SoftDelete(ctx context.Context, artworkID uint, deleteReason string) (*models.DeletedArtwork, error) {
	var snapshot *models.DeletedArtwork
	err := m.db.Transaction(func(tx *gorm.DB) error {
		var err error
		snapshot, err = SoftDeleteInTx(tx, artworkID, deleteReason)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// SoftDeleteInTx is the cascade body, reusable inside a caller's transaction
// (the trust block cascade runs it for every owned artwork in one tx).
func SoftDeleteInTx(tx *gorm.DB, artworkID uint, deleteReason string) (*models.DeletedArtwork, error) {
	var artwork models.Artwork
	if err := tx.First(&artwork, artworkID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reason.ErrNotFound
		}
		return nil, err
	}

	var hashtags []string
	if err := tx.Model(&models.Tag{}).
		Joins("JOIN artwork_tags ON artwork_tags.tag_id = tags.id").
		Where("artwork_tags.artwork_id = ?", artworkID).
		Pluck("tags.name", &hashtags).Error; err != nil {
		return nil, err
	}

	snapshot := models.DeletedArtwork{
		ArtworkID: artwork.ID,
		OwnerID:   artwork.OwnerID,
		FileID:    artwork.FileID,
		Caption:   artwork.Caption,
		Likes:     artwork.Likes,
		Dislikes:  artwork.Dislikes,
		Hashtags:  strings.Join(hashtags, ","),
		Reason:    deleteReason,
		CreatedAt: artwork.CreatedAt,
		DeletedAt: time.Now(),
	}
	// Re-deleting a previously restored artwork reuses the snapshot row.
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "artwork_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner_id", "file_id", "caption", "likes", "dislikes", "hashtags", "reason", "deleted_at", "restored_at"}),
	}).Create(&snapshot).Error; err != nil {
		return nil, fmt.Errorf("snapshot artwork %d: %w", artworkID, err)
	}

	for _, name := range hashtags {
		if err := models.DecrementTagUsage(tx, name); err != nil {
			return nil, err
		}
	}

	// Dependent rows go with the artwork.
	for _, del := range []error{
		tx.Where("artwork_id = ?", artworkID).Delete(&models.Reaction{}).Error,
		tx.Where("artwork_id = ?", artworkID).Delete(&models.Comment{}).Error,
		tx.Where("artwork_id = ?", artworkID).Delete(&models.Complaint{}).Error,
		tx.Where("artwork_id = ?", artworkID).Delete(&models.ViewedReaction{}).Error,
		tx.Where("artwork_id = ?", artworkID).Delete(&models.ActiveMessage{}).Error,
		tx.Where("artwork_id = ?", artworkID).Delete(&models.ArtworkTag{}).Error,
	} {
		if del != nil {
			return nil, del
		}
	}

	if err := tx.Delete(&models.Artwork{}, artworkID).Error; err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Restore brings a soft-deleted artwork back under its original id, caption,
// counters and hashtags. Only valid while the snapshot is unrestored and
// inside the retention window.
func (m *Manager) Restore(ctx context.Context, artworkID uint) (*models.Artwork, error) {
	var artwork *models.Artwork
	err := m.db.Transaction(func(tx *gorm.DB) error {
		var err error
		artwork, err = restoreTx(tx, artworkID, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return artwork, nil
}

func restoreTx(tx *gorm.DB, artworkID uint, now time.Time) (*models.Artwork, error) {
	var snapshot models.DeletedArtwork
	err := tx.Where("artwork_id = ? AND restored_at IS NULL", artworkID).First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reason.ErrNotFound
		}
		return nil, err
	}
	if now.Sub(snapshot.DeletedAt) >= models.DeletedArtworkRetention {
		return nil, reason.ErrRetentionExpired
	}
	if snapshot.Reason == models.ReasonUserBlocked {
		// Block-cascade snapshots come back only through the unblock
		// cascade; restoring one alone would revive content of a blocked
		// account.
		blocked, berr := models.IsUserBlocked(tx, snapshot.OwnerID)
		if berr != nil {
			return nil, berr
		}
		if blocked {
			return nil, reason.ErrUserBlocked
		}
	}
	return RestoreSnapshotInTx(tx, &snapshot, now)
}

// RestoreSnapshotInTx recreates the artwork described by a snapshot and
// stamps it restored. No retention check: the unblock cascade restores its
// snapshots however long the block lasted.
func RestoreSnapshotInTx(tx *gorm.DB, snapshot *models.DeletedArtwork, now time.Time) (*models.Artwork, error) {
	artwork := models.Artwork{
		ID:        snapshot.ArtworkID,
		OwnerID:   snapshot.OwnerID,
		FileID:    snapshot.FileID,
		Caption:   snapshot.Caption,
		Likes:     snapshot.Likes,
		Dislikes:  snapshot.Dislikes,
		CreatedAt: snapshot.CreatedAt,
	}
	if err := tx.Create(&artwork).Error; err != nil {
		return nil, fmt.Errorf("recreate artwork %d: %w", snapshot.ArtworkID, err)
	}

	var hashtags []string
	if snapshot.Hashtags != "" {
		hashtags = strings.Split(snapshot.Hashtags, ",")
	}
	if err := attachHashtags(tx, artwork.ID, hashtags); err != nil {
		return nil, err
	}

	if err := tx.Model(&models.DeletedArtwork{}).
		Where("artwork_id = ?", snapshot.ArtworkID).
		Update("restored_at", now).Error; err != nil {
		return nil, err
	}
	return &artwork, nil
}

// PurgeExpired permanently drops snapshots that sat unrestored past the
// retention window. Snapshots from a still-live block are kept so that a
// late unblock can restore them in full.
func (m *Manager) PurgeExpired() (int64, error) {
	cutoff := time.Now().Add(-models.DeletedArtworkRetention)
	result := m.db.
		Where("restored_at IS NULL AND deleted_at <= ?", cutoff).
		Where("NOT (reason = ? AND EXISTS (SELECT 1 FROM user_blocks WHERE user_blocks.user_id = deleted_artworks.owner_id))",
			models.ReasonUserBlocked).
		Delete(&models.DeletedArtwork{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		log.Infof("[Lifecycle] purged %d expired soft-deleted artworks", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
