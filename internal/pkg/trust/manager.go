package trust

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/internal/pkg/lifecycle"
	"github.com/mkravets/ArtPeak/internal/pkg/reason"
)

// Manager owns account block and appeal transitions. Blocking shadow-hides
// all of an account's content through the content lifecycle cascade;
// unblocking reverses exactly that set.
type Manager struct {
	db *gorm.DB
}

var validate = validator.New()

func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// Block upserts the trust block and soft-deletes every artwork the account
// owns, tagged so Unblock can tell these snapshots from ordinary moderation
// deletes. All-or-nothing: a mid-cascade failure rolls everything back.
func (m *Manager) Block(ctx context.Context, userID uint, blockReason string, moderatorID uint) error {
	err := m.db.Transaction(func(tx *gorm.DB) error {
		block := models.UserBlock{
			UserID:       userID,
			Reason:       blockReason,
			ModeratorID:  moderatorID,
			AppealStatus: models.AppealStatusNone,
			BlockedAt:    time.Now(),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"reason", "moderator_id", "blocked_at"}),
		}).Create(&block).Error; err != nil {
			return fmt.Errorf("upsert block: %w", err)
		}

		var artworkIDs []uint
		if err := tx.Model(&models.Artwork{}).
			Where("owner_id = ?", userID).
			Pluck("id", &artworkIDs).Error; err != nil {
			return err
		}
		for _, id := range artworkIDs {
			if _, err := lifecycle.SoftDeleteInTx(tx, id, models.ReasonUserBlocked); err != nil {
				return fmt.Errorf("hide artwork %d: %w", id, err)
			}
		}
		log.Infof("[Trust] blocked user %d, hid %d artworks", userID, len(artworkIDs))
		return nil
	})
	if err != nil {
		return fmt.Errorf("block user %d: %w", userID, err)
	}
	return nil
}

// Unblock restores every snapshot the block cascade created and removes the
// block row. All-or-nothing: on failure nothing is restored and the caller
// retries the whole set, never individual rows.
func (m *Manager) Unblock(ctx context.Context, userID uint) error {
	err := m.db.Transaction(func(tx *gorm.DB) error {
		return unblockInTx(tx, userID)
	})
	if err != nil {
		return fmt.Errorf("unblock user %d: %w", userID, err)
	}
	return nil
}

// unblockInTx is the unblock cascade body, reusable inside a caller's
// transaction (appeal approval runs it together with the appeal update).
func unblockInTx(tx *gorm.DB, userID uint) error {
	var snapshots []models.DeletedArtwork
	if err := tx.Where("owner_id = ? AND reason = ? AND restored_at IS NULL",
		userID, models.ReasonUserBlocked).Find(&snapshots).Error; err != nil {
		return err
	}
	now := time.Now()
	for i := range snapshots {
		if _, err := lifecycle.RestoreSnapshotInTx(tx, &snapshots[i], now); err != nil {
			return fmt.Errorf("restore artwork %d: %w", snapshots[i].ArtworkID, err)
		}
	}
	if err := tx.Where("user_id = ?", userID).Delete(&models.UserBlock{}).Error; err != nil {
		return err
	}
	log.Infof("[Trust] unblocked user %d, restored %d artworks", userID, len(snapshots))
	return nil
}

// IsBlocked reports whether the account currently carries a live block.
func (m *Manager) IsBlocked(userID uint) (bool, error) {
	return models.IsUserBlocked(m.db, userID)
}

// BlockStatus returns the live block, or ErrNotFound for an unblocked
// account.
func (m *Manager) BlockStatus(userID uint) (*models.UserBlock, error) {
	block, err := models.FindUserBlock(m.db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reason.ErrNotFound
		}
		return nil, err
	}
	return block, nil
}
