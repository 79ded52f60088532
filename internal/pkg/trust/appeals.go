package trust

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/internal/pkg/reason"
)

// SubmitAppeal files an appeal for a blocked account. A second submission
// while one is pending edits the existing appeal in place; there is never
// more than one pending appeal per account.
func (m *Manager) SubmitAppeal(ctx context.Context, userID uint, text string) (*models.Appeal, error) {
	text = strings.TrimSpace(text)

	blocked, err := m.IsBlocked(userID)
	if err != nil {
		return nil, err
	}
	if !blocked {
		return nil, reason.ErrNotFound
	}

	appeal := models.Appeal{
		UserID: userID,
		Reason: text,
		Status: models.AppealStatusPending,
	}
	if err := validate.Struct(&appeal); err != nil {
		return nil, fmt.Errorf("%w: %v", reason.ErrValidationFailed, err)
	}

	err = m.db.Transaction(func(tx *gorm.DB) error {
		existing, ferr := models.FindPendingAppeal(tx, userID)
		if ferr == nil {
			// Edit in place rather than duplicating.
			if uerr := tx.Model(existing).Update("reason", text).Error; uerr != nil {
				return uerr
			}
			appeal = *existing
			appeal.Reason = text
			return nil
		}
		if !errors.Is(ferr, gorm.ErrRecordNotFound) {
			return ferr
		}
		if cerr := tx.Create(&appeal).Error; cerr != nil {
			return cerr
		}
		return tx.Model(&models.UserBlock{}).
			Where("user_id = ?", userID).
			Update("appeal_status", models.AppealStatusPending).Error
	})
	if err != nil {
		return nil, fmt.Errorf("submit appeal for user %d: %w", userID, err)
	}
	return &appeal, nil
}

// PendingAppeal returns the account's open appeal, or ErrNotFound.
func (m *Manager) PendingAppeal(userID uint) (*models.Appeal, error) {
	appeal, err := models.FindPendingAppeal(m.db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reason.ErrNotFound
		}
		return nil, err
	}
	return appeal, nil
}

// AppealQueue lists pending appeals for moderators, oldest first.
func (m *Manager) AppealQueue() ([]models.Appeal, error) {
	return models.ListPendingAppeals(m.db)
}

// DecideAppeal closes a pending appeal. Approval unblocks the account and
// restores its content; rejection records the decision and keeps the block.
// Either way the appeal is terminal; a fresh one must be filed to retry.
func (m *Manager) DecideAppeal(ctx context.Context, appealID uint, approve bool, moderatorID uint) (*models.Appeal, error) {
	var appeal models.Appeal
	err := m.db.Where("id = ? AND status = ?", appealID, models.AppealStatusPending).First(&appeal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reason.ErrNotFound
		}
		return nil, err
	}

	status := models.AppealStatusRejected
	if approve {
		status = models.AppealStatusApproved
	}
	now := time.Now()

	// One transaction: the appeal must never end up approved while the
	// block still stands.
	err = m.db.Transaction(func(tx *gorm.DB) error {
		if uerr := tx.Model(&appeal).Updates(map[string]interface{}{
			"status":       status,
			"moderator_id": moderatorID,
			"decided_at":   now,
		}).Error; uerr != nil {
			return uerr
		}
		if approve {
			return unblockInTx(tx, appeal.UserID)
		}
		return tx.Model(&models.UserBlock{}).
			Where("user_id = ?", appeal.UserID).
			Update("appeal_status", models.AppealStatusRejected).Error
	})
	if err != nil {
		return nil, fmt.Errorf("decide appeal %d: %w", appealID, err)
	}

	log.Infof("[Trust] appeal %d decided %s by moderator %d", appealID, status, moderatorID)
	appeal.Status = status
	appeal.ModeratorID = &moderatorID
	appeal.DecidedAt = &now
	return &appeal, nil
}
