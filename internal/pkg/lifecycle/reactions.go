package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/internal/pkg/reason"
)

// React records a like or dislike and bumps the artwork counter atomically.
// The (user, artwork) uniqueness lives in the store: a concurrent duplicate
// fails on the constraint and surfaces as ErrAlreadyReacted, there is no
// read-then-write window.
func (m *Manager) React(ctx context.Context, userID, artworkID uint, kind models.ReactionKind) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		reactionRow := models.Reaction{
			UserID:    userID,
			ArtworkID: artworkID,
			Kind:      kind,
		}
		if err := tx.Create(&reactionRow).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "Duplicate entry") {
				return reason.ErrAlreadyReacted
			}
			return fmt.Errorf("insert reaction: %w", err)
		}

		artwork := models.Artwork{ID: artworkID}
		return artwork.IncrementCounter(tx, kind)
	})
}

// ReactionFor returns the viewer's existing reaction on an artwork, nil when
// they have not reacted.
func (m *Manager) ReactionFor(userID, artworkID uint) (*models.Reaction, error) {
	var reactionRow models.Reaction
	err := m.db.Where("user_id = ? AND artwork_id = ?", userID, artworkID).First(&reactionRow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reactionRow, nil
}

// AddComment stores a comment after validating the text.
func (m *Manager) AddComment(ctx context.Context, userID, artworkID uint, text string) (*models.Comment, error) {
	comment := models.Comment{
		UserID:    userID,
		ArtworkID: artworkID,
		Text:      strings.TrimSpace(text),
	}
	if err := validate.Struct(&comment); err != nil {
		return nil, fmt.Errorf("%w: %v", reason.ErrValidationFailed, err)
	}

	// The artwork may have been soft-deleted since the view was rendered.
	if err := m.db.First(&models.Artwork{}, artworkID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reason.ErrNotFound
		}
		return nil, err
	}

	if err := m.db.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &comment, nil
}

// ArtworkOwner resolves owner for notification fan-out.
func (m *Manager) ArtworkOwner(artworkID uint) (uint, error) {
	var artwork models.Artwork
	err := m.db.Select("owner_id").First(&artwork, artworkID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, reason.ErrNotFound
		}
		return 0, err
	}
	return artwork.OwnerID, nil
}
