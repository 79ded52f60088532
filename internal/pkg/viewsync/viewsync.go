package viewsync

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/internal/pkg/transport"
)

// StaleAfter is how long a registration may go without an update before the
// maintenance sweep drops it. Old renderings stop receiving live updates but
// their controls still work.
const StaleAfter = 24 * time.Hour

// Renderer produces the caption and control set for one viewer of an
// artwork. Controls differ per viewer (own artwork, already reacted), so
// Broadcast renders once per registration.
type Renderer func(artwork *models.Artwork, viewerID uint) (string, transport.Controls, error)

// Broadcaster fans artwork state changes out to every registered rendering.
type Broadcaster struct {
	db        *gorm.DB
	transport transport.Client
}

func NewBroadcaster(db *gorm.DB, tc transport.Client) *Broadcaster {
	return &Broadcaster{db: db, transport: tc}
}

// Register records a rendered view so later state changes reach it.
// Re-registering the same message slot replaces the previous row.
func (b *Broadcaster) Register(ref transport.Ref, artworkID, viewerID uint) error {
	return models.UpsertActiveMessage(b.db, ref.MessageID, ref.ChatID, artworkID, viewerID)
}

// Deregister removes a rendered view from the broadcast set.
func (b *Broadcaster) Deregister(ref transport.Ref) error {
	return models.RemoveActiveMessage(b.db, ref.MessageID, ref.ChatID)
}

// ForArtwork lists the registered views of one artwork.
func (b *Broadcaster) ForArtwork(artworkID uint) ([]models.ActiveMessage, error) {
	return models.ActiveMessagesForArtwork(b.db, artworkID)
}

// Broadcast re-renders every registered view of the artwork. One viewer's
// failure never blocks the rest: unmodified edits are ignored, transient
// failures are retried and logged, and a permanently gone render target is
// deregistered.
func (b *Broadcaster) Broadcast(ctx context.Context, artworkID uint, render Renderer) error {
	var artwork models.Artwork
	if err := b.db.First(&artwork, artworkID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted under us; the delete cascade clears the registrations.
			return nil
		}
		return err
	}

	views, err := models.ActiveMessagesForArtwork(b.db, artworkID)
	if err != nil {
		return err
	}

	for _, view := range views {
		caption, controls, rerr := render(&artwork, view.UserID)
		if rerr != nil {
			log.Errorf("[ViewSync] render failed for artwork %d viewer %d: %v", artworkID, view.UserID, rerr)
			continue
		}
		ref := transport.Ref{ChatID: view.ChatID, MessageID: view.MessageID}
		err := transport.WithRetry(ctx, func() error {
			return b.transport.EditArtwork(ctx, ref, caption, controls)
		})
		switch {
		case err == nil, errors.Is(err, transport.ErrNotModified):
			// A continuously watched view must survive the staleness trim.
			if terr := models.TouchActiveMessage(b.db, view.MessageID, view.ChatID); terr != nil {
				log.Warnf("[ViewSync] touch failed for message %d/%d: %v", view.ChatID, view.MessageID, terr)
			}
		case transport.IsPermanent(err):
			if derr := b.Deregister(ref); derr != nil {
				log.Errorf("[ViewSync] deregister failed for message %d/%d: %v", view.ChatID, view.MessageID, derr)
			}
		default:
			log.Warnf("[ViewSync] update failed for message %d/%d: %v", view.ChatID, view.MessageID, err)
		}
	}
	return nil
}

// TrimStale drops registrations not refreshed within StaleAfter. Runs on the
// hourly maintenance schedule.
func (b *Broadcaster) TrimStale() (int64, error) {
	cutoff := time.Now().Add(-StaleAfter)
	result := b.db.Where("last_updated < ?", cutoff).Delete(&models.ActiveMessage{})
	return result.RowsAffected, result.Error
}
