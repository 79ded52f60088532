package engagement

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/internal/pkg/reason"
)

// Item is one unseen reaction rendered for step-through browsing.
type Item struct {
	Kind      models.EventKind
	ArtworkID uint
	Caption   string
	Remaining int
}

// Next returns the newest unseen reaction for the owner and marks it viewed,
// so repeated calls walk the backlog newest-first. reason.ErrNotFound once
// the backlog is empty. The caller should Refresh afterwards so the ticket
// count tracks what was consumed.
func (a *Aggregator) Next(ctx context.Context, ownerID uint) (*Item, error) {
	count, err := a.repo.UnseenCount(ownerID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, reason.ErrNotFound
	}
	events, err := a.repo.UnseenEvents(ownerID, 1)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, reason.ErrNotFound
	}

	ev := events[0]
	if err := models.MarkViewed(a.db, ownerID, ev.Kind, ev.ReactionID, ev.ArtworkID); err != nil {
		return nil, err
	}

	item := &Item{
		Kind:      ev.Kind,
		ArtworkID: ev.ArtworkID,
		Remaining: count - 1,
	}
	from, err := displayName(a.db, ev.FromUserID)
	if err != nil {
		return nil, err
	}
	what := "your art"
	if artwork, aerr := models.FindArtworkByID(a.db, ev.ArtworkID); aerr == nil && artwork.Caption != "" {
		what = fmt.Sprintf("%q", artwork.Caption)
	}
	switch ev.Kind {
	case models.EventComment:
		item.Caption = fmt.Sprintf("%s commented on %s: %s", from, what, ev.Text)
	default:
		item.Caption = fmt.Sprintf("%s liked %s", from, what)
	}
	return item, nil
}

// FinishAll batch-marks every unseen reaction viewed and reconciles the
// ticket, which retracts it.
func (a *Aggregator) FinishAll(ctx context.Context, ownerID uint) error {
	if err := a.repo.MarkAllViewed(ownerID); err != nil {
		return err
	}
	return a.Refresh(ctx, ownerID)
}

func displayName(db *gorm.DB, userID uint) (string, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return "", err
	}
	return user.DisplayName(false), nil
}
