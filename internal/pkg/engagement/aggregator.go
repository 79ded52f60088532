package engagement

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/app/repository"
	"github.com/mkravets/ArtPeak/internal/pkg/transport"
)

// Aggregator keeps each owner's reaction notification in sync with their
// unseen count. There is one live-updating ticket per owner, never a message
// per event.
type Aggregator struct {
	db        *gorm.DB
	repo      repository.EngagementRepository
	transport transport.Client
}

func NewAggregator(db *gorm.DB, tc transport.Client) *Aggregator {
	return &Aggregator{
		db:        db,
		repo:      repository.NewEngagementRepository(db),
		transport: tc,
	}
}

// UnseenCount is the owner's current number of unseen likes and comments.
func (a *Aggregator) UnseenCount(ownerID uint) (int, error) {
	return a.repo.UnseenCount(ownerID)
}

// Refresh reconciles the owner's ticket with the current unseen count:
// retracts it at zero, creates it when missing, edits it in place when the
// rendered count went stale. Safe to call repeatedly; the reminder sweep
// reuses it verbatim.
func (a *Aggregator) Refresh(ctx context.Context, ownerID uint) error {
	count, err := a.repo.UnseenCount(ownerID)
	if err != nil {
		return fmt.Errorf("unseen count for owner %d: %w", ownerID, err)
	}

	ticket, terr := models.FindNotificationMessage(a.db, ownerID)
	haveTicket := terr == nil
	if terr != nil && !errors.Is(terr, gorm.ErrRecordNotFound) {
		return terr
	}

	if count == 0 {
		if !haveTicket {
			return nil
		}
		ref := transport.Ref{ChatID: ticket.ChatID, MessageID: ticket.MessageID}
		if err := a.transport.DeleteMessage(ctx, ref); err != nil && !transport.IsPermanent(err) {
			log.Warnf("[Engagement] could not retract notification for owner %d: %v", ownerID, err)
		}
		return models.DeleteNotificationMessage(a.db, ownerID)
	}

	text, controls := renderTicket(count)

	if haveTicket {
		if ticket.LastCount == count {
			return nil
		}
		ref := transport.Ref{ChatID: ticket.ChatID, MessageID: ticket.MessageID}
		err := transport.WithRetry(ctx, func() error {
			return a.transport.EditNotice(ctx, ref, text, controls)
		})
		if err != nil && !errors.Is(err, transport.ErrNotModified) {
			// Stale render target: drop the row and send a fresh ticket.
			log.Warnf("[Engagement] edit failed for owner %d, reissuing: %v", ownerID, err)
			if derr := models.DeleteNotificationMessage(a.db, ownerID); derr != nil {
				return derr
			}
			return a.issue(ctx, ownerID, count, text, controls)
		}
		return a.saveTicket(ownerID, ticket.MessageID, ticket.ChatID, count)
	}

	return a.issue(ctx, ownerID, count, text, controls)
}

// issue sends a brand new ticket message and records it.
func (a *Aggregator) issue(ctx context.Context, ownerID uint, count int, text string, controls transport.Controls) error {
	owner := models.User{}
	if err := a.db.First(&owner, ownerID).Error; err != nil {
		return err
	}
	var ref transport.Ref
	err := transport.WithRetry(ctx, func() error {
		var serr error
		ref, serr = a.transport.SendNotice(ctx, owner.ChatUserID, text, controls)
		return serr
	})
	if err != nil {
		// Best effort: the reminder sweep will try again.
		log.Errorf("[Engagement] could not deliver notification to owner %d: %v", ownerID, err)
		return nil
	}
	return a.saveTicket(ownerID, ref.MessageID, ref.ChatID, count)
}

// saveTicket upserts the singleton ticket row for the owner.
func (a *Aggregator) saveTicket(ownerID uint, messageID, chatID int64, count int) error {
	ticket := models.NotificationMessage{
		UserID:    ownerID,
		MessageID: messageID,
		ChatID:    chatID,
		LastCount: count,
	}
	return a.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"message_id", "chat_id", "last_count"}),
	}).Create(&ticket).Error
}

// RemindAll re-runs Refresh for every owner with outstanding unseen items.
// Recovers tickets lost to missed live updates; runs on a 12h schedule.
func (a *Aggregator) RemindAll(ctx context.Context) error {
	owners, err := a.repo.OwnersWithUnseen()
	if err != nil {
		return err
	}
	for _, ownerID := range owners {
		if err := a.Refresh(ctx, ownerID); err != nil {
			log.Errorf("[Engagement] reminder refresh failed for owner %d: %v", ownerID, err)
		}
	}
	return nil
}

func renderTicket(count int) (string, transport.Controls) {
	text := fmt.Sprintf("Your art got %d new reactions!", count)
	if count == 1 {
		text = "Your art got 1 new reaction!"
	}
	controls := transport.Controls{
		{{Label: "Show", Action: "show_reactions"}},
	}
	return text, controls
}
