package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/internal/pkg/reason"
)

// promptWizard parks the conversation in a wizard state and tells the member
// what to send next.
func (b *Bot) promptWizard(ctx context.Context, up Update, user *models.User, state models.WizardState, prompt string) error {
	if err := models.SetSessionState(b.db, user.ID, up.ChatID, state, 0, 0); err != nil {
		return err
	}
	b.notify(ctx, up.ChatID, prompt+" Use /cancel to abort.")
	return nil
}

// promptTargeted is promptWizard with the artwork the follow-up applies to.
func (b *Bot) promptTargeted(ctx context.Context, up Update, user *models.User, state models.WizardState, artworkID uint, prompt string) error {
	if err := models.SetSessionState(b.db, user.ID, up.ChatID, state, artworkID, 0); err != nil {
		return err
	}
	b.notify(ctx, up.ChatID, prompt+" Use /cancel to abort.")
	return nil
}

// handleWizardInput routes a plain message through the persisted wizard
// state. Photos are always submissions; everything else depends on what the
// conversation is waiting for.
func (b *Bot) handleWizardInput(ctx context.Context, up Update, user *models.User, session *models.SessionState) error {
	if up.PhotoFileID != "" {
		if session.State == models.StateAwaitingAvatar {
			if err := b.db.Model(user).Update("avatar_file_id", up.PhotoFileID).Error; err != nil {
				return err
			}
			if err := models.ResetSessionState(b.db, user.ID, up.ChatID); err != nil {
				return err
			}
			b.notify(ctx, up.ChatID, "Avatar updated.")
			return nil
		}
		return b.handleSubmission(ctx, up, user)
	}

	text := strings.TrimSpace(up.Text)

	switch session.State {
	case models.StateAwaitingArtwork:
		b.notify(ctx, up.ChatID, "Send your artwork as a photo, or /cancel.")
		return nil

	case models.StateAwaitingComment:
		if text == "" {
			return reason.ErrValidationFailed
		}
		comment, err := b.lifecycle.AddComment(ctx, user.ID, session.ArtworkID, text)
		if err != nil {
			return err
		}
		if err := models.ResetSessionState(b.db, user.ID, up.ChatID); err != nil {
			return err
		}
		b.notify(ctx, up.ChatID, "Comment added.")
		ownerID, err := b.lifecycle.ArtworkOwner(comment.ArtworkID)
		if err != nil {
			return err
		}
		return b.queue.NotifyOwner(ownerID)

	case models.StateAwaitingComplaint:
		if text == "" {
			return reason.ErrValidationFailed
		}
		if err := models.AddArtworkComplaint(b.db, session.ArtworkID, user.ID, "member-report", text); err != nil {
			return err
		}
		if err := models.ResetSessionState(b.db, user.ID, up.ChatID); err != nil {
			return err
		}
		b.notify(ctx, up.ChatID, "Thank you, your report was recorded.")
		b.notifyModerators(ctx, fmt.Sprintf("New report on artwork %d: %s", session.ArtworkID, text))
		return nil

	case models.StateAwaitingAppeal:
		if _, err := b.trust.SubmitAppeal(ctx, user.ID, text); err != nil {
			return err
		}
		if err := models.ResetSessionState(b.db, user.ID, up.ChatID); err != nil {
			return err
		}
		b.notify(ctx, up.ChatID, "Your appeal was submitted. A moderator will review it.")
		b.notifyModerators(ctx, "New appeal awaiting review. Use /appeals.")
		return nil

	case models.StateAwaitingNickname:
		if text == "" || len(text) > 100 {
			return reason.ErrValidationFailed
		}
		if err := b.db.Model(user).Update("nickname", text).Error; err != nil {
			return err
		}
		if err := models.ResetSessionState(b.db, user.ID, up.ChatID); err != nil {
			return err
		}
		b.notify(ctx, up.ChatID, "Nickname updated to "+text+".")
		return nil

	case models.StateAwaitingBio:
		if len(text) > 500 {
			return reason.ErrValidationFailed
		}
		if err := b.db.Model(user).Update("bio", text).Error; err != nil {
			return err
		}
		if err := models.ResetSessionState(b.db, user.ID, up.ChatID); err != nil {
			return err
		}
		b.notify(ctx, up.ChatID, "Bio updated.")
		return nil

	case models.StateAwaitingAvatar:
		b.notify(ctx, up.ChatID, "Send the avatar as a photo, or /cancel.")
		return nil

	case models.StateAwaitingSearch:
		return b.handleBlockedSearch(ctx, up, user, text)

	case models.StateBrowsingReactions:
		b.notify(ctx, up.ChatID, "Use the buttons to step through your reactions, or /cancel.")
		return nil
	}

	b.notify(ctx, up.ChatID, "Not sure what you mean. Try /submit, /next, /top or /gallery.")
	return nil
}
