package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/internal/pkg/reason"
	"github.com/mkravets/ArtPeak/internal/pkg/transport"
)

const reviewPageSize = 10
const blockedBrowserWindow = 200

// handleReviewQueue renders the open human-review queue, oldest first, one
// submission per message with its approve/reject controls.
func (b *Bot) handleReviewQueue(ctx context.Context, up Update) error {
	pending, err := models.ListPendingArtworks(b.db, 0, reviewPageSize)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		b.notify(ctx, up.ChatID, "The review queue is empty.")
		return nil
	}

	for _, p := range pending {
		owner := models.User{}
		if err := b.db.First(&owner, p.OwnerID).Error; err != nil {
			return err
		}
		caption := fmt.Sprintf("Submission #%d by %s\n%s", p.ID, owner.DisplayName(true), p.Caption)
		controls := transport.Controls{
			{
				{Label: "✅ Approve", Action: EncodeAction(CmdReviewApprove, p.ID)},
				{Label: "❌ Reject", Action: EncodeAction(CmdReviewReject, p.ID)},
			},
		}
		err := transport.WithRetry(ctx, func() error {
			_, serr := b.transport.SendArtwork(ctx, up.ChatID, p.FileID, caption, controls)
			return serr
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) handleReviewDecision(ctx context.Context, up Update, pendingID uint, approve bool) error {
	artwork, pending, err := b.lifecycle.ResolveHeld(ctx, pendingID, approve)
	if err != nil {
		if errors.Is(err, reason.ErrQuotaExceeded) {
			b.notify(ctx, up.ChatID, fmt.Sprintf("Submission #%d cannot be approved: the owner is at the artwork limit. It stays in the queue.", pendingID))
			return nil
		}
		if errors.Is(err, reason.ErrUserBlocked) {
			b.notify(ctx, up.ChatID, fmt.Sprintf("Submission #%d cannot be approved: the owner is blocked. It stays in the queue until the block clears.", pendingID))
			return nil
		}
		return err
	}

	owner := models.User{}
	if err := b.db.First(&owner, pending.OwnerID).Error; err != nil {
		return err
	}

	if approve {
		b.notify(ctx, up.ChatID, fmt.Sprintf("Submission #%d approved and published as artwork %d.", pendingID, artwork.ID))
		b.notify(ctx, owner.ChatUserID, "Good news: a moderator approved your submission. It is now published!")
	} else {
		b.notify(ctx, up.ChatID, fmt.Sprintf("Submission #%d rejected and discarded.", pendingID))
		b.notify(ctx, owner.ChatUserID, "A moderator reviewed your submission and rejected it.")
	}
	return nil
}

// handleBlockedBrowser opens the deleted-content browser at a cursor
// position inside the restorable window.
func (b *Bot) handleBlockedBrowser(ctx context.Context, up Update, user *models.User, cursor int) error {
	snapshots, err := models.ListRestorableArtworks(b.db, 0, blockedBrowserWindow)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		b.notify(ctx, up.ChatID, "No restorable deleted content right now.")
		return nil
	}

	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(snapshots) {
		cursor = len(snapshots) - 1
	}
	if err := models.SetSessionState(b.db, user.ID, up.ChatID, models.StateIdle, 0, cursor); err != nil {
		return err
	}

	return b.sendSnapshotView(ctx, up.ChatID, &snapshots[cursor], cursor, len(snapshots))
}

func (b *Bot) handleBlockedStep(ctx context.Context, up Update, user *models.User, step int) error {
	session, err := models.GetSessionState(b.db, user.ID, up.ChatID)
	if err != nil {
		return err
	}
	return b.handleBlockedBrowser(ctx, up, user, session.Cursor+step)
}

func (b *Bot) sendSnapshotView(ctx context.Context, chatID int64, snapshot *models.DeletedArtwork, position, total int) error {
	owner := models.User{}
	if err := b.db.First(&owner, snapshot.OwnerID).Error; err != nil {
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Deleted artwork %d (%d of %d)\n", snapshot.ArtworkID, position+1, total)
	fmt.Fprintf(&sb, "Owner: %s\n", owner.DisplayName(true))
	fmt.Fprintf(&sb, "Reason: %s\n", snapshot.Reason)
	fmt.Fprintf(&sb, "Deleted: %s\n", snapshot.DeletedAt.Format("2006-01-02 15:04"))
	if snapshot.Caption != "" {
		fmt.Fprintf(&sb, "Caption: %s\n", snapshot.Caption)
	}
	fmt.Fprintf(&sb, "👍 %d  👎 %d", snapshot.Likes, snapshot.Dislikes)

	controls := transport.Controls{
		{
			{Label: "◀ Prev", Action: EncodeAction(CmdBlockedPrev, 0)},
			{Label: "Next ▶", Action: EncodeAction(CmdBlockedNext, 0)},
		},
		{
			{Label: "♻ Restore", Action: EncodeAction(CmdBlockedRestore, snapshot.ArtworkID)},
			{Label: "🔍 Search", Action: EncodeAction(CmdBlockedSearch, 0)},
		},
	}
	return transport.WithRetry(ctx, func() error {
		_, serr := b.transport.SendArtwork(ctx, chatID, snapshot.FileID, sb.String(), controls)
		return serr
	})
}

func (b *Bot) handleBlockedRestore(ctx context.Context, up Update, artworkID uint) error {
	artwork, err := b.lifecycle.Restore(ctx, artworkID)
	if err != nil {
		if errors.Is(err, reason.ErrUserBlocked) {
			b.notify(ctx, up.ChatID, "This snapshot belongs to a blocked account. Unblock the account to restore all of its content at once.")
			return nil
		}
		return err
	}
	b.notify(ctx, up.ChatID, fmt.Sprintf("Artwork %d restored with its counters intact.", artwork.ID))

	owner := models.User{}
	if err := b.db.First(&owner, artwork.OwnerID).Error; err != nil {
		return err
	}
	b.notify(ctx, owner.ChatUserID, "A moderator restored one of your deleted artworks.")
	return b.queue.RefreshViews(artwork.ID)
}

// handleBlockedSearch resolves the searched username and lists that
// account's restorable snapshots.
func (b *Bot) handleBlockedSearch(ctx context.Context, up Update, user *models.User, query string) error {
	if err := models.ResetSessionState(b.db, user.ID, up.ChatID); err != nil {
		return err
	}

	query = strings.TrimPrefix(query, "@")
	target := models.User{}
	if err := b.db.Where("username = ?", query).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			b.notify(ctx, up.ChatID, "No account named @"+query+".")
			return nil
		}
		return err
	}

	snapshots, err := models.ListRestorableArtworksByOwner(b.db, target.ID)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		b.notify(ctx, up.ChatID, "@"+query+" has no restorable deleted content.")
		return nil
	}
	for i := range snapshots {
		if err := b.sendSnapshotView(ctx, up.ChatID, &snapshots[i], i, len(snapshots)); err != nil {
			return err
		}
	}
	return nil
}

// handleAppealQueue renders pending appeals, oldest first, with their
// approve/reject controls.
func (b *Bot) handleAppealQueue(ctx context.Context, up Update) error {
	appeals, err := b.trust.AppealQueue()
	if err != nil {
		return err
	}
	if len(appeals) == 0 {
		b.notify(ctx, up.ChatID, "No pending appeals.")
		return nil
	}

	for _, appeal := range appeals {
		appellant := models.User{}
		if err := b.db.First(&appellant, appeal.UserID).Error; err != nil {
			return err
		}
		text := fmt.Sprintf("Appeal #%d by %s\n%s", appeal.ID, appellant.DisplayName(true), appeal.Reason)
		controls := transport.Controls{
			{
				{Label: "✅ Unblock", Action: EncodeAction(CmdAppealApprove, appeal.ID)},
				{Label: "❌ Keep blocked", Action: EncodeAction(CmdAppealReject, appeal.ID)},
			},
		}
		if err := b.transportNotice(ctx, up.ChatID, text, controls); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) handleAppealDecision(ctx context.Context, up Update, moderator *models.User, appealID uint, approve bool) error {
	appeal, err := b.trust.DecideAppeal(ctx, appealID, approve, moderator.ID)
	if err != nil {
		return err
	}

	appellant := models.User{}
	if err := b.db.First(&appellant, appeal.UserID).Error; err != nil {
		return err
	}

	if approve {
		b.notify(ctx, up.ChatID, fmt.Sprintf("Appeal #%d approved. %s is unblocked and their content restored.", appealID, appellant.DisplayName(true)))
		b.notify(ctx, appellant.ChatUserID, "Your appeal was approved. The block is lifted and your artworks are back.")
	} else {
		b.notify(ctx, up.ChatID, fmt.Sprintf("Appeal #%d rejected.", appealID))
		b.notify(ctx, appellant.ChatUserID, "Your appeal was reviewed and rejected. The block stays in place.")
	}
	return nil
}

func (b *Bot) handleBlockUser(ctx context.Context, up Update, moderator *models.User, username string) error {
	if username == "" {
		b.notify(ctx, up.ChatID, "Usage: /block <username>")
		return nil
	}
	target := models.User{}
	if err := b.db.Where("username = ?", username).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			b.notify(ctx, up.ChatID, "No account named @"+username+".")
			return nil
		}
		return err
	}

	if err := b.trust.Block(ctx, target.ID, "moderator decision", moderator.ID); err != nil {
		return err
	}
	b.notify(ctx, up.ChatID, fmt.Sprintf("@%s blocked. Their artworks were removed and stay restorable while the block lives.", username))
	b.notify(ctx, target.ChatUserID, "Your account was blocked by a moderator. You can /appeal this decision.")
	return nil
}

func (b *Bot) handleUnblockUser(ctx context.Context, up Update, username string) error {
	if username == "" {
		b.notify(ctx, up.ChatID, "Usage: /unblock <username>")
		return nil
	}
	target := models.User{}
	if err := b.db.Where("username = ?", username).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			b.notify(ctx, up.ChatID, "No account named @"+username+".")
			return nil
		}
		return err
	}

	if err := b.trust.Unblock(ctx, target.ID); err != nil {
		return err
	}
	b.notify(ctx, up.ChatID, fmt.Sprintf("@%s unblocked and their content restored.", username))
	b.notify(ctx, target.ChatUserID, "Your block was lifted. Welcome back!")
	return nil
}
