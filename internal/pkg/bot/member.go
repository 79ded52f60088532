package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/internal/pkg/cache"
	"github.com/mkravets/ArtPeak/internal/pkg/lifecycle"
	"github.com/mkravets/ArtPeak/internal/pkg/moderation"
	"github.com/mkravets/ArtPeak/internal/pkg/reason"
	"github.com/mkravets/ArtPeak/internal/pkg/transport"
)

func (b *Bot) handleStart(ctx context.Context, up Update, user *models.User) error {
	if err := models.ResetSessionState(b.db, user.ID, up.ChatID); err != nil {
		return err
	}
	b.notify(ctx, up.ChatID,
		"Welcome to the gallery! Share your art with /submit, browse with /next, "+
			"see the standings with /top. /gallery shows your own work.")
	return nil
}

func (b *Bot) handleSubmitPrompt(ctx context.Context, up Update, user *models.User) error {
	count, err := models.CountArtworksByOwner(b.db, user.ID)
	if err != nil {
		return err
	}
	if count >= models.MaxArtworksPerUser {
		return reason.ErrQuotaExceeded
	}
	if err := models.SetSessionState(b.db, user.ID, up.ChatID, models.StateAwaitingArtwork, 0, 0); err != nil {
		return err
	}
	b.notify(ctx, up.ChatID, "Send your artwork as a photo. Add a caption with up to 5 hashtags, or /cancel.")
	return nil
}

// handleSubmission runs an incoming photo through the moderation pipeline
// and tells the member what happened.
func (b *Bot) handleSubmission(ctx context.Context, up Update, user *models.User) error {
	result, err := b.lifecycle.Submit(ctx, user, up.ImageData, up.PhotoFileID, up.Text)
	if err != nil {
		return err
	}
	if err := models.ResetSessionState(b.db, user.ID, up.ChatID); err != nil {
		return err
	}

	if result.Artwork != nil {
		b.notify(ctx, up.ChatID, "Published! Your artwork is now visible to the community.")
		return nil
	}

	switch {
	case result.PrecheckReason != "":
		b.notify(ctx, up.ChatID, "Your submission did not pass the automated checks and was queued for manual review.")
	case result.Decision.Verdict == moderation.VerdictRejectNeedsReview:
		b.notify(ctx, up.ChatID, "Screening is temporarily unavailable. Your submission was queued for manual review.")
	default:
		b.notify(ctx, up.ChatID, "Your submission was flagged by the automated screening and was queued for manual review.")
	}
	b.notifyModerators(ctx, fmt.Sprintf("New submission #%d awaiting review. Use /review.", result.Pending.ID))
	return nil
}

func (b *Bot) handleNext(ctx context.Context, up Update, user *models.User, hashtagFilter string) error {
	artwork, err := b.lifecycle.Repos().Artwork.NextUnseen(user.ID, hashtagFilter)
	if err != nil {
		return err
	}
	if artwork == nil {
		if hashtagFilter != "" {
			b.notify(ctx, up.ChatID, "No new artworks under #"+hashtagFilter+" right now. Check back later!")
		} else {
			b.notify(ctx, up.ChatID, "You have seen everything! Check back later.")
		}
		return nil
	}
	return b.sendArtworkView(ctx, up.ChatID, artwork, user.ID)
}

func (b *Bot) handleTop(ctx context.Context, up Update, hashtagFilter string) error {
	cacheKey := "leaderboard:" + hashtagFilter
	if cached, cerr := cache.Get(cacheKey); cerr == nil && cached != "" {
		b.notify(ctx, up.ChatID, cached)
		return nil
	}

	ranked, err := b.lifecycle.Rank(lifecycle.RankByLikes, hashtagFilter)
	if err != nil {
		return err
	}
	if len(ranked) == 0 {
		b.notify(ctx, up.ChatID, "No ranked artworks yet. Be the first: /submit")
		return nil
	}

	var sb strings.Builder
	if hashtagFilter != "" {
		fmt.Fprintf(&sb, "Top artworks for #%s:\n", hashtagFilter)
	} else {
		sb.WriteString("Top artworks:\n")
	}
	shown := 0
	for _, entry := range ranked {
		if shown == 10 {
			break
		}
		owner := models.User{}
		if err := b.db.First(&owner, entry.OwnerID).Error; err != nil {
			return err
		}
		fmt.Fprintf(&sb, "%d. %s | 👍 %d\n", entry.Rank, owner.DisplayName(false), entry.Likes)
		shown++
	}
	// A stale leaderboard for a few seconds is fine; reactions invalidate it.
	_ = cache.Set(cacheKey, sb.String(), 30*time.Second)
	b.notify(ctx, up.ChatID, sb.String())
	return nil
}

// handleTags lists trending hashtags, or the ones matching a query.
func (b *Bot) handleTags(ctx context.Context, up Update, query string) error {
	var tags []models.Tag
	var err error
	if query == "" {
		tags, err = models.PopularTags(b.db, 10)
	} else {
		tags, err = models.SearchTags(b.db, query, 10)
	}
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		if query == "" {
			b.notify(ctx, up.ChatID, "No hashtags in use yet. Start one with /submit!")
		} else {
			b.notify(ctx, up.ChatID, "No hashtags matching "+query+".")
		}
		return nil
	}

	var sb strings.Builder
	if query == "" {
		sb.WriteString("Trending hashtags:\n")
	} else {
		fmt.Fprintf(&sb, "Hashtags matching %q:\n", query)
	}
	for _, tag := range tags {
		fmt.Fprintf(&sb, "#%s (%d)\n", tag.Name, tag.UsageCount)
	}
	sb.WriteString("Browse one with /next #tag or rank it with /top #tag.")
	b.notify(ctx, up.ChatID, sb.String())
	return nil
}

func (b *Bot) handleGallery(ctx context.Context, up Update, user *models.User) error {
	stats, err := b.lifecycle.Repos().Artwork.GetOwnerStats(user.ID)
	if err != nil {
		return err
	}
	if stats.TotalArtworks == 0 {
		b.notify(ctx, up.ChatID, "Your gallery is empty. Share something with /submit!")
		return nil
	}

	header := fmt.Sprintf("Your gallery: %d artworks, 👍 %d, 👎 %d",
		stats.TotalArtworks, stats.TotalLikes, stats.TotalDislikes)
	if rank, ok, err := b.lifecycle.OwnerRank(user.ID, ""); err != nil {
		return err
	} else if ok {
		header += fmt.Sprintf("\nYour best artwork ranks #%d overall.", rank)
	}
	b.notify(ctx, up.ChatID, header)

	artworks, err := b.lifecycle.Repos().Artwork.GetByOwnerID(user.ID)
	if err != nil {
		return err
	}
	for i := range artworks {
		if err := b.sendArtworkView(ctx, up.ChatID, &artworks[i], user.ID); err != nil {
			return err
		}
	}
	return nil
}

// handleProfile shows the member's own profile, or another member's when a
// username is given and that profile is public.
func (b *Bot) handleProfile(ctx context.Context, up Update, user *models.User, username string) error {
	if username != "" {
		return b.showMemberProfile(ctx, up, user, username)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Name shown to others: %s\n", user.DisplayName(false))
	if user.Bio != "" {
		fmt.Fprintf(&sb, "Bio: %s\n", user.Bio)
	}
	if user.AvatarFileID != "" {
		sb.WriteString("Avatar: set\n")
	}
	if user.IsProfilePublic {
		sb.WriteString("Profile: public (others can view it with /profile)\n")
	} else {
		sb.WriteString("Profile: private\n")
	}
	sb.WriteString("Change it with /nickname, /bio or /avatar. Toggle /privacy or /anon.")
	b.notify(ctx, up.ChatID, sb.String())
	return nil
}

func (b *Bot) showMemberProfile(ctx context.Context, up Update, viewer *models.User, username string) error {
	target, err := findUserByUsername(b.db, username)
	if err != nil {
		return err
	}
	if target == nil {
		b.notify(ctx, up.ChatID, "No account named @"+username+".")
		return nil
	}
	if target.ID != viewer.ID && !target.IsProfilePublic {
		b.notify(ctx, up.ChatID, "That profile is private.")
		return nil
	}

	var sb strings.Builder
	sb.WriteString(target.DisplayName(false))
	if target.Bio != "" {
		sb.WriteString("\n")
		sb.WriteString(target.Bio)
	}
	if target.AvatarFileID != "" {
		return transport.WithRetry(ctx, func() error {
			_, serr := b.transport.SendArtwork(ctx, up.ChatID, target.AvatarFileID, sb.String(), nil)
			return serr
		})
	}
	b.notify(ctx, up.ChatID, sb.String())
	return nil
}

func (b *Bot) handleTogglePrivacy(ctx context.Context, up Update, user *models.User) error {
	user.IsProfilePublic = !user.IsProfilePublic
	if err := b.db.Model(user).Update("is_profile_public", user.IsProfilePublic).Error; err != nil {
		return err
	}
	if user.IsProfilePublic {
		b.notify(ctx, up.ChatID, "Your profile is now public. Others can view it with /profile @"+user.Username+".")
	} else {
		b.notify(ctx, up.ChatID, "Your profile is now private.")
	}
	return nil
}

func (b *Bot) handleToggleAnonymity(ctx context.Context, up Update, user *models.User) error {
	user.HideUsername = !user.HideUsername
	if err := b.db.Model(user).Update("hide_username", user.HideUsername).Error; err != nil {
		return err
	}
	if user.HideUsername {
		b.notify(ctx, up.ChatID, "Your name is now hidden. Others see you as Anonymous.")
	} else {
		b.notify(ctx, up.ChatID, "Your name is visible again.")
	}
	return nil
}

// handleDeleteArtwork takes down one of the member's own artworks, freeing a
// quota slot. Moderators may take down anyone's.
func (b *Bot) handleDeleteArtwork(ctx context.Context, up Update, user *models.User, artworkID uint) error {
	ownerID, err := b.lifecycle.ArtworkOwner(artworkID)
	if err != nil {
		return err
	}
	if ownerID != user.ID && !b.isModerator(up.ChatUserID) {
		b.notify(ctx, up.ChatID, "You can only delete your own artworks.")
		return nil
	}

	deleteReason := models.ReasonOwnerDeleted
	if ownerID != user.ID {
		deleteReason = "moderator decision"
	}
	if _, err := b.lifecycle.SoftDelete(ctx, artworkID, deleteReason); err != nil {
		return err
	}
	_ = cache.DeletePattern("leaderboard:*")

	if ownerID == user.ID {
		b.notify(ctx, up.ChatID, fmt.Sprintf("Artwork %d deleted. That frees a slot for a new submission.", artworkID))
	} else {
		b.notify(ctx, up.ChatID, fmt.Sprintf("Artwork %d removed.", artworkID))
	}
	return nil
}

func (b *Bot) handleReact(ctx context.Context, up Update, user *models.User, artworkID uint, kind models.ReactionKind) error {
	ownerID, err := b.lifecycle.ArtworkOwner(artworkID)
	if err != nil {
		return err
	}
	if ownerID == user.ID {
		b.notify(ctx, up.ChatID, "You cannot react to your own artwork.")
		return nil
	}

	if err := b.lifecycle.React(ctx, user.ID, artworkID, kind); err != nil {
		return err
	}

	_ = cache.DeletePattern("leaderboard:*")

	// Fan-out rides the job queue so the handler stays fast.
	if err := b.queue.RefreshViews(artworkID); err != nil {
		return err
	}
	if kind == models.ReactionLike {
		if err := b.queue.NotifyOwner(ownerID); err != nil {
			return err
		}
	}
	return nil
}

// handleNextReaction steps the owner through their unseen likes and
// comments, newest first.
func (b *Bot) handleNextReaction(ctx context.Context, up Update, user *models.User) error {
	item, err := b.engagement.Next(ctx, user.ID)
	if err != nil {
		if errors.Is(err, reason.ErrNotFound) {
			if rerr := models.ResetSessionState(b.db, user.ID, up.ChatID); rerr != nil {
				return rerr
			}
			b.notify(ctx, up.ChatID, "You are all caught up!")
			return b.engagement.Refresh(ctx, user.ID)
		}
		return err
	}

	if err := models.SetSessionState(b.db, user.ID, up.ChatID, models.StateBrowsingReactions, 0, 0); err != nil {
		return err
	}

	text := item.Caption
	if item.Remaining > 0 {
		text += fmt.Sprintf("\n(%d more unseen)", item.Remaining)
	}
	controls := controlsFor(item.Remaining)
	err = b.transportNotice(ctx, up.ChatID, text, controls)
	if err != nil {
		return err
	}
	// The ticket count just changed; reconcile it in the background.
	return b.queue.NotifyOwner(user.ID)
}

func (b *Bot) handleFinishReactions(ctx context.Context, up Update, user *models.User) error {
	if err := b.engagement.FinishAll(ctx, user.ID); err != nil {
		return err
	}
	if err := models.ResetSessionState(b.db, user.ID, up.ChatID); err != nil {
		return err
	}
	b.notify(ctx, up.ChatID, "All reactions marked as seen.")
	return nil
}

// handleReportUser records a profile complaint against an account.
func (b *Bot) handleReportUser(ctx context.Context, up Update, user *models.User, username string) error {
	if username == "" {
		b.notify(ctx, up.ChatID, "Usage: /report <username>")
		return nil
	}
	target, err := findUserByUsername(b.db, username)
	if err != nil {
		return err
	}
	if target == nil {
		b.notify(ctx, up.ChatID, "No account named @"+username+".")
		return nil
	}
	if target.ID == user.ID {
		b.notify(ctx, up.ChatID, "You cannot report yourself.")
		return nil
	}
	if err := models.AddProfileComplaint(b.db, target.ID, user.ID, "member-report"); err != nil {
		return err
	}
	b.notify(ctx, up.ChatID, "Thank you, your report was recorded.")
	b.notifyModerators(ctx, fmt.Sprintf("New report against @%s (user %d).", target.Username, target.ID))
	return nil
}

func (b *Bot) handleAppealPrompt(ctx context.Context, up Update, user *models.User) error {
	block, err := b.trust.BlockStatus(user.ID)
	if err != nil {
		if errors.Is(err, reason.ErrNotFound) {
			b.notify(ctx, up.ChatID, "Your account is not blocked; there is nothing to appeal.")
			return nil
		}
		return err
	}
	if err := models.SetSessionState(b.db, user.ID, up.ChatID, models.StateAwaitingAppeal, 0, 0); err != nil {
		return err
	}

	prompt := fmt.Sprintf("Your account is blocked (%s). Describe why the block should be lifted.", block.Reason)
	if pending, perr := b.trust.PendingAppeal(user.ID); perr == nil && pending != nil {
		prompt += " You already have a pending appeal; a new text replaces it."
	}
	b.notify(ctx, up.ChatID, prompt)
	return nil
}

// controlsFor builds the step-through controls: "next" while the backlog has
// more, "done" always.
func controlsFor(remaining int) transport.Controls {
	row := []transport.Control{}
	if remaining > 0 {
		row = append(row, transport.Control{Label: "Next", Action: EncodeAction(CmdNextReaction, 0)})
	}
	row = append(row, transport.Control{Label: "Done", Action: EncodeAction(CmdFinishReactions, 0)})
	return transport.Controls{row}
}

// notifyModerators fans a notice out to every configured operator chat.
func (b *Bot) notifyModerators(ctx context.Context, text string) {
	for chatID := range b.moderators {
		b.notify(ctx, chatID, text)
	}
}
