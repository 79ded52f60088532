package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/internal/pkg/engagement"
	"github.com/mkravets/ArtPeak/internal/pkg/env"
	"github.com/mkravets/ArtPeak/internal/pkg/jobqueue"
	"github.com/mkravets/ArtPeak/internal/pkg/lifecycle"
	"github.com/mkravets/ArtPeak/internal/pkg/reason"
	"github.com/mkravets/ArtPeak/internal/pkg/transport"
	"github.com/mkravets/ArtPeak/internal/pkg/trust"
	"github.com/mkravets/ArtPeak/internal/pkg/viewsync"
)

// Update is one inbound transport event, already normalized by the transport
// adapter. Callback is set when a control was pressed, Text and PhotoFileID
// for plain messages.
type Update struct {
	ChatID      int64
	ChatUserID  int64
	Username    string
	Text        string
	PhotoFileID string
	// ImageData is the downloaded photo payload, present with PhotoFileID.
	ImageData []byte
	Callback  *Callback
}

// Callback is a pressed control: where it was rendered and what it encodes.
type Callback struct {
	Ref    transport.Ref
	Action string
}

// Bot dispatches decoded commands to the managers and renders the results.
type Bot struct {
	db          *gorm.DB
	lifecycle   *lifecycle.Manager
	trust       *trust.Manager
	engagement  *engagement.Aggregator
	views       *viewsync.Broadcaster
	queue       *jobqueue.Queue
	transport   transport.Client
	moderators  map[int64]bool
}

func New(db *gorm.DB, lm *lifecycle.Manager, tm *trust.Manager, agg *engagement.Aggregator, bc *viewsync.Broadcaster, queue *jobqueue.Queue, tc transport.Client) *Bot {
	return &Bot{
		db:         db,
		lifecycle:  lm,
		trust:      tm,
		engagement: agg,
		views:      bc,
		queue:      queue,
		transport:  tc,
		moderators: moderatorSet(),
	}
}

// moderatorSet parses MODERATOR_CHAT_IDS, a comma separated list of chat
// user ids with operator rights.
func moderatorSet() map[int64]bool {
	set := make(map[int64]bool)
	for _, field := range strings.Split(env.GetEnv("MODERATOR_CHAT_IDS", ""), ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			log.Warnf("[Bot] ignoring malformed moderator id %q", field)
			continue
		}
		set[id] = true
	}
	return set
}

func (b *Bot) isModerator(chatUserID int64) bool {
	return b.moderators[chatUserID]
}

// HandleUpdate is the single dispatch entry point. It never returns an
// error: every failure is reported inline to the member and logged, so one
// bad update cannot take the loop down.
func (b *Bot) HandleUpdate(ctx context.Context, up Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[Bot] panic handling update from chat %d: %v", up.ChatID, r)
		}
	}()

	user, err := models.FindOrCreateUser(b.db, up.ChatUserID, up.Username)
	if err != nil {
		log.Errorf("[Bot] user lookup failed for chat user %d: %v", up.ChatUserID, err)
		return
	}

	if err := b.dispatch(ctx, up, user); err != nil {
		log.Errorf("[Bot] %s from user %d failed: %v", describe(up), user.ID, err)
		b.notify(ctx, up.ChatID, failureText(err))
	}
}

func (b *Bot) dispatch(ctx context.Context, up Update, user *models.User) error {
	blocked, err := b.trust.IsBlocked(user.ID)
	if err != nil {
		return err
	}

	if up.Callback != nil {
		cmd := DecodeCallback(up.Callback.Action)
		if blocked && !b.isModerator(up.ChatUserID) {
			b.notify(ctx, up.ChatID, "Your account is blocked. Use /appeal to request a review.")
			return nil
		}
		return b.handleCommand(ctx, up, user, cmd)
	}

	if cmd, isCommand := DecodeText(up.Text); isCommand {
		if blocked && !b.isModerator(up.ChatUserID) && cmd.Kind != CmdAppeal && cmd.Kind != CmdStart && cmd.Kind != CmdCancel {
			b.notify(ctx, up.ChatID, "Your account is blocked. Use /appeal to request a review.")
			return nil
		}
		// A slash command always leaves whatever wizard was in progress.
		if err := models.ResetSessionState(b.db, user.ID, up.ChatID); err != nil {
			return err
		}
		return b.handleCommand(ctx, up, user, cmd)
	}

	// Plain text or a photo: meaning depends on the wizard state.
	session, err := models.GetSessionState(b.db, user.ID, up.ChatID)
	if err != nil {
		return err
	}
	if blocked && !b.isModerator(up.ChatUserID) && session.State != models.StateAwaitingAppeal {
		b.notify(ctx, up.ChatID, "Your account is blocked. Use /appeal to request a review.")
		return nil
	}
	return b.handleWizardInput(ctx, up, user, session)
}

func (b *Bot) handleCommand(ctx context.Context, up Update, user *models.User, cmd Command) error {
	if operatorOnly(cmd.Kind) && !b.isModerator(up.ChatUserID) {
		b.notify(ctx, up.ChatID, "This command is restricted to moderators.")
		return nil
	}

	switch cmd.Kind {
	case CmdStart:
		return b.handleStart(ctx, up, user)
	case CmdSubmit:
		return b.handleSubmitPrompt(ctx, up, user)
	case CmdNext:
		return b.handleNext(ctx, up, user, cmd.Arg)
	case CmdTop:
		return b.handleTop(ctx, up, cmd.Arg)
	case CmdGallery:
		return b.handleGallery(ctx, up, user)
	case CmdProfile:
		return b.handleProfile(ctx, up, user, cmd.Arg)
	case CmdNickname:
		return b.promptWizard(ctx, up, user, models.StateAwaitingNickname, "Send your new nickname.")
	case CmdBio:
		return b.promptWizard(ctx, up, user, models.StateAwaitingBio, "Send your new bio (up to 500 characters).")
	case CmdAvatar:
		return b.promptWizard(ctx, up, user, models.StateAwaitingAvatar, "Send the photo to use as your avatar.")
	case CmdTogglePrivacy:
		return b.handleTogglePrivacy(ctx, up, user)
	case CmdToggleAnonymity:
		return b.handleToggleAnonymity(ctx, up, user)
	case CmdTags:
		return b.handleTags(ctx, up, cmd.Arg)
	case CmdReactions, CmdShowReactions, CmdNextReaction:
		return b.handleNextReaction(ctx, up, user)
	case CmdFinishReactions:
		return b.handleFinishReactions(ctx, up, user)
	case CmdReportUser:
		return b.handleReportUser(ctx, up, user, cmd.Arg)
	case CmdAppeal:
		return b.handleAppealPrompt(ctx, up, user)
	case CmdCancel:
		if err := models.ResetSessionState(b.db, user.ID, up.ChatID); err != nil {
			return err
		}
		b.notify(ctx, up.ChatID, "Cancelled.")
		return nil
	case CmdLike:
		return b.handleReact(ctx, up, user, cmd.ID, models.ReactionLike)
	case CmdDislike:
		return b.handleReact(ctx, up, user, cmd.ID, models.ReactionDislike)
	case CmdComment:
		return b.promptTargeted(ctx, up, user, models.StateAwaitingComment, cmd.ID, "Send your comment.")
	case CmdComplain:
		return b.promptTargeted(ctx, up, user, models.StateAwaitingComplaint, cmd.ID, "Describe what is wrong with this artwork.")
	case CmdDeleteArtwork:
		return b.handleDeleteArtwork(ctx, up, user, cmd.ID)

	case CmdReview:
		return b.handleReviewQueue(ctx, up)
	case CmdReviewApprove:
		return b.handleReviewDecision(ctx, up, cmd.ID, true)
	case CmdReviewReject:
		return b.handleReviewDecision(ctx, up, cmd.ID, false)
	case CmdBlocked:
		return b.handleBlockedBrowser(ctx, up, user, 0)
	case CmdBlockedPrev:
		return b.handleBlockedStep(ctx, up, user, -1)
	case CmdBlockedNext:
		return b.handleBlockedStep(ctx, up, user, +1)
	case CmdBlockedRestore:
		return b.handleBlockedRestore(ctx, up, cmd.ID)
	case CmdBlockedSearch:
		return b.promptWizard(ctx, up, user, models.StateAwaitingSearch, "Send the username to search deleted content for.")
	case CmdAppeals:
		return b.handleAppealQueue(ctx, up)
	case CmdAppealApprove:
		return b.handleAppealDecision(ctx, up, user, cmd.ID, true)
	case CmdAppealReject:
		return b.handleAppealDecision(ctx, up, user, cmd.ID, false)
	case CmdBlockUser:
		return b.handleBlockUser(ctx, up, user, cmd.Arg)
	case CmdUnblockUser:
		return b.handleUnblockUser(ctx, up, cmd.Arg)
	}

	b.notify(ctx, up.ChatID, "Unknown command. Try /submit, /next, /top, /gallery or /profile.")
	return nil
}

func operatorOnly(kind CommandKind) bool {
	switch kind {
	case CmdReview, CmdReviewApprove, CmdReviewReject,
		CmdBlocked, CmdBlockedPrev, CmdBlockedNext, CmdBlockedRestore, CmdBlockedSearch,
		CmdAppeals, CmdAppealApprove, CmdAppealReject,
		CmdBlockUser, CmdUnblockUser:
		return true
	}
	return false
}

// notify is the best-effort inline reply. Failures are logged, never fatal.
func (b *Bot) notify(ctx context.Context, chatID int64, text string) {
	err := transport.WithRetry(ctx, func() error {
		_, serr := b.transport.SendNotice(ctx, chatID, text, nil)
		return serr
	})
	if err != nil {
		log.Errorf("[Bot] notice to chat %d failed: %v", chatID, err)
	}
}

// findUserByUsername resolves a transport handle, nil when unknown.
func findUserByUsername(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// transportNotice sends a notice with controls, propagating the failure.
func (b *Bot) transportNotice(ctx context.Context, chatID int64, text string, controls transport.Controls) error {
	return transport.WithRetry(ctx, func() error {
		_, serr := b.transport.SendNotice(ctx, chatID, text, controls)
		return serr
	})
}

// failureText maps a failure to the member-facing line, keyed by the stable
// reason code.
func failureText(err error) string {
	switch reason.Code(err) {
	case "quota_exceeded":
		return "You reached the limit of " + strconv.Itoa(models.MaxArtworksPerUser) + " artworks. Delete one before submitting more."
	case "already_reacted":
		return "You already reacted to this artwork."
	case "not_found":
		return "That item no longer exists."
	case "user_blocked":
		return "That account is blocked. Lift the block first."
	case "retention_expired":
		return "Too late: this content is past its restore window."
	case "validation_failed":
		return "That input is not valid here. Try again or /cancel."
	case "classification_unavailable":
		return "Screening is temporarily unavailable. Your submission was queued for manual review."
	}
	return "Something went wrong. Please try again."
}

func describe(up Update) string {
	if up.Callback != nil {
		return "callback " + up.Callback.Action
	}
	if up.PhotoFileID != "" {
		return "photo message"
	}
	return "text message"
}
