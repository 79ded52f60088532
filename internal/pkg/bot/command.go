package bot

import (
	"strconv"
	"strings"
)

// CommandKind identifies one member or operator action. Inbound transport
// events are decoded into a Command exactly once at the dispatch boundary;
// handlers never parse raw text or callback payloads themselves.
type CommandKind int

const (
	CmdUnknown CommandKind = iota

	// member slash commands
	CmdStart
	CmdSubmit
	CmdNext
	CmdTop
	CmdGallery
	CmdProfile
	CmdNickname
	CmdBio
	CmdAvatar
	CmdTogglePrivacy
	CmdToggleAnonymity
	CmdReactions
	CmdTags
	CmdReportUser
	CmdAppeal
	CmdCancel

	// member controls
	CmdLike
	CmdDislike
	CmdComment
	CmdComplain
	CmdDeleteArtwork
	CmdShowReactions
	CmdNextReaction
	CmdFinishReactions

	// operator surface
	CmdReview
	CmdReviewApprove
	CmdReviewReject
	CmdBlocked
	CmdBlockedPrev
	CmdBlockedNext
	CmdBlockedRestore
	CmdBlockedSearch
	CmdAppeals
	CmdAppealApprove
	CmdAppealReject
	CmdBlockUser
	CmdUnblockUser
)

// Command is a fully decoded inbound action.
type Command struct {
	Kind CommandKind
	// ID is the target entity when the encoding carries one: artwork,
	// pending submission or appeal.
	ID uint
	// Arg carries the free-form remainder: a hashtag filter or a username.
	Arg string
}

var slashCommands = map[string]CommandKind{
	"start":     CmdStart,
	"submit":    CmdSubmit,
	"next":      CmdNext,
	"top":       CmdTop,
	"gallery":   CmdGallery,
	"profile":   CmdProfile,
	"nickname":  CmdNickname,
	"bio":       CmdBio,
	"avatar":    CmdAvatar,
	"privacy":   CmdTogglePrivacy,
	"anon":      CmdToggleAnonymity,
	"reactions": CmdReactions,
	"tags":      CmdTags,
	"report":    CmdReportUser,
	"appeal":    CmdAppeal,
	"cancel":    CmdCancel,
	"review":    CmdReview,
	"blocked":   CmdBlocked,
	"appeals":   CmdAppeals,
	"block":     CmdBlockUser,
	"unblock":   CmdUnblockUser,
}

var callbackNames = map[CommandKind]string{
	CmdLike:            "like",
	CmdDislike:         "dislike",
	CmdComment:         "comment",
	CmdComplain:        "complain",
	CmdDeleteArtwork:   "delete_art",
	CmdShowReactions:   "show_reactions",
	CmdNextReaction:    "next_reaction",
	CmdFinishReactions: "finish_reactions",
	CmdReviewApprove:   "review_approve",
	CmdReviewReject:    "review_reject",
	CmdBlockedPrev:     "blocked_prev",
	CmdBlockedNext:     "blocked_next",
	CmdBlockedRestore:  "blocked_restore",
	CmdBlockedSearch:   "blocked_search",
	CmdAppealApprove:   "appeal_approve",
	CmdAppealReject:    "appeal_reject",
}

var callbackCommands = func() map[string]CommandKind {
	m := make(map[string]CommandKind, len(callbackNames))
	for kind, name := range callbackNames {
		m[name] = kind
	}
	return m
}()

// DecodeText decodes a slash command. ok is false for plain text, which is
// wizard input and routed through the session state instead.
func DecodeText(text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}
	name, arg, _ := strings.Cut(text[1:], " ")
	// strip the bot-mention suffix some clients append
	name, _, _ = strings.Cut(name, "@")
	kind, known := slashCommands[strings.ToLower(name)]
	if !known {
		return Command{Kind: CmdUnknown}, true
	}
	return Command{Kind: kind, Arg: normalizeArg(kind, arg)}, true
}

// DecodeCallback decodes a control action payload of the form "name" or
// "name:id".
func DecodeCallback(action string) Command {
	name, rawID, hasID := strings.Cut(action, ":")
	kind, known := callbackCommands[name]
	if !known {
		return Command{Kind: CmdUnknown}
	}
	cmd := Command{Kind: kind}
	if hasID {
		id, err := strconv.ParseUint(rawID, 10, 32)
		if err != nil {
			return Command{Kind: CmdUnknown}
		}
		cmd.ID = uint(id)
	}
	return cmd
}

// EncodeAction builds the callback payload a Control carries for a target.
func EncodeAction(kind CommandKind, id uint) string {
	name, known := callbackNames[kind]
	if !known {
		return ""
	}
	if id == 0 {
		return name
	}
	return name + ":" + strconv.FormatUint(uint64(id), 10)
}

func normalizeArg(kind CommandKind, arg string) string {
	arg = strings.TrimSpace(arg)
	switch kind {
	case CmdNext, CmdTop, CmdTags:
		// hashtag filter, stored without the leading '#'
		return strings.ToLower(strings.TrimPrefix(arg, "#"))
	case CmdBlockUser, CmdUnblockUser, CmdReportUser, CmdProfile:
		return strings.TrimPrefix(arg, "@")
	}
	return arg
}
