package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		isCommand bool
		kind      CommandKind
		arg       string
	}{
		{"plain text is wizard input", "a lovely sunset", false, CmdUnknown, ""},
		{"empty text is wizard input", "", false, CmdUnknown, ""},
		{"start", "/start", true, CmdStart, ""},
		{"submit", "/submit", true, CmdSubmit, ""},
		{"next", "/next", true, CmdNext, ""},
		{"next with hashtag filter", "/next #Sunset", true, CmdNext, "sunset"},
		{"top with bare filter", "/top landscapes", true, CmdTop, "landscapes"},
		{"mention suffix stripped", "/gallery@artpeak_bot", true, CmdGallery, ""},
		{"case insensitive name", "/Profile", true, CmdProfile, ""},
		{"block with handle", "/block @vandal", true, CmdBlockUser, "vandal"},
		{"unblock without at-sign", "/unblock vandal", true, CmdUnblockUser, "vandal"},
		{"report", "/report @spammer", true, CmdReportUser, "spammer"},
		{"tags with query", "/tags #Land", true, CmdTags, "land"},
		{"profile of another member", "/profile @painter", true, CmdProfile, "painter"},
		{"avatar", "/avatar", true, CmdAvatar, ""},
		{"privacy toggle", "/privacy", true, CmdTogglePrivacy, ""},
		{"anonymity toggle", "/anon", true, CmdToggleAnonymity, ""},
		{"unknown slash command", "/frobnicate", true, CmdUnknown, ""},
		{"leading whitespace", "  /cancel", true, CmdCancel, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, isCommand := DecodeText(tt.input)
			assert.Equal(t, tt.isCommand, isCommand)
			if isCommand {
				assert.Equal(t, tt.kind, cmd.Kind)
				assert.Equal(t, tt.arg, cmd.Arg)
			}
		})
	}
}

func TestDecodeCallback(t *testing.T) {
	tests := []struct {
		name   string
		action string
		kind   CommandKind
		id     uint
	}{
		{"like with target", "like:42", CmdLike, 42},
		{"dislike with target", "dislike:7", CmdDislike, 7},
		{"comment with target", "comment:42", CmdComment, 42},
		{"complain with target", "complain:42", CmdComplain, 42},
		{"own artwork delete", "delete_art:12", CmdDeleteArtwork, 12},
		{"show reactions without target", "show_reactions", CmdShowReactions, 0},
		{"next reaction", "next_reaction", CmdNextReaction, 0},
		{"finish reactions", "finish_reactions", CmdFinishReactions, 0},
		{"review approve", "review_approve:9", CmdReviewApprove, 9},
		{"blocked restore", "blocked_restore:13", CmdBlockedRestore, 13},
		{"appeal reject", "appeal_reject:3", CmdAppealReject, 3},
		{"unknown action", "launch_missiles", CmdUnknown, 0},
		{"malformed id", "like:forty-two", CmdUnknown, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := DecodeCallback(tt.action)
			assert.Equal(t, tt.kind, cmd.Kind)
			assert.Equal(t, tt.id, cmd.ID)
		})
	}
}

func TestEncodeActionRoundTrip(t *testing.T) {
	for kind := range callbackNames {
		action := EncodeAction(kind, 5)
		decoded := DecodeCallback(action)
		assert.Equal(t, kind, decoded.Kind, "action %q", action)
		assert.Equal(t, uint(5), decoded.ID, "action %q", action)
	}
}

func TestEncodeAction_UnknownKind(t *testing.T) {
	assert.Empty(t, EncodeAction(CmdStart, 1))
}
