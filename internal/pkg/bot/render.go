package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mkravets/ArtPeak/app/models"
	metrics "github.com/mkravets/ArtPeak/internal/pkg/metrics/counter"
	"github.com/mkravets/ArtPeak/internal/pkg/transport"
	"github.com/mkravets/ArtPeak/internal/pkg/viewsync"
)

// Renderer returns the per-viewer render function the view broadcaster uses.
func (b *Bot) Renderer() viewsync.Renderer {
	return func(artwork *models.Artwork, viewerID uint) (string, transport.Controls, error) {
		caption, err := b.renderCaption(artwork)
		if err != nil {
			return "", nil, err
		}
		controls, err := b.artworkControls(artwork, viewerID)
		if err != nil {
			return "", nil, err
		}
		return caption, controls, nil
	}
}

// renderCaption builds the shared caption: text, hashtags, counters. The
// same string goes to every viewer; only the controls differ.
func (b *Bot) renderCaption(artwork *models.Artwork) (string, error) {
	hashtags, err := b.lifecycle.Repos().Artwork.Hashtags(artwork.ID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if artwork.Caption != "" {
		sb.WriteString(artwork.Caption)
		sb.WriteString("\n")
	}
	if len(hashtags) > 0 {
		for i, tag := range hashtags {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString("#")
			sb.WriteString(tag)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "👍 %d  👎 %d", artwork.Likes, artwork.Dislikes)
	return sb.String(), nil
}

// artworkControls computes the control set one viewer sees. Owners get no
// reaction buttons; a viewer who already reacted sees the confirmed control
// instead of the pair.
func (b *Bot) artworkControls(artwork *models.Artwork, viewerID uint) (transport.Controls, error) {
	if viewerID == artwork.OwnerID {
		return transport.Controls{
			{
				{Label: "💬 Comments", Action: EncodeAction(CmdShowReactions, 0)},
				{Label: "🗑 Delete", Action: EncodeAction(CmdDeleteArtwork, artwork.ID)},
			},
		}, nil
	}

	existing, err := b.lifecycle.ReactionFor(viewerID, artwork.ID)
	if err != nil {
		return nil, err
	}

	var reactionRow []transport.Control
	switch {
	case existing == nil:
		reactionRow = []transport.Control{
			{Label: "👍", Action: EncodeAction(CmdLike, artwork.ID)},
			{Label: "👎", Action: EncodeAction(CmdDislike, artwork.ID)},
		}
	case existing.Kind == models.ReactionLike:
		reactionRow = []transport.Control{{Label: "👍 ✓", Action: EncodeAction(CmdLike, artwork.ID)}}
	default:
		reactionRow = []transport.Control{{Label: "👎 ✓", Action: EncodeAction(CmdDislike, artwork.ID)}}
	}

	return transport.Controls{
		reactionRow,
		{
			{Label: "💬 Comment", Action: EncodeAction(CmdComment, artwork.ID)},
			{Label: "⚠ Report", Action: EncodeAction(CmdComplain, artwork.ID)},
		},
	}, nil
}

// sendArtworkView renders an artwork into a chat, registers the message for
// live updates and counts the impression.
func (b *Bot) sendArtworkView(ctx context.Context, chatID int64, artwork *models.Artwork, viewerID uint) error {
	caption, err := b.renderCaption(artwork)
	if err != nil {
		return err
	}
	controls, err := b.artworkControls(artwork, viewerID)
	if err != nil {
		return err
	}

	var ref transport.Ref
	err = transport.WithRetry(ctx, func() error {
		var serr error
		ref, serr = b.transport.SendArtwork(ctx, chatID, artwork.FileID, caption, controls)
		return serr
	})
	if err != nil {
		return err
	}

	if err := b.views.Register(ref, artwork.ID, viewerID); err != nil {
		return err
	}
	if err := metrics.AddArtworkImpression(artwork.ID); err != nil {
		// Counter lag is acceptable; the view itself succeeded.
		log.Warnf("[Bot] impression counter for artwork %d: %v", artwork.ID, err)
	}
	return nil
}
