package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkravets/ArtPeak/internal/pkg/reason"
)

// Ref addresses one rendered message.
type Ref struct {
	ChatID    int64
	MessageID int64
}

// Control is one actionable element attached to a rendering.
type Control struct {
	Label string
	// Action is the encoded callback payload, decoded back into a Command by
	// the bot package.
	Action string
}

// Controls is the control set for one rendering, row by row.
type Controls [][]Control

// Client is the chat transport collaborator. Delivery retry for transient
// network failures below a single call is the transport's own business; the
// errors surfaced here are already classified.
type Client interface {
	SendArtwork(ctx context.Context, chatID int64, fileID, caption string, controls Controls) (Ref, error)
	EditArtwork(ctx context.Context, ref Ref, caption string, controls Controls) error
	SendNotice(ctx context.Context, chatID int64, text string, controls Controls) (Ref, error)
	EditNotice(ctx context.Context, ref Ref, text string, controls Controls) error
	DeleteMessage(ctx context.Context, ref Ref) error
}

// ErrNotModified means the edit produced an identical rendering. Harmless;
// callers ignore it.
var ErrNotModified = errors.New("message not modified")

// Transient wraps a retryable delivery failure.
func Transient(err error) error {
	return fmt.Errorf("%w: %v", reason.ErrTransportTransient, err)
}

// Permanent wraps a failure that means the render target is gone; callers
// must deregister instead of retrying.
func Permanent(err error) error {
	return fmt.Errorf("%w: %v", reason.ErrTransportPermanent, err)
}

// IsTransient reports whether a call may be retried.
func IsTransient(err error) bool {
	return errors.Is(err, reason.ErrTransportTransient)
}

// IsPermanent reports whether the render target no longer exists.
func IsPermanent(err error) bool {
	return errors.Is(err, reason.ErrTransportPermanent)
}
