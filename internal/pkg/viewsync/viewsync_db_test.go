package viewsync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/internal/pkg/transport"
)

// editRecorder is a transport client that records artwork edits and answers
// with a scripted error.
type editRecorder struct {
	edits   []transport.Ref
	editErr error
}

func (r *editRecorder) SendArtwork(ctx context.Context, chatID int64, fileID, caption string, controls transport.Controls) (transport.Ref, error) {
	return transport.Ref{ChatID: chatID, MessageID: 1}, nil
}

func (r *editRecorder) EditArtwork(ctx context.Context, ref transport.Ref, caption string, controls transport.Controls) error {
	r.edits = append(r.edits, ref)
	return r.editErr
}

func (r *editRecorder) SendNotice(ctx context.Context, chatID int64, text string, controls transport.Controls) (transport.Ref, error) {
	return transport.Ref{ChatID: chatID, MessageID: 2}, nil
}

func (r *editRecorder) EditNotice(ctx context.Context, ref transport.Ref, text string, controls transport.Controls) error {
	return nil
}

func (r *editRecorder) DeleteMessage(ctx context.Context, ref transport.Ref) error {
	return nil
}

func TestBroadcastRefreshesRegistrations(t *testing.T) {
	db := resolveTestDB(t)
	rec := &editRecorder{}
	b := NewBroadcaster(db, rec)
	ctx := context.Background()

	owner := models.User{ChatUserID: 8001, Username: "painter"}
	require.NoError(t, db.Create(&owner).Error)
	viewer := models.User{ChatUserID: 8002, Username: "fan"}
	require.NoError(t, db.Create(&viewer).Error)
	artwork := models.Artwork{OwnerID: owner.ID, FileID: "file-v"}
	require.NoError(t, db.Create(&artwork).Error)

	ref := transport.Ref{ChatID: 8002, MessageID: 41}
	require.NoError(t, b.Register(ref, artwork.ID, viewer.ID))

	// Age the registration past the staleness window.
	old := time.Now().Add(-25 * time.Hour)
	require.NoError(t, db.Model(&models.ActiveMessage{}).
		Where("message_id = ? AND chat_id = ?", ref.MessageID, ref.ChatID).
		Update("last_updated", old).Error)

	render := func(a *models.Artwork, viewerID uint) (string, transport.Controls, error) {
		return "caption", nil, nil
	}
	require.NoError(t, b.Broadcast(ctx, artwork.ID, render))
	require.Len(t, rec.edits, 1)
	assert.Equal(t, ref, rec.edits[0])

	// A successfully refreshed rendering must survive the staleness trim.
	var row models.ActiveMessage
	require.NoError(t, db.Where("message_id = ? AND chat_id = ?", ref.MessageID, ref.ChatID).First(&row).Error)
	assert.True(t, row.LastUpdated.After(old.Add(time.Hour)), "broadcast should reset the staleness clock")

	trimmed, err := b.TrimStale()
	require.NoError(t, err)
	assert.Zero(t, trimmed)
}

func TestBroadcastUnmodifiedStillRefreshes(t *testing.T) {
	db := resolveTestDB(t)
	rec := &editRecorder{editErr: transport.ErrNotModified}
	b := NewBroadcaster(db, rec)
	ctx := context.Background()

	owner := models.User{ChatUserID: 8101, Username: "painter"}
	require.NoError(t, db.Create(&owner).Error)
	artwork := models.Artwork{OwnerID: owner.ID, FileID: "file-w"}
	require.NoError(t, db.Create(&artwork).Error)

	ref := transport.Ref{ChatID: 8101, MessageID: 42}
	require.NoError(t, b.Register(ref, artwork.ID, owner.ID))
	old := time.Now().Add(-25 * time.Hour)
	require.NoError(t, db.Model(&models.ActiveMessage{}).
		Where("message_id = ? AND chat_id = ?", ref.MessageID, ref.ChatID).
		Update("last_updated", old).Error)

	render := func(a *models.Artwork, viewerID uint) (string, transport.Controls, error) {
		return "same caption", nil, nil
	}
	require.NoError(t, b.Broadcast(ctx, artwork.ID, render))

	// The view is still being watched even if nothing changed.
	trimmed, err := b.TrimStale()
	require.NoError(t, err)
	assert.Zero(t, trimmed)
}

func TestBroadcastDeregistersGoneTargets(t *testing.T) {
	db := resolveTestDB(t)
	rec := &editRecorder{editErr: transport.Permanent(assert.AnError)}
	b := NewBroadcaster(db, rec)
	ctx := context.Background()

	owner := models.User{ChatUserID: 8201, Username: "painter"}
	require.NoError(t, db.Create(&owner).Error)
	artwork := models.Artwork{OwnerID: owner.ID, FileID: "file-x"}
	require.NoError(t, db.Create(&artwork).Error)

	ref := transport.Ref{ChatID: 8201, MessageID: 43}
	require.NoError(t, b.Register(ref, artwork.ID, owner.ID))

	render := func(a *models.Artwork, viewerID uint) (string, transport.Controls, error) {
		return "caption", nil, nil
	}
	require.NoError(t, b.Broadcast(ctx, artwork.ID, render))

	views, err := b.ForArtwork(artwork.ID)
	require.NoError(t, err)
	assert.Empty(t, views, "a permanently gone render target is dropped")
}
