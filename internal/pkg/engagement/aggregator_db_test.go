package engagement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/app/repository"
	"github.com/mkravets/ArtPeak/internal/pkg/transport"
)

// noticeRecorder is a transport client that records the notice lifecycle of
// a ticket.
type noticeRecorder struct {
	sends    int
	lastText string
	edits    int
	editText string
	deletes  []transport.Ref
}

func (r *noticeRecorder) SendArtwork(ctx context.Context, chatID int64, fileID, caption string, controls transport.Controls) (transport.Ref, error) {
	return transport.Ref{ChatID: chatID, MessageID: 1}, nil
}

func (r *noticeRecorder) EditArtwork(ctx context.Context, ref transport.Ref, caption string, controls transport.Controls) error {
	return nil
}

func (r *noticeRecorder) SendNotice(ctx context.Context, chatID int64, text string, controls transport.Controls) (transport.Ref, error) {
	r.sends++
	r.lastText = text
	return transport.Ref{ChatID: chatID, MessageID: int64(900 + r.sends)}, nil
}

func (r *noticeRecorder) EditNotice(ctx context.Context, ref transport.Ref, text string, controls transport.Controls) error {
	r.edits++
	r.editText = text
	return nil
}

func (r *noticeRecorder) DeleteMessage(ctx context.Context, ref transport.Ref) error {
	r.deletes = append(r.deletes, ref)
	return nil
}

func TestRefreshTicketTransitions(t *testing.T) {
	db := resolveTestDB(t)
	rec := &noticeRecorder{}
	agg := NewAggregator(db, rec)
	ctx := context.Background()

	owner := models.User{ChatUserID: 9001, Username: "painter"}
	require.NoError(t, db.Create(&owner).Error)
	fan := models.User{ChatUserID: 9002, Username: "fan"}
	require.NoError(t, db.Create(&fan).Error)
	artwork := models.Artwork{OwnerID: owner.ID, FileID: "file-t"}
	require.NoError(t, db.Create(&artwork).Error)

	// First unseen like creates the ticket.
	require.NoError(t, db.Create(&models.Reaction{UserID: fan.ID, ArtworkID: artwork.ID, Kind: models.ReactionLike}).Error)
	require.NoError(t, agg.Refresh(ctx, owner.ID))
	assert.Equal(t, 1, rec.sends)
	assert.Equal(t, "Your art got 1 new reaction!", rec.lastText)

	var ticket models.NotificationMessage
	require.NoError(t, db.Where("user_id = ?", owner.ID).First(&ticket).Error)
	assert.Equal(t, 1, ticket.LastCount)

	// Same count again: nothing to do.
	require.NoError(t, agg.Refresh(ctx, owner.ID))
	assert.Equal(t, 1, rec.sends)
	assert.Zero(t, rec.edits)

	// A comment bumps the count: the existing ticket is edited in place,
	// never duplicated.
	require.NoError(t, db.Create(&models.Comment{UserID: fan.ID, ArtworkID: artwork.ID, Text: "wow"}).Error)
	require.NoError(t, agg.Refresh(ctx, owner.ID))
	assert.Equal(t, 1, rec.sends)
	assert.Equal(t, 1, rec.edits)
	assert.Equal(t, "Your art got 2 new reactions!", rec.editText)

	var count int64
	require.NoError(t, db.Model(&models.NotificationMessage{}).Where("user_id = ?", owner.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "one ticket per owner, always")

	// Everything seen: the ticket is retracted and its row dropped.
	require.NoError(t, repository.NewEngagementRepository(db).MarkAllViewed(owner.ID))
	require.NoError(t, agg.Refresh(ctx, owner.ID))
	require.Len(t, rec.deletes, 1)
	assert.Equal(t, ticket.MessageID, rec.deletes[0].MessageID)
	require.NoError(t, db.Model(&models.NotificationMessage{}).Where("user_id = ?", owner.ID).Count(&count).Error)
	assert.Zero(t, count)
}
