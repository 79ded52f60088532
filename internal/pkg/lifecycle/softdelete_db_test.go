package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/internal/pkg/reason"
)

func TestSoftDeleteRestoreRoundTrip(t *testing.T) {
	db := resolveTestDB(t)
	m := NewManager(db, nil)
	ctx := context.Background()

	owner := models.User{ChatUserID: 1001, Username: "painter"}
	require.NoError(t, db.Create(&owner).Error)
	reactor := models.User{ChatUserID: 1002, Username: "fan"}
	require.NoError(t, db.Create(&reactor).Error)

	artwork, err := m.createArtwork(owner.ID, "file-1", "dawn #sunrise #ocean", []string{"sunrise", "ocean"}, 0)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Reaction{UserID: reactor.ID, ArtworkID: artwork.ID, Kind: models.ReactionLike}).Error)
	require.NoError(t, db.Create(&models.Comment{UserID: reactor.ID, ArtworkID: artwork.ID, Text: "love the colors"}).Error)
	require.NoError(t, artwork.IncrementCounter(db, models.ReactionLike))

	snapshot, err := m.SoftDelete(ctx, artwork.ID, "moderator decision")
	require.NoError(t, err)
	assert.Equal(t, artwork.ID, snapshot.ArtworkID)
	assert.Equal(t, 1, snapshot.Likes)
	assert.Equal(t, "sunrise,ocean", snapshot.Hashtags)

	var count int64
	require.NoError(t, db.Model(&models.Artwork{}).Count(&count).Error)
	assert.Zero(t, count, "artwork should be gone")
	require.NoError(t, db.Model(&models.Reaction{}).Where("artwork_id = ?", artwork.ID).Count(&count).Error)
	assert.Zero(t, count, "reactions should cascade away")
	require.NoError(t, db.Model(&models.Comment{}).Where("artwork_id = ?", artwork.ID).Count(&count).Error)
	assert.Zero(t, count, "comments should cascade away")
	require.NoError(t, db.Model(&models.Tag{}).Count(&count).Error)
	assert.Zero(t, count, "tags at zero usage should be dropped")

	restored, err := m.Restore(ctx, artwork.ID)
	require.NoError(t, err)
	assert.Equal(t, artwork.ID, restored.ID, "restore keeps the original id")
	assert.Equal(t, 1, restored.Likes, "restore keeps the counters")

	var tags []models.Tag
	require.NoError(t, db.Order("name").Find(&tags).Error)
	require.Len(t, tags, 2)
	assert.Equal(t, "ocean", tags[0].Name)
	assert.Equal(t, 1, tags[0].UsageCount)
	assert.Equal(t, "sunrise", tags[1].Name)
	assert.Equal(t, 1, tags[1].UsageCount)

	var stamped models.DeletedArtwork
	require.NoError(t, db.Where("artwork_id = ?", artwork.ID).First(&stamped).Error)
	assert.NotNil(t, stamped.RestoredAt)

	_, err = m.Restore(ctx, artwork.ID)
	assert.ErrorIs(t, err, reason.ErrNotFound, "a restored snapshot cannot be restored twice")
}

func TestRestoreRetentionExpired(t *testing.T) {
	db := resolveTestDB(t)
	m := NewManager(db, nil)
	ctx := context.Background()

	owner := models.User{ChatUserID: 2001, Username: "sculptor"}
	require.NoError(t, db.Create(&owner).Error)
	snapshot := models.DeletedArtwork{
		ArtworkID: 77,
		OwnerID:   owner.ID,
		FileID:    "file-77",
		Reason:    "moderator decision",
		CreatedAt: time.Now().Add(-48 * time.Hour),
		DeletedAt: time.Now().Add(-25 * time.Hour),
	}
	require.NoError(t, db.Create(&snapshot).Error)

	_, err := m.Restore(ctx, 77)
	assert.ErrorIs(t, err, reason.ErrRetentionExpired)

	purged, err := m.PurgeExpired()
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)
}

func TestRestoreRefusedWhileOwnerBlocked(t *testing.T) {
	db := resolveTestDB(t)
	m := NewManager(db, nil)
	ctx := context.Background()

	owner := models.User{ChatUserID: 3001, Username: "vandal"}
	require.NoError(t, db.Create(&owner).Error)
	require.NoError(t, db.Create(&models.UserBlock{UserID: owner.ID, Reason: "spam", ModeratorID: 1}).Error)
	snapshot := models.DeletedArtwork{
		ArtworkID: 88,
		OwnerID:   owner.ID,
		FileID:    "file-88",
		Reason:    models.ReasonUserBlocked,
		CreatedAt: time.Now().Add(-time.Hour),
		DeletedAt: time.Now(),
	}
	require.NoError(t, db.Create(&snapshot).Error)

	_, err := m.Restore(ctx, 88)
	assert.ErrorIs(t, err, reason.ErrUserBlocked)

	var count int64
	require.NoError(t, db.Model(&models.Artwork{}).Count(&count).Error)
	assert.Zero(t, count, "nothing comes back while the block lives")

	require.NoError(t, db.Where("user_id = ?", owner.ID).Delete(&models.UserBlock{}).Error)
	restored, err := m.Restore(ctx, 88)
	require.NoError(t, err)
	assert.Equal(t, uint(88), restored.ID)
}

func TestResolveHeldRefusedWhileOwnerBlocked(t *testing.T) {
	db := resolveTestDB(t)
	m := NewManager(db, nil)
	ctx := context.Background()

	owner := models.User{ChatUserID: 4001, Username: "held"}
	require.NoError(t, db.Create(&owner).Error)
	pending := models.PendingArtwork{OwnerID: owner.ID, FileID: "file-p", Caption: "waiting"}
	require.NoError(t, db.Create(&pending).Error)
	require.NoError(t, db.Create(&models.UserBlock{UserID: owner.ID, Reason: "spam", ModeratorID: 1}).Error)

	_, _, err := m.ResolveHeld(ctx, pending.ID, true)
	assert.ErrorIs(t, err, reason.ErrUserBlocked)

	var count int64
	require.NoError(t, db.Model(&models.PendingArtwork{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "the submission stays held")
	require.NoError(t, db.Model(&models.Artwork{}).Count(&count).Error)
	assert.Zero(t, count, "a blocked owner never gains a live artwork")

	require.NoError(t, db.Where("user_id = ?", owner.ID).Delete(&models.UserBlock{}).Error)
	artwork, _, err := m.ResolveHeld(ctx, pending.ID, true)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, artwork.OwnerID)
	require.NoError(t, db.Model(&models.PendingArtwork{}).Count(&count).Error)
	assert.Zero(t, count)
}
