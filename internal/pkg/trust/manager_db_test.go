package trust

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/internal/pkg/reason"
)

func createLiveArtwork(t *testing.T, db *gorm.DB, ownerID uint, fileID, tag string) uint {
	t.Helper()
	artwork := models.Artwork{OwnerID: ownerID, FileID: fileID}
	require.NoError(t, db.Create(&artwork).Error)
	if tag != "" {
		tagRow, err := models.IncrementTagUsage(db, tag)
		require.NoError(t, err)
		require.NoError(t, db.Create(&models.ArtworkTag{ArtworkID: artwork.ID, TagID: tagRow.ID}).Error)
	}
	return artwork.ID
}

func TestBlockUnblockCascadeSelectivity(t *testing.T) {
	db := resolveTestDB(t)
	m := NewManager(db)
	ctx := context.Background()

	target := models.User{ChatUserID: 5001, Username: "vandal"}
	require.NoError(t, db.Create(&target).Error)
	bystander := models.User{ChatUserID: 5002, Username: "innocent"}
	require.NoError(t, db.Create(&bystander).Error)

	createLiveArtwork(t, db, target.ID, "file-a", "forest")
	createLiveArtwork(t, db, target.ID, "file-b", "")
	bystanderArt := createLiveArtwork(t, db, bystander.ID, "file-c", "")

	// A pre-existing moderation snapshot of the target must not be swept up.
	moderated := models.DeletedArtwork{
		ArtworkID: 9001,
		OwnerID:   target.ID,
		FileID:    "file-old",
		Reason:    "moderator decision",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		DeletedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&moderated).Error)

	require.NoError(t, m.Block(ctx, target.ID, "spam", 1))

	var count int64
	require.NoError(t, db.Model(&models.Artwork{}).Where("owner_id = ?", target.ID).Count(&count).Error)
	assert.Zero(t, count, "a live block means no live artworks")
	require.NoError(t, db.Model(&models.Artwork{}).Where("id = ?", bystanderArt).Count(&count).Error)
	assert.EqualValues(t, 1, count, "other accounts are untouched")
	require.NoError(t, db.Model(&models.DeletedArtwork{}).
		Where("owner_id = ? AND reason = ?", target.ID, models.ReasonUserBlocked).Count(&count).Error)
	assert.EqualValues(t, 2, count)
	require.NoError(t, db.Model(&models.Tag{}).Where("name = ?", "forest").Count(&count).Error)
	assert.Zero(t, count, "hidden content releases its hashtag usage")

	require.NoError(t, m.Unblock(ctx, target.ID))

	require.NoError(t, db.Model(&models.Artwork{}).Where("owner_id = ?", target.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count, "unblock restores exactly the cascade set")
	var tag models.Tag
	require.NoError(t, db.Where("name = ?", "forest").First(&tag).Error)
	assert.Equal(t, 1, tag.UsageCount)

	var untouched models.DeletedArtwork
	require.NoError(t, db.Where("artwork_id = ?", moderated.ArtworkID).First(&untouched).Error)
	assert.Nil(t, untouched.RestoredAt, "the moderation snapshot stays deleted")

	blocked, err := m.IsBlocked(target.ID)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestDecideAppealApprovedUnblocks(t *testing.T) {
	db := resolveTestDB(t)
	m := NewManager(db)
	ctx := context.Background()

	target := models.User{ChatUserID: 6001, Username: "appellant"}
	require.NoError(t, db.Create(&target).Error)
	artworkID := createLiveArtwork(t, db, target.ID, "file-d", "")

	require.NoError(t, m.Block(ctx, target.ID, "spam", 1))
	appeal, err := m.SubmitAppeal(ctx, target.ID, "it was my cat")
	require.NoError(t, err)

	decided, err := m.DecideAppeal(ctx, appeal.ID, true, 2)
	require.NoError(t, err)
	assert.Equal(t, models.AppealStatusApproved, decided.Status)
	require.NotNil(t, decided.ModeratorID)
	assert.EqualValues(t, 2, *decided.ModeratorID)
	assert.NotNil(t, decided.DecidedAt)

	// Approval and unblock land together: no approved appeal next to a
	// live block, and the content is back.
	blocked, err := m.IsBlocked(target.ID)
	require.NoError(t, err)
	assert.False(t, blocked)
	var count int64
	require.NoError(t, db.Model(&models.Artwork{}).Where("id = ?", artworkID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	_, err = m.DecideAppeal(ctx, appeal.ID, true, 2)
	assert.ErrorIs(t, err, reason.ErrNotFound, "a decided appeal is terminal")
}

func TestDecideAppealRejectedKeepsBlock(t *testing.T) {
	db := resolveTestDB(t)
	m := NewManager(db)
	ctx := context.Background()

	target := models.User{ChatUserID: 7001, Username: "rejected"}
	require.NoError(t, db.Create(&target).Error)
	createLiveArtwork(t, db, target.ID, "file-e", "")

	require.NoError(t, m.Block(ctx, target.ID, "spam", 1))
	appeal, err := m.SubmitAppeal(ctx, target.ID, "please")
	require.NoError(t, err)

	decided, err := m.DecideAppeal(ctx, appeal.ID, false, 2)
	require.NoError(t, err)
	assert.Equal(t, models.AppealStatusRejected, decided.Status)

	blocked, err := m.IsBlocked(target.ID)
	require.NoError(t, err)
	assert.True(t, blocked)
	block, err := m.BlockStatus(target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppealStatusRejected, block.AppealStatus)

	var count int64
	require.NoError(t, db.Model(&models.Artwork{}).Where("owner_id = ?", target.ID).Count(&count).Error)
	assert.Zero(t, count, "rejection leaves the content hidden")
}
