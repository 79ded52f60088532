package repository

import (
	"sort"

	"gorm.io/gorm"

	"github.com/mkravets/ArtPeak/app/models"
)

// engagementRepository implements the EngagementRepository interface
type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new engagement repository instance
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

// UnseenCount counts like reactions and comments on the owner's artworks
// that carry no viewed marker yet
func (r *engagementRepository) UnseenCount(ownerID uint) (int, error) {
	var likes int64
	err := r.db.Model(&models.Reaction{}).
		Joins("JOIN artworks ON artworks.id = reactions.artwork_id").
		Where("artworks.owner_id = ? AND reactions.kind = ?", ownerID, models.ReactionLike).
		Where("NOT EXISTS (SELECT 1 FROM viewed_reactions vr WHERE vr.user_id = ? AND vr.kind = ? AND vr.reaction_id = reactions.id)",
			ownerID, models.EventLike).
		Count(&likes).Error
	if err != nil {
		return 0, err
	}

	var comments int64
	err = r.db.Model(&models.Comment{}).
		Joins("JOIN artworks ON artworks.id = comments.artwork_id").
		Where("artworks.owner_id = ?", ownerID).
		Where("NOT EXISTS (SELECT 1 FROM viewed_reactions vr WHERE vr.user_id = ? AND vr.kind = ? AND vr.reaction_id = comments.id)",
			ownerID, models.EventComment).
		Count(&comments).Error
	if err != nil {
		return 0, err
	}

	return int(likes + comments), nil
}

// UnseenEvents merges unseen likes and comments into one queue, newest
// first. limit <= 0 means no limit.
func (r *engagementRepository) UnseenEvents(ownerID uint, limit int) ([]UnseenEvent, error) {
	var events []UnseenEvent
	perKind := limit
	if perKind <= 0 {
		perKind = -1
	}

	var likes []models.Reaction
	err := r.db.Model(&models.Reaction{}).
		Joins("JOIN artworks ON artworks.id = reactions.artwork_id").
		Where("artworks.owner_id = ? AND reactions.kind = ?", ownerID, models.ReactionLike).
		Where("NOT EXISTS (SELECT 1 FROM viewed_reactions vr WHERE vr.user_id = ? AND vr.kind = ? AND vr.reaction_id = reactions.id)",
			ownerID, models.EventLike).
		Order("reactions.created_at DESC").Limit(perKind).
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	for _, like := range likes {
		events = append(events, UnseenEvent{
			Kind:       models.EventLike,
			ReactionID: like.ID,
			ArtworkID:  like.ArtworkID,
			FromUserID: like.UserID,
			CreatedAt:  like.CreatedAt,
		})
	}

	var comments []models.Comment
	err = r.db.Model(&models.Comment{}).
		Joins("JOIN artworks ON artworks.id = comments.artwork_id").
		Where("artworks.owner_id = ?", ownerID).
		Where("NOT EXISTS (SELECT 1 FROM viewed_reactions vr WHERE vr.user_id = ? AND vr.kind = ? AND vr.reaction_id = comments.id)",
			ownerID, models.EventComment).
		Order("comments.created_at DESC").Limit(perKind).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	for _, comment := range comments {
		events = append(events, UnseenEvent{
			Kind:       models.EventComment,
			ReactionID: comment.ID,
			ArtworkID:  comment.ArtworkID,
			FromUserID: comment.UserID,
			Text:       comment.Text,
			CreatedAt:  comment.CreatedAt,
		})
	}

	// Strict reverse-chronological order across both kinds
	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// MarkAllViewed batch-inserts viewed markers for every outstanding unseen
// like and comment. Idempotent against partial prior marking.
func (r *engagementRepository) MarkAllViewed(ownerID uint) error {
	err := r.db.Exec(`
		INSERT IGNORE INTO viewed_reactions (user_id, kind, reaction_id, artwork_id, created_at)
		SELECT ?, 'like', reactions.id, reactions.artwork_id, NOW()
		FROM reactions
		JOIN artworks ON artworks.id = reactions.artwork_id
		WHERE artworks.owner_id = ? AND reactions.kind = 'like'`,
		ownerID, ownerID).Error
	if err != nil {
		return err
	}
	return r.db.Exec(`
		INSERT IGNORE INTO viewed_reactions (user_id, kind, reaction_id, artwork_id, created_at)
		SELECT ?, 'comment', comments.id, comments.artwork_id, NOW()
		FROM comments
		JOIN artworks ON artworks.id = comments.artwork_id
		WHERE artworks.owner_id = ?`,
		ownerID, ownerID).Error
}

// OwnersWithUnseen lists every owner holding at least one unseen like or
// comment, for the periodic reminder sweep
func (r *engagementRepository) OwnersWithUnseen() ([]uint, error) {
	var fromLikes []uint
	err := r.db.Model(&models.Reaction{}).
		Joins("JOIN artworks ON artworks.id = reactions.artwork_id").
		Where("reactions.kind = ?", models.ReactionLike).
		Where("NOT EXISTS (SELECT 1 FROM viewed_reactions vr WHERE vr.user_id = artworks.owner_id AND vr.kind = ? AND vr.reaction_id = reactions.id)",
			models.EventLike).
		Distinct().Pluck("artworks.owner_id", &fromLikes).Error
	if err != nil {
		return nil, err
	}

	var fromComments []uint
	err = r.db.Model(&models.Comment{}).
		Joins("JOIN artworks ON artworks.id = comments.artwork_id").
		Where("NOT EXISTS (SELECT 1 FROM viewed_reactions vr WHERE vr.user_id = artworks.owner_id AND vr.kind = ? AND vr.reaction_id = comments.id)",
			models.EventComment).
		Distinct().Pluck("artworks.owner_id", &fromComments).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(fromLikes)+len(fromComments))
	var owners []uint
	for _, id := range append(fromLikes, fromComments...) {
		if !seen[id] {
			seen[id] = true
			owners = append(owners, id)
		}
	}
	return owners, nil
}
