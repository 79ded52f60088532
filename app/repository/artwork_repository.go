package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mkravets/ArtPeak/app/models"
)

// artworkRepository implements the ArtworkRepository interface
type artworkRepository struct {
	db *gorm.DB
}

// NewArtworkRepository creates a new artwork repository instance
func NewArtworkRepository(db *gorm.DB) ArtworkRepository {
	return &artworkRepository{db: db}
}

func (r *artworkRepository) Create(artwork *models.Artwork) error {
	return r.db.Create(artwork).Error
}

func (r *artworkRepository) GetByID(id uint) (*models.Artwork, error) {
	var artwork models.Artwork
	err := r.db.Preload("Owner").Preload("Tags").First(&artwork, id).Error
	if err != nil {
		return nil, err
	}
	return &artwork, nil
}

func (r *artworkRepository) GetByOwnerID(ownerID uint) ([]models.Artwork, error) {
	var artworks []models.Artwork
	err := r.db.Where("owner_id = ?", ownerID).
		Order("created_at DESC").Find(&artworks).Error
	return artworks, err
}

// GetOwnerStats aggregates an owner's gallery totals in one query
func (r *artworkRepository) GetOwnerStats(ownerID uint) (*OwnerStats, error) {
	var stats OwnerStats
	err := r.db.Model(&models.Artwork{}).
		Select("COUNT(*) as total_artworks, COALESCE(SUM(likes),0) as total_likes, COALESCE(SUM(dislikes),0) as total_dislikes").
		Where("owner_id = ?", ownerID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *artworkRepository) CountByOwnerID(ownerID uint) (int64, error) {
	return models.CountArtworksByOwner(r.db, ownerID)
}

// Hashtags returns the artwork's tag names, lowercased
func (r *artworkRepository) Hashtags(artworkID uint) ([]string, error) {
	var names []string
	err := r.db.Model(&models.Tag{}).
		Joins("JOIN artwork_tags ON artwork_tags.tag_id = tags.id").
		Where("artwork_tags.artwork_id = ?", artworkID).
		Pluck("tags.name", &names).Error
	return names, err
}

// Top lists artworks by like count, most recent first within ties,
// optionally restricted to one hashtag
func (r *artworkRepository) Top(limit int, hashtagFilter string) ([]models.Artwork, error) {
	var artworks []models.Artwork
	query := r.db.Model(&models.Artwork{})
	if hashtagFilter != "" {
		query = query.
			Joins("JOIN artwork_tags ON artwork_tags.artwork_id = artworks.id").
			Joins("JOIN tags ON tags.id = artwork_tags.tag_id").
			Where("tags.name = ?", hashtagFilter)
	}
	err := query.Order("likes DESC, created_at DESC").Limit(limit).Find(&artworks).Error
	return artworks, err
}

// RankingRows returns every artwork's standing ordered for dense ranking
func (r *artworkRepository) RankingRows(hashtagFilter string) ([]RankingRow, error) {
	var rows []RankingRow
	query := r.db.Model(&models.Artwork{}).
		Select("artworks.owner_id, artworks.id as artwork_id, artworks.likes, artworks.created_at")
	if hashtagFilter != "" {
		query = query.
			Joins("JOIN artwork_tags ON artwork_tags.artwork_id = artworks.id").
			Joins("JOIN tags ON tags.id = artwork_tags.tag_id").
			Where("tags.name = ?", hashtagFilter)
	}
	err := query.Order("artworks.likes DESC, artworks.created_at DESC").Scan(&rows).Error
	return rows, err
}

// NextUnseen picks the newest artwork the viewer does not own and has not
// reacted to yet
func (r *artworkRepository) NextUnseen(viewerID uint, hashtagFilter string) (*models.Artwork, error) {
	var artwork models.Artwork
	query := r.db.Model(&models.Artwork{}).
		Where("artworks.owner_id <> ?", viewerID).
		Where("NOT EXISTS (SELECT 1 FROM reactions WHERE reactions.artwork_id = artworks.id AND reactions.user_id = ?)", viewerID)
	if hashtagFilter != "" {
		query = query.
			Joins("JOIN artwork_tags ON artwork_tags.artwork_id = artworks.id").
			Joins("JOIN tags ON tags.id = artwork_tags.tag_id").
			Where("tags.name = ?", hashtagFilter)
	}
	err := query.Order("artworks.created_at DESC").First(&artwork).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &artwork, nil
}

func (r *artworkRepository) Delete(id uint) error {
	return r.db.Delete(&models.Artwork{}, id).Error
}
