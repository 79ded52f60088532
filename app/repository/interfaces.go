package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/mkravets/ArtPeak/app/models"
)

// ArtworkRepository defines the interface for artwork-related database operations
type ArtworkRepository interface {
	Create(artwork *models.Artwork) error
	GetByID(id uint) (*models.Artwork, error)
	GetByOwnerID(ownerID uint) ([]models.Artwork, error)
	GetOwnerStats(ownerID uint) (*OwnerStats, error)
	CountByOwnerID(ownerID uint) (int64, error)
	Hashtags(artworkID uint) ([]string, error)
	Top(limit int, hashtagFilter string) ([]models.Artwork, error)
	RankingRows(hashtagFilter string) ([]RankingRow, error)
	NextUnseen(viewerID uint, hashtagFilter string) (*models.Artwork, error)
	Delete(id uint) error
}

// EngagementRepository defines the interface for unseen-reaction bookkeeping
type EngagementRepository interface {
	UnseenCount(ownerID uint) (int, error)
	UnseenEvents(ownerID uint, limit int) ([]UnseenEvent, error)
	MarkAllViewed(ownerID uint) error
	OwnersWithUnseen() ([]uint, error)
}

// OwnerStats aggregates an owner's gallery totals
type OwnerStats struct {
	TotalArtworks int64
	TotalLikes    int64
	TotalDislikes int64
}

// RankingRow is one artwork's standing used for dense ranking
type RankingRow struct {
	OwnerID   uint
	ArtworkID uint
	Likes     int
	CreatedAt time.Time
}

// UnseenEvent is a like or comment the artwork owner has not seen yet
type UnseenEvent struct {
	Kind       models.EventKind
	ReactionID uint
	ArtworkID  uint
	FromUserID uint
	Text       string // comment text, empty for likes
	CreatedAt  time.Time
}

// Repositories holds all repository instances
type Repositories struct {
	Artwork    ArtworkRepository
	Engagement EngagementRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Artwork:    NewArtworkRepository(db),
		Engagement: NewEngagementRepository(db),
	}
}
