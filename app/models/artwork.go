package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxArtworksPerUser is the per-owner cap enforced on submission and on
// human-review approval.
const MaxArtworksPerUser = 10

type Artwork struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	OwnerID  uint   `gorm:"index;not null" json:"owner_id"`
	Owner    User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	FileID   string `gorm:"type:varchar(255);not null" json:"file_id"`
	Caption  string `gorm:"type:text" json:"caption"`
	Likes    int    `gorm:"default:0" json:"likes"`
	Dislikes int    `gorm:"default:0" json:"dislikes"`
	// Impressions counts browse renderings. Buffered in Redis and flushed in
	// batches, so the column may lag by a flush interval.
	Impressions int `gorm:"default:0" json:"impressions"`
	// relations
	Tags      []Tag      `gorm:"many2many:artwork_tags;" json:"tags,omitempty"`
	Comments  []Comment  `gorm:"foreignKey:ArtworkID" json:"comments,omitempty"`
	Reactions []Reaction `gorm:"foreignKey:ArtworkID" json:"reactions,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IncrementCounter applies an atomic relative increment to the like or
// dislike column. Never read-modify-write: concurrent reactors must not lose
// updates.
func (a *Artwork) IncrementCounter(db *gorm.DB, kind ReactionKind) error {
	column := "likes"
	if kind == ReactionDislike {
		column = "dislikes"
	}
	return db.Model(&Artwork{}).Where("id = ?", a.ID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

func FindArtworkByID(db *gorm.DB, id uint) (*Artwork, error) {
	var artwork Artwork
	result := db.First(&artwork, id)
	return &artwork, result.Error
}

// CountArtworksByOwner returns the number of live artworks an account owns.
func CountArtworksByOwner(db *gorm.DB, ownerID uint) (int64, error) {
	var count int64
	err := db.Model(&Artwork{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}
