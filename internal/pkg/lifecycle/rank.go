package lifecycle

import (
	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/app/repository"
)

// RankMetric selects what a leaderboard orders by. Likes is the only metric
// today; the enum keeps the operator surface stable if more arrive.
type RankMetric string

const RankByLikes RankMetric = "likes"

// RankedArtwork pairs a ranking row with its dense rank.
type RankedArtwork struct {
	repository.RankingRow
	Rank int
}

// DenseRank assigns ranks to rows already ordered by likes descending then
// recency descending. Tied like-counts share a rank; the next distinct value
// advances the rank by exactly one.
func DenseRank(rows []repository.RankingRow) []RankedArtwork {
	ranked := make([]RankedArtwork, 0, len(rows))
	rank := 0
	lastLikes := -1
	for _, row := range rows {
		if row.Likes != lastLikes {
			rank++
			lastLikes = row.Likes
		}
		ranked = append(ranked, RankedArtwork{RankingRow: row, Rank: rank})
	}
	return ranked
}

// Rank produces the dense leaderboard, optionally filtered to one hashtag.
func (m *Manager) Rank(metric RankMetric, hashtagFilter string) ([]RankedArtwork, error) {
	rows, err := m.repos.Artwork.RankingRows(hashtagFilter)
	if err != nil {
		return nil, err
	}
	return DenseRank(rows), nil
}

// OwnerRank reports the owner's best dense rank, taken from their most-liked
// artwork. ok is false when the owner has no artwork with likes.
func (m *Manager) OwnerRank(ownerID uint, hashtagFilter string) (rank int, ok bool, err error) {
	ranked, err := m.Rank(RankByLikes, hashtagFilter)
	if err != nil {
		return 0, false, err
	}
	for _, entry := range ranked {
		if entry.OwnerID == ownerID && entry.Likes > 0 {
			return entry.Rank, true, nil
		}
	}
	return 0, false, nil
}

// TopArtworks lists the leaderboard head for rendering.
func (m *Manager) TopArtworks(limit int, hashtagFilter string) ([]models.Artwork, error) {
	return m.repos.Artwork.Top(limit, hashtagFilter)
}
