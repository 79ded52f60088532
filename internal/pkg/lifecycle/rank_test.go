package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkravets/ArtPeak/app/repository"
)

func rows(likes ...int) []repository.RankingRow {
	out := make([]repository.RankingRow, 0, len(likes))
	base := time.Now()
	for i, l := range likes {
		out = append(out, repository.RankingRow{
			OwnerID:   uint(i + 1),
			ArtworkID: uint(i + 1),
			Likes:     l,
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}
	return out
}

func ranksOf(ranked []RankedArtwork) []int {
	out := make([]int, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.Rank)
	}
	return out
}

func TestDenseRank(t *testing.T) {
	tests := []struct {
		name     string
		likes    []int
		expected []int
	}{
		{"ties share a rank and the next value advances by one", []int{10, 10, 7}, []int{1, 1, 2}},
		{"strictly decreasing", []int{5, 4, 3}, []int{1, 2, 3}},
		{"all tied", []int{3, 3, 3}, []int{1, 1, 1}},
		{"longer tie run", []int{9, 9, 9, 2, 2, 1}, []int{1, 1, 1, 2, 2, 3}},
		{"single row", []int{1}, []int{1}},
		{"empty", nil, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := DenseRank(rows(tt.likes...))
			assert.Equal(t, tt.expected, ranksOf(ranked))
		})
	}
}

func TestDenseRank_KeepsRowOrder(t *testing.T) {
	input := rows(10, 10, 7)
	ranked := DenseRank(input)
	for i := range input {
		assert.Equal(t, input[i].ArtworkID, ranked[i].ArtworkID)
		assert.Equal(t, input[i].Likes, ranked[i].Likes)
	}
}
