package moderation

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

// Precheck limits. Images outside these bounds are degenerate or placeholder
// uploads and go straight to human review without spending classifier calls.
const (
	MinDimension      = 50
	MaxDimension      = 5000
	MaxAspectRatio    = 8.0
	MinDistinctColors = 10

	// Down-sample size for palette sampling; large enough to keep real
	// photos above MinDistinctColors, small enough to be cheap.
	sampleEdge = 100
)

// PrecheckResult names which gate an image failed, empty when it passed.
type PrecheckResult struct {
	OK     bool
	Reason string
}

// PrecheckImage runs the cheap sanity gates before any classifier call:
// plausible dimensions, aspect ratio, and a minimum palette size.
func PrecheckImage(img image.Image) PrecheckResult {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width < MinDimension || height < MinDimension {
		return PrecheckResult{Reason: "image too small"}
	}
	if width > MaxDimension || height > MaxDimension {
		return PrecheckResult{Reason: "image too large"}
	}

	longer, shorter := float64(width), float64(height)
	if shorter > longer {
		longer, shorter = shorter, longer
	}
	if longer/shorter > MaxAspectRatio {
		return PrecheckResult{Reason: "extreme aspect ratio"}
	}

	if distinctColors(img, MinDistinctColors) < MinDistinctColors {
		return PrecheckResult{Reason: "near-uniform color palette"}
	}

	return PrecheckResult{OK: true}
}

// DecodePrecheck decodes raw bytes and runs PrecheckImage. A decode failure
// counts as a failed precheck, not an internal error.
func DecodePrecheck(data []byte) PrecheckResult {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return PrecheckResult{Reason: "undecodable image"}
	}
	return PrecheckImage(img)
}

// distinctColors samples a down-scaled copy and counts distinct pixel values,
// stopping early once enough is the answer.
func distinctColors(img image.Image, enough int) int {
	small := imaging.Resize(img, sampleEdge, 0, imaging.NearestNeighbor)
	bounds := small.Bounds()

	seen := make(map[[4]uint32]struct{}, enough)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := small.At(x, y).RGBA()
			seen[[4]uint32{r, g, b, a}] = struct{}{}
			if len(seen) >= enough {
				return len(seen)
			}
		}
	}
	return len(seen)
}
