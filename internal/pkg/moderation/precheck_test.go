package moderation

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noisyImage fills a canvas with enough distinct colors to pass the palette
// gate.
func noisyImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 7) % 256),
				G: uint8((y * 13) % 256),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}
	return img
}

func uniformImage(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestPrecheckImage(t *testing.T) {
	tests := []struct {
		name   string
		img    image.Image
		ok     bool
		reason string
	}{
		{"plausible photo passes", noisyImage(200, 150), true, ""},
		{"at the minimum edge passes", noisyImage(50, 50), true, ""},
		{"too narrow", noisyImage(49, 200), false, "image too small"},
		{"too short", noisyImage(200, 49), false, "image too small"},
		{"too wide", noisyImage(5001, 200), false, "image too large"},
		{"banner aspect ratio", noisyImage(900, 100), false, "extreme aspect ratio"},
		{"tall aspect ratio", noisyImage(100, 900), false, "extreme aspect ratio"},
		{"single color canvas", uniformImage(200, 200, color.RGBA{R: 120, G: 40, B: 200, A: 255}), false, "near-uniform color palette"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PrecheckImage(tt.img)
			assert.Equal(t, tt.ok, result.OK)
			if !tt.ok {
				assert.Equal(t, tt.reason, result.Reason)
			}
		})
	}
}

func TestDecodePrecheck(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, noisyImage(200, 150), imaging.PNG))

	result := DecodePrecheck(buf.Bytes())
	assert.True(t, result.OK)

	garbage := DecodePrecheck([]byte("not an image at all"))
	assert.False(t, garbage.OK)
	assert.Equal(t, "undecodable image", garbage.Reason)
}
