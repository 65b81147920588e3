package image

import (
	"github.com/stretchr/testify/assert"
	"image"
	"image/color"
	"testing"
)

func TestTargetHeight(t *testing.T) {
	tests := []struct {
		w, h, target, want int
	}{
		{200, 100, 100, 50},
		{100, 200, 50, 100},
		{3, 2, 2, 1},
		{3, 2, 4, 3},
		{1000, 1, 10, 1},
		{100, 100, 300, 300},
		{640, 427, 320, 214},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, TargetHeight(tc.w, tc.h, tc.target), "%dx%d -> %d", tc.w, tc.h, tc.target)
	}
}

func TestWithWidth(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		width        int
		wantW, wantH int
	}{
		{"downscale", 240, 120, 80, 80, 40},
		{"upscale", 10, 20, 30, 30, 60},
		{"same width", 64, 48, 64, 64, 48},
		{"odd ratio", 333, 111, 100, 100, 33},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := WithWidth(tc.width)(testImage(tc.srcW, tc.srcH))
			assert.Equal(t, tc.wantW, out.Bounds().Dx())
			assert.Equal(t, tc.wantH, out.Bounds().Dy())

			srcRatio := float64(tc.srcW) / float64(tc.srcH)
			gotH := float64(out.Bounds().Dx()) / srcRatio
			assert.InDelta(t, gotH, float64(out.Bounds().Dy()), 1)
		})
	}
}

func TestWithWidthNearestNeighbour(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	src.Set(1, 0, color.NRGBA{B: 255, A: 255})

	out := WithWidth(4)(src)

	// nearest neighbour never blends the two source pixels
	for x := 0; x < 4; x++ {
		r, _, b, _ := out.At(x, 0).RGBA()
		assert.True(t, (r == 0xffff && b == 0) || (r == 0 && b == 0xffff), "pixel %d blended", x)
	}
}
