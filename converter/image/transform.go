package image

import (
	"github.com/disintegration/imaging"
	"image"
	"math"
)

type Transform func(image.Image) image.Image

// WithWidth scales to width with nearest-neighbour sampling, keeping the aspect ratio.
// Upscaling is allowed; callers bound width.
func WithWidth(width int) Transform {
	return func(img image.Image) image.Image {
		imgDx := img.Bounds().Dx()
		if width == imgDx || width <= 0 || imgDx == 0 {
			return img
		}

		height := TargetHeight(imgDx, img.Bounds().Dy(), width)

		return imaging.Resize(img, width, height, imaging.NearestNeighbor)
	}
}

// TargetHeight is round(height * targetWidth / width), never below one pixel.
func TargetHeight(width, height, targetWidth int) int {
	h := int(math.Round(float64(height) * float64(targetWidth) / float64(width)))
	if h < 1 {
		return 1
	}
	return h
}
