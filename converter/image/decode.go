package image

import (
	"bytes"
	"edgeresizer/shared/apperror"
	"errors"
	"fmt"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

var (
	ErrEmptyImage        = errors.New("empty image data")
	ErrInvalidDimensions = errors.New("image has invalid dimensions")
	ErrTooManyPixels     = errors.New("image too large")
)

// Decode turns raw origin bytes into a raster image. The header is inspected first so
// oversized sources are rejected before any pixel buffer is allocated. maxPixels <= 0
// disables that check.
func Decode(data []byte, maxPixels int) (image.Image, error) {
	if len(data) == 0 {
		return nil, apperror.DecodeFailed(ErrEmptyImage)
	}

	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperror.DecodeFailed(fmt.Errorf("read image header: %w", err))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, apperror.DecodeFailed(ErrInvalidDimensions)
	}
	if maxPixels > 0 && cfg.Width*cfg.Height > maxPixels {
		return nil, apperror.DecodeFailed(fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height))
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperror.DecodeFailed(fmt.Errorf("decode %s: %w", name, err))
	}

	return img, nil
}
