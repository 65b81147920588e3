package image

import (
	"context"
	"edgeresizer/shared/apperror"
	"image"
	"io"
)

type Encoder interface {
	Encode(ctx context.Context, img image.Image, quality int) (io.Reader, int64, error)
}

// CustomImage carries one request's raster through resize and encode. It is never shared.
type CustomImage struct {
	img image.Image

	t Encoder
}

func NewCustomImage(t Encoder) *CustomImage {
	return &CustomImage{t: t}
}

func (ci *CustomImage) Decode(data []byte, maxPixels int) (err error) {
	ci.img, err = Decode(data, maxPixels)
	return err
}

func (ci *CustomImage) Transform(funcs ...Transform) {
	for _, f := range funcs {
		ci.img = f(ci.img)
	}
}

func (ci *CustomImage) Bounds() image.Rectangle {
	if ci.img == nil {
		return image.Rectangle{}
	}
	return ci.img.Bounds()
}

func (ci *CustomImage) Encode(ctx context.Context, quality int) (io.Reader, int64, error) {
	if ci.img == nil {
		return nil, 0, apperror.EncodeFailed(ErrEmptyImage)
	}

	r, n, err := ci.t.Encode(ctx, ci.img, quality)
	if err != nil {
		return nil, 0, apperror.EncodeFailed(err)
	}
	return r, n, nil
}
