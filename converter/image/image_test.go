package image

import (
	"context"
	"edgeresizer/converter/image/format"
	"edgeresizer/shared/apperror"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"image"
	"io"
	"testing"
)

type failingEncoder struct{}

func (failingEncoder) Encode(context.Context, image.Image, int) (io.Reader, int64, error) {
	return nil, 0, errors.New("unsupported pixel layout")
}

func TestCustomImage(t *testing.T) {
	ci := NewCustomImage(MustStrategy(AvifEncoderVips, zap.NewNop()).Apply(JPEG))

	require.NoError(t, ci.Decode(pngData(t, 200, 100), 0))
	ci.Transform(WithWidth(50))
	assert.Equal(t, image.Rect(0, 0, 50, 25), ci.Bounds())

	r, n, err := ci.Encode(context.Background(), 80)
	require.NoError(t, err)
	assert.Positive(t, n)

	decoded, name, err := image.Decode(r)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", name)
	assert.Equal(t, 50, decoded.Bounds().Dx())
	assert.Equal(t, 25, decoded.Bounds().Dy())
}

func TestCustomImageEncodeFailure(t *testing.T) {
	ci := NewCustomImage(failingEncoder{})

	_, _, err := ci.Encode(context.Background(), 80)
	assert.True(t, apperror.IsKind(err, apperror.KindEncodeFailed))

	require.NoError(t, ci.Decode(pngData(t, 10, 10), 0))
	_, _, err = ci.Encode(context.Background(), 80)
	assert.True(t, apperror.IsKind(err, apperror.KindEncodeFailed))
	assert.Contains(t, err.Error(), "unsupported pixel layout")
}

func withVipsAvif(t *testing.T, supported bool) {
	t.Helper()

	orig := vipsSavesAvif
	vipsSavesAvif = func() bool { return supported }
	t.Cleanup(func() { vipsSavesAvif = orig })
}

func TestStrategy(t *testing.T) {
	withVipsAvif(t, true)

	s := MustStrategy(AvifEncoderVips, zap.NewNop())
	assert.IsType(t, &format.Jpeg{}, s.Apply(JPEG))
	assert.IsType(t, &format.Webp{}, s.Apply(WEBP))
	assert.IsType(t, &format.Avif{}, s.Apply(AVIF))
	assert.IsType(t, &format.Jpeg{}, s.Apply(Format{}))

	aom := MustStrategy(AvifEncoderAom, zap.NewNop())
	assert.IsType(t, &format.AvifAom{}, aom.Apply(AVIF))

	assert.Panics(t, func() { MustStrategy("heic", zap.NewNop()) })
}

func TestStrategyWithoutVipsAvif(t *testing.T) {
	withVipsAvif(t, false)

	s := MustStrategy(AvifEncoderVips, zap.NewNop())
	assert.IsType(t, &format.AvifAom{}, s.Apply(AVIF))
	assert.Equal(t, AVIF, s.Pick(AcceptedFormats("image/avif,image/webp,*/*")))
}

func TestStrategyFormats(t *testing.T) {
	s := MustStrategy(AvifEncoderAom, zap.NewNop(), WEBP)

	assert.IsType(t, &format.Jpeg{}, s.Apply(AVIF))
	assert.Equal(t, WEBP, s.Pick(AcceptedFormats("image/avif,image/webp,*/*")))
	assert.Equal(t, JPEG, s.Pick(AcceptedFormats("image/avif")))
	assert.Equal(t, JPEG, s.Pick(nil))

	jpegOnly := MustStrategy(AvifEncoderAom, zap.NewNop(), JPEG)
	assert.Equal(t, JPEG, jpegOnly.Pick(AcceptedFormats("image/avif,image/webp")))

	all := MustStrategy(AvifEncoderAom, zap.NewNop())
	assert.Equal(t, AVIF, all.Pick(AcceptedFormats("image/webp,image/avif")))
}

func TestParseFormats(t *testing.T) {
	formats, err := ParseFormats("avif, WEBP ,jpg")
	require.NoError(t, err)
	assert.Equal(t, []Format{AVIF, WEBP, JPEG}, formats)

	formats, err = ParseFormats("webp,")
	require.NoError(t, err)
	assert.Equal(t, []Format{WEBP}, formats)

	_, err = ParseFormats("webp,png")
	assert.Error(t, err)

	_, err = ParseFormats(" , ")
	assert.Error(t, err)
}
