package format

import (
	"bytes"
	"context"
	"edgeresizer/shared/log"
	"fmt"
	"github.com/h2non/bimg"
	"go.uber.org/zap"
	"image"
	"io"
)

// Avif encodes through libvips.
type Avif struct {
	logger *zap.Logger
}

func MustAvif(logger *zap.Logger) *Avif {
	return &Avif{logger: logger}
}

func (w *Avif) Encode(ctx context.Context, img image.Image, quality int) (io.Reader, int64, error) {
	logger := log.LoggerWithTrace(ctx, w.logger)
	logger.Debug("Converting image to avif", zap.Int("quality", quality), zap.String("encoder", "vips"))

	src, err := pngBytes(img)
	if err != nil {
		logger.Error("Error preparing avif input", zap.Error(err))
		return nil, 0, fmt.Errorf("prepare avif input: %w", err)
	}

	buf, err := bimg.NewImage(src).Process(bimg.Options{Type: bimg.AVIF, Quality: quality})
	if err != nil {
		logger.Error("Error converting image to avif", zap.Error(err))
		return nil, 0, fmt.Errorf("encode avif: %w", err)
	}

	return bytes.NewReader(buf), int64(len(buf)), nil
}
