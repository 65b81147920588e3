package format

import (
	"bytes"
	"context"
	"edgeresizer/shared/log"
	"fmt"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"image"
	"io"
)

type Jpeg struct {
	logger *zap.Logger
}

func MustJpeg(logger *zap.Logger) *Jpeg {
	return &Jpeg{logger: logger}
}

func (w *Jpeg) Encode(ctx context.Context, img image.Image, quality int) (io.Reader, int64, error) {
	logger := log.LoggerWithTrace(ctx, w.logger)
	logger.Debug("Converting image to jpeg", zap.Int("quality", quality))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		logger.Error("Error converting image to jpeg", zap.Error(err))
		return nil, 0, fmt.Errorf("encode jpeg: %w", err)
	}

	return &buf, int64(buf.Len()), nil
}
