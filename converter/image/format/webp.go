package format

import (
	"bytes"
	"context"
	"edgeresizer/shared/log"
	"fmt"
	"github.com/chai2010/webp"
	"go.uber.org/zap"
	"image"
	"io"
)

type Webp struct {
	logger *zap.Logger
}

func MustWebp(logger *zap.Logger) *Webp {
	return &Webp{logger: logger}
}

// Encode writes lossy webp, switching to lossless at quality 100.
func (w *Webp) Encode(ctx context.Context, img image.Image, quality int) (io.Reader, int64, error) {
	logger := log.LoggerWithTrace(ctx, w.logger)
	logger.Debug("Converting image to webp", zap.Int("quality", quality))

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: quality == 100, Quality: float32(quality)}); err != nil {
		logger.Error("Error converting image to webp", zap.Error(err))
		return nil, 0, fmt.Errorf("encode webp: %w", err)
	}

	return &buf, int64(buf.Len()), nil
}
