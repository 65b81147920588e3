package format

import (
	"bytes"
	"context"
	"edgeresizer/shared/log"
	"fmt"
	"github.com/Kagami/go-avif"
	"go.uber.org/zap"
	"image"
	"io"
)

// AvifAom encodes with libaom directly, skipping the png hand-off libvips needs.
type AvifAom struct {
	logger *zap.Logger
}

func MustAvifAom(logger *zap.Logger) *AvifAom {
	return &AvifAom{logger: logger}
}

func (w *AvifAom) Encode(ctx context.Context, img image.Image, quality int) (io.Reader, int64, error) {
	logger := log.LoggerWithTrace(ctx, w.logger)

	q := aomQuantizer(quality)
	logger.Debug("Converting image to avif", zap.Int("quality", quality), zap.Int("quantizer", q), zap.String("encoder", "aom"))

	var buf bytes.Buffer
	if err := avif.Encode(&buf, img, &avif.Options{Threads: 0, Speed: 8, Quality: q}); err != nil {
		logger.Error("Error converting image to avif", zap.Error(err))
		return nil, 0, fmt.Errorf("encode avif: %w", err)
	}

	return &buf, int64(buf.Len()), nil
}

// aomQuantizer maps quality 1-100 onto libaom's 63 (worst) to 0 (lossless) scale.
func aomQuantizer(quality int) int {
	q := avif.MaxQuality - quality*avif.MaxQuality/100
	if q < avif.MinQuality {
		return avif.MinQuality
	}
	if q > avif.MaxQuality {
		return avif.MaxQuality
	}
	return q
}
