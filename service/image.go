package service

import (
	"context"
	"edgeresizer/api/model"
	img "edgeresizer/converter/image"
	"edgeresizer/shared/apperror"
	"edgeresizer/shared/log"
	"edgeresizer/shared/metrics"
	"errors"
	"fmt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"image"
	"net/url"
	"time"
)

type Fetcher interface {
	Fetch(ctx context.Context, src *url.URL) ([]byte, error)
}

// DefaultMaxOutputPixels is used when Options.MaxOutputPixels is not set.
const DefaultMaxOutputPixels = 4096 * 4096

var ErrOutputTooLarge = errors.New("resized image too large")

type Options struct {
	// Workers bounds how many pipelines decode, resize or encode at once.
	Workers         int
	MaxSourcePixels int
	// MaxOutputPixels bounds the resized raster, whatever the source aspect ratio.
	MaxOutputPixels int
}

// ImageService runs the transform pipeline. It holds no per-request state; every
// Transform call owns its bytes and raster from fetch to response.
type ImageService struct {
	fetcher  Fetcher
	strategy *img.Strategy
	workers  *semaphore.Weighted
	opts     Options

	metrics *metrics.Metrics
	tracer  trace.Tracer
	logger  *zap.Logger
}

func NewImageService(fetcher Fetcher, strategy *img.Strategy, opts Options, m *metrics.Metrics, logger *zap.Logger) *ImageService {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.MaxOutputPixels <= 0 {
		opts.MaxOutputPixels = DefaultMaxOutputPixels
	}

	return &ImageService{
		fetcher:  fetcher,
		strategy: strategy,
		workers:  semaphore.NewWeighted(int64(opts.Workers)),
		opts:     opts,
		metrics:  m,
		tracer:   otel.Tracer("edgeresizer/service"),
		logger:   logger,
	}
}

// Transform fetches, decodes, resizes and encodes one image. Failures are terminal and
// always come back as *apperror.Error; panics are converted to KindInternal.
func (i *ImageService) Transform(ctx context.Context, req model.TransformRequest) (resp *model.ImageResponse, err error) {
	ctx, span := i.tracer.Start(ctx, "image.transform")
	defer span.End()

	logger := log.LoggerWithTrace(ctx, i.logger)
	accepted := req.AcceptedFormats
	if len(accepted) == 0 {
		accepted = img.AcceptedFormats(req.Accept)
	}
	format := i.strategy.Pick(accepted)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered from pipeline panic", zap.Any("panic", r), zap.Stack("stack"))
			resp, err = nil, apperror.Internal(fmt.Errorf("pipeline panic: %v", r))
		}
		if err != nil {
			err = apperror.From(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		i.observe(format, err)
	}()

	span.SetAttributes(
		attribute.String("image.src", req.SourceURL.Redacted()),
		attribute.String("image.format", format.String()),
		attribute.Int("image.width", req.Width),
		attribute.Int("image.quality", req.Quality),
	)

	var data []byte
	err = i.stage(ctx, "fetch", func(ctx context.Context) (fetchErr error) {
		data, fetchErr = i.fetcher.Fetch(ctx, req.SourceURL)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	if i.metrics != nil {
		i.metrics.ObserveOriginBytes(len(data))
	}

	if err := i.acquire(ctx); err != nil {
		return nil, err
	}
	defer i.release()

	ci := img.NewCustomImage(i.strategy.Apply(format))

	err = i.stage(ctx, "decode", func(context.Context) error {
		return ci.Decode(data, i.opts.MaxSourcePixels)
	})
	if err != nil {
		return nil, err
	}
	src := ci.Bounds()
	if err := i.checkOutputSize(src, req.Width); err != nil {
		return nil, err
	}

	err = i.stage(ctx, "resize", func(context.Context) error {
		ci.Transform(img.WithWidth(req.Width))
		return nil
	})
	if err != nil {
		return nil, err
	}

	bounds := ci.Bounds()
	out := &model.ImageResponse{
		Type:   format.MIME(),
		Format: format.String(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
	err = i.stage(ctx, "encode", func(ctx context.Context) (encodeErr error) {
		out.Body, out.ContentLength, encodeErr = ci.Encode(ctx, req.Quality)
		return encodeErr
	})
	if err != nil {
		return nil, err
	}
	if i.metrics != nil {
		i.metrics.ObserveOutputBytes(out.Format, out.ContentLength)
	}

	logger.Debug("Transformed image",
		zap.String("src", req.SourceURL.Redacted()),
		zap.String("format", format.String()),
		zap.Stringers("accepted", req.AcceptedFormats),
		zap.Int("source_width", src.Dx()),
		zap.Int("source_height", src.Dy()),
		zap.Int("width", out.Width),
		zap.Int("height", out.Height),
		zap.Int64("bytes", out.ContentLength),
	)

	return out, nil
}

// stage runs fn in its own span and records its duration. CPU stages check the
// request deadline first since they cannot be interrupted once started.
func (i *ImageService) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if name != "fetch" {
		if err := ctx.Err(); err != nil {
			return apperror.Timeout(fmt.Errorf("before %s: %w", name, err))
		}
	}

	ctx, span := i.tracer.Start(ctx, "image."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	if i.metrics != nil {
		i.metrics.ObserveStage(name, time.Since(start))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// checkOutputSize rejects widths whose resized raster would exceed the pixel budget.
func (i *ImageService) checkOutputSize(src image.Rectangle, width int) error {
	if src.Dx() == width || src.Dx() <= 0 {
		return nil
	}

	height := img.TargetHeight(src.Dx(), src.Dy(), width)
	if int64(width)*int64(height) > int64(i.opts.MaxOutputPixels) {
		return apperror.InvalidParameter("w", fmt.Errorf("%w: %dx%d", ErrOutputTooLarge, width, height))
	}
	return nil
}

func (i *ImageService) acquire(ctx context.Context) error {
	if err := i.workers.Acquire(ctx, 1); err != nil {
		return apperror.Timeout(fmt.Errorf("waiting for worker: %w", err))
	}
	if i.metrics != nil {
		i.metrics.WorkerAcquired()
	}
	return nil
}

func (i *ImageService) release() {
	i.workers.Release(1)
	if i.metrics != nil {
		i.metrics.WorkerReleased()
	}
}

func (i *ImageService) observe(format img.Format, err error) {
	if i.metrics == nil {
		return
	}

	outcome := "ok"
	if err != nil {
		outcome = apperror.From(err).Kind.String()
	}
	i.metrics.ObserveTransform(format.String(), outcome)
}
