package main

import (
	"context"
	"edgeresizer/api/rest"
	"edgeresizer/config"
	img "edgeresizer/converter/image"
	"edgeresizer/origin"
	"edgeresizer/ratelimit"
	"edgeresizer/service"
	"edgeresizer/shared/log"
	"edgeresizer/shared/metrics"
	"edgeresizer/shared/trace"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/h2non/bimg"
	"github.com/hyperdxio/otel-config-go/otelconfig"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

//	@title			Edge image resizer
//	@version		1.0
//	@description	Fetches remote images, resizes them and re-encodes them for the requesting client

// @BasePath	/
func main() {
	serviceConfig := config.New()
	dragonflyConfig := config.NewDragonflyConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serviceConfig.OtelEnabled {
		otelShutdown, err := otelconfig.ConfigureOpenTelemetry()
		if err != nil {
			slog.Error("Error configuring OpenTelemetry", "error", err)
		}
		defer otelShutdown()
	} else {
		tp := trace.InitTrace(serviceConfig.AppName, serviceConfig.TraceStdout)
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				slog.Error("Error shutting down tracer provider", "error", err)
			}
		}()
	}

	logger, flushLogs := log.InitLogger(ctx, serviceConfig.LogLevel)
	defer func() {
		_ = logger.Sync()
		if err := flushLogs(context.Background()); err != nil {
			slog.Error("Error flushing logs", "error", err)
		}
	}()

	bimg.Initialize()
	defer bimg.Shutdown()

	var s3Client s3iface.S3API
	if serviceConfig.S3Enabled() {
		client, err := origin.NewS3Client(origin.S3Config{
			Region:    serviceConfig.S3Region,
			Endpoint:  serviceConfig.S3Endpoint,
			AccessKey: serviceConfig.S3AccessKey,
			SecretKey: serviceConfig.S3SecretKey,
		})
		if err != nil {
			logger.Error(err.Error())
			panic("Failed to create aws session")
		}
		s3Client = client
	}

	var rateLimiter rest.RateLimiter
	if dragonflyConfig.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     dragonflyConfig.Addr(),
			Password: dragonflyConfig.Password,
			DB:       dragonflyConfig.DB,
		})
		defer client.Close()

		bucket, err := ratelimit.NewRedisTokenBucket(client, serviceConfig.RateLimitMaxRequests, serviceConfig.RateLimitDuration(), "")
		if err != nil {
			logger.Panic("Failed to create rate limiter", zap.Error(err))
		}
		rateLimiter = bucket
		logger.Info("Using shared rate limiter", zap.String("addr", dragonflyConfig.Addr()))
	}

	fetcher := origin.NewFetcher(serviceConfig.OriginTimeout(), serviceConfig.OriginMaxBytes, s3Client, logger)
	outputFormats, err := img.ParseFormats(serviceConfig.OutputFormats)
	if err != nil {
		logger.Panic("Failed to parse output formats", zap.Error(err))
	}
	converterStrategy := img.MustStrategy(serviceConfig.AvifEncoder, logger, outputFormats...)
	serviceMetrics := metrics.New()

	imageService := service.NewImageService(fetcher, converterStrategy, service.Options{
		Workers:         serviceConfig.WorkerSlots(),
		MaxSourcePixels: serviceConfig.MaxSourcePixels,
		MaxOutputPixels: serviceConfig.MaxOutputPixels,
	}, serviceMetrics, logger)

	app := rest.NewApp(serviceConfig, rateLimiter, serviceMetrics, logger)
	rest.NewImageController(app, serviceConfig, imageService, logger)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serviceConfig.RequestTimeout())
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", zap.Error(err))
		}
	}()

	logger.Info("Starting server",
		zap.String("port", serviceConfig.Port),
		zap.String("version", serviceConfig.Version),
		zap.Int("workers", serviceConfig.WorkerSlots()),
		zap.Duration("request_timeout", serviceConfig.RequestTimeout()),
	)

	if err := app.Listen(":" + serviceConfig.Port); err != nil {
		logger.Panic(err.Error())
		return
	}

	// Listen returns as soon as shutdown starts; wait for in-flight requests.
	<-shutdownDone
}
