package log

import (
	"context"
	"github.com/hyperdxio/opentelemetry-go/otelzap"
	"github.com/hyperdxio/opentelemetry-logs-go/exporters/otlp/otlplogs"
	sdk "github.com/hyperdxio/opentelemetry-logs-go/sdk/logs"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"os"
)

// InitLogger tees records to the OTLP logs exporter and to stdout at level.
// The returned func flushes the exporter.
func InitLogger(ctx context.Context, level string) (*zap.Logger, func(context.Context) error) {
	consoleLevel := zap.DebugLevel
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		consoleLevel = lvl
	}

	consoleDebugging := zapcore.Lock(os.Stdout)
	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	console := zapcore.NewCore(consoleEncoder, consoleDebugging, consoleLevel)

	logExporter, err := otlplogs.NewExporter(ctx)
	if err != nil {
		logger := zap.New(console)
		logger.Warn("OTLP log exporter unavailable, logging to console only", zap.Error(err))
		return logger, func(context.Context) error { return nil }
	}

	loggerProvider := sdk.NewLoggerProvider(
		sdk.WithBatcher(logExporter),
	)

	core := zapcore.NewTee(
		otelzap.NewOtelCore(loggerProvider),
		console,
	)
	return zap.New(core), loggerProvider.Shutdown
}

func LoggerWithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	spanContext := trace.SpanContextFromContext(ctx)
	if !spanContext.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanContext.TraceID().String()),
		zap.String("span_id", spanContext.SpanID().String()),
	)
}
