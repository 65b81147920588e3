package config

import (
	"github.com/caarlos0/env/v8"
	"log/slog"
	"runtime"
	"time"
)

type Config struct {
	AppName string `env:"APP_NAME" envDefault:"Edge image resizer"`
	Port    string `env:"PORT" envDefault:"8080"`
	Version string `env:"WORKER_VERSION" envDefault:"dev"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	OtelEnabled bool   `env:"OTEL_ENABLED" envDefault:"false"`
	TraceStdout bool   `env:"TRACE_STDOUT" envDefault:"false"`
	SwaggerFile string `env:"SWAGGER_FILE" envDefault:"./docs/swagger.json"`

	RateLimitMaxRequests   int `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`
	RateLimitDurationInSec int `env:"RATE_LIMIT_DURATION_IN_SEC" envDefault:"5"`

	RequestTimeoutInSec int   `env:"REQUEST_TIMEOUT_IN_SEC" envDefault:"30"`
	OriginTimeoutInSec  int   `env:"ORIGIN_TIMEOUT_IN_SEC" envDefault:"10"`
	OriginMaxBytes      int64 `env:"ORIGIN_MAX_BYTES" envDefault:"20971520"`

	MaxWidth        int    `env:"MAX_WIDTH" envDefault:"4096"`
	MaxSourcePixels int    `env:"MAX_SOURCE_PIXELS" envDefault:"50000000"`
	MaxOutputPixels int    `env:"MAX_OUTPUT_PIXELS" envDefault:"16777216"`
	Workers         int    `env:"WORKERS" envDefault:"0"`
	AvifEncoder     string `env:"AVIF_ENCODER" envDefault:"vips"`
	OutputFormats   string `env:"OUTPUT_FORMATS" envDefault:"avif,webp,jpeg"`

	S3Region    string `env:"S3_REGION"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
}

func New() *Config {
	conf := &Config{}

	if err := env.Parse(conf); err != nil {
		slog.Error(err.Error())

		panic("Failed to parse config")
	}

	return conf
}

func (c *Config) RateLimitDuration() time.Duration {
	return time.Duration(c.RateLimitDurationInSec) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutInSec) * time.Second
}

func (c *Config) OriginTimeout() time.Duration {
	return time.Duration(c.OriginTimeoutInSec) * time.Second
}

// WorkerSlots is the number of pipelines allowed to run CPU stages at once.
func (c *Config) WorkerSlots() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// S3Enabled reports whether s3:// sources can be served.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" || c.S3Region != ""
}
