package rest

import (
	"edgeresizer/config"
	"edgeresizer/shared/apperror"
	"edgeresizer/shared/metrics"
	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// NewApp builds the fiber app with the shared middleware stack. rateLimiter may be
// nil, in which case requests are limited per process.
func NewApp(cfg *config.Config, rateLimiter RateLimiter, m *metrics.Metrics, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		Immutable:    true,
		ErrorHandler: ErrorHandler(logger),
	})

	app.Use(
		recover.New(recover.Config{EnableStackTrace: true}),
		otelfiber.Middleware(),
		fiberzap.New(fiberzap.Config{
			Logger: logger,
			Fields: []string{"ip", "latency", "status", "method", "url"},
		}),
		m.Middleware(),
		OnlyGet(),
	)

	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	if cfg.SwaggerFile != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.SwaggerFile,
			Path:     "docs",
			Title:    cfg.AppName,
		}))
	}

	app.Use(
		RequestLogger(logger),
		etag.New(),
		rateLimit(cfg, rateLimiter, logger),
	)

	return app
}

func rateLimit(cfg *config.Config, rateLimiter RateLimiter, logger *zap.Logger) fiber.Handler {
	if rateLimiter != nil {
		return RateLimit(rateLimiter, logger)
	}

	return limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.IP() == "127.0.0.1"
		},
		Max:        cfg.RateLimitMaxRequests,
		Expiration: cfg.RateLimitDuration(),
		LimitReached: func(c *fiber.Ctx) error {
			return apperror.RateLimited()
		},
	})
}
