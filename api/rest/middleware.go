package rest

import (
	"context"
	"edgeresizer/ratelimit"
	"edgeresizer/shared/apperror"
	"edgeresizer/shared/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
	"strconv"
	"time"
)

const (
	HeaderCountry = "CF-IPCountry"
	HeaderRegion  = "CF-Region"
)

type RateLimiter interface {
	Allow(ctx context.Context, subject string) (ratelimit.Decision, error)
}

// OnlyGet rejects every method other than GET before routing.
func OnlyGet() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet {
			return apperror.MethodNotAllowed(c.Method())
		}
		return c.Next()
	}
}

// RequestLogger records where a request came from. It never changes the outcome.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log.LoggerWithTrace(c.UserContext(), logger).Info("Inbound request",
			zap.Time("at", time.Now()),
			zap.String("path", utils.CopyString(c.Path())),
			zap.String("country", headerOr(c, HeaderCountry, "unknown")),
			zap.String("region", headerOr(c, HeaderRegion, "unknown region")),
		)
		return c.Next()
	}
}

// RateLimit applies a shared limiter keyed by client IP. Limiter failures let the
// request through.
func RateLimit(limiter RateLimiter, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.IP() == "127.0.0.1" {
			return c.Next()
		}

		decision, err := limiter.Allow(c.UserContext(), c.IP())
		if err != nil {
			log.LoggerWithTrace(c.UserContext(), logger).Warn("Rate limiter check failed", zap.Error(err))
			return c.Next()
		}

		c.Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		if decision.Allowed {
			return c.Next()
		}

		retryAfter := max(int(decision.RetryAfter.Round(time.Second).Seconds()), 1)
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))

		return apperror.RateLimited()
	}
}

func headerOr(c *fiber.Ctx, key, fallback string) string {
	if v := c.Get(key); v != "" {
		return utils.CopyString(v)
	}
	return fallback
}
