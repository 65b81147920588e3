package rest

import (
	"edgeresizer/shared/apperror"
	"edgeresizer/shared/log"
	"errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
	"strings"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Parameter string `json:"parameter,omitempty"`
}

// ErrorHandler renders every failure as JSON. Internal failures are logged and
// reported without their cause.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(ErrorResponse{
				Error:   strings.ReplaceAll(strings.ToLower(utils.StatusMessage(fe.Code)), " ", "_"),
				Message: fe.Message,
			})
		}

		appErr := apperror.From(err)
		body := ErrorResponse{
			Error:     appErr.Kind.String(),
			Message:   appErr.Error(),
			Parameter: appErr.Param,
		}

		if appErr.Status >= fiber.StatusInternalServerError {
			log.LoggerWithTrace(c.UserContext(), logger).Error("Request failed",
				zap.String("path", c.Path()),
				zap.String("kind", appErr.Kind.String()),
				zap.Error(err),
			)
			if appErr.Kind == apperror.KindInternal {
				body.Message = utils.StatusMessage(fiber.StatusInternalServerError)
			}
		}

		if appErr.Kind == apperror.KindMethodNotAllowed {
			c.Set(fiber.HeaderAllow, fiber.MethodGet)
		}

		return c.Status(appErr.Status).JSON(body)
	}
}
