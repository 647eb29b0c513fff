package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
)

const internalErrorMessage = "Internal Server Error"

// ErrorHandler renders every error as {"error": message}. Domain errors map
// to a status by kind; persistence and unclassified failures are hidden
// behind a generic message.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := internalErrorMessage

		var (
			domainErr *airquality.Error
			fiberErr  *fiber.Error
		)
		switch {
		case errors.As(err, &domainErr):
			code = domainErr.Kind.HTTPStatus()
			if domainErr.Kind.Exposed() {
				message = domainErr.Message
			}
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			if code < fiber.StatusInternalServerError {
				message = fiberErr.Message
			}
		}

		if code >= fiber.StatusInternalServerError {
			RequestLogger(c, logger).Error("request failed",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(fiber.Map{"error": message})
	}
}
