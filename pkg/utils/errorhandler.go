package utils

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"aaronromeo.com/inboxpilot/pkg/apperr"
	"aaronromeo.com/inboxpilot/pkg/provider"
)

// NewErrorHandler renders every error returned by a handler as
// {"error": "..."}. Classified errors pick their status from their kind;
// *fiber.Error keeps its own code; anything else is a 500.
func NewErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		msg := err.Error()

		var fe *fiber.Error
		var ae *apperr.Error
		switch {
		case errors.As(err, &fe):
			status = fe.Code
			msg = fe.Message
		case errors.As(err, &ae):
			status = ae.StatusCode()
		}

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		}
		var pe *provider.Error
		if errors.As(err, &pe) {
			attrs = append(attrs, slog.Int("provider_status", pe.StatusCode))
		}
		if status >= fiber.StatusInternalServerError {
			logger.ErrorContext(c.UserContext(), "Request failed", attrs...)
		} else {
			logger.DebugContext(c.UserContext(), "Request rejected", attrs...)
		}

		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
}
