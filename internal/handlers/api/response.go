package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"whomortality/internal/mortality"
)

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}

// StatusForKind maps an error kind to its HTTP status.
func StatusForKind(kind mortality.Kind) int {
	switch kind {
	case mortality.KindScopeNotFound, mortality.KindNoDataForScope:
		return fiber.StatusNotFound
	case mortality.KindNoCausesSelected:
		return fiber.StatusBadRequest
	case mortality.KindInsufficientData:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// kindError writes err with its kind. Internal failures are logged and their
// details withheld from the client.
func kindError(c fiber.Ctx, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return jsonError(c, fiber.StatusGatewayTimeout, "query timed out")
	}

	kind := mortality.KindOf(err)
	message := err.Error()
	if kind == mortality.KindInternal {
		slog.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", requestid.FromContext(c),
			"error", err,
		)
		message = "internal error"
	}
	return c.Status(StatusForKind(kind)).JSON(fiber.Map{
		"status": "error",
		"kind":   kind,
		"error":  message,
	})
}
