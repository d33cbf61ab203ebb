package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"sealshare/internal/service"
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

// serviceError maps a service-layer error onto an HTTP status and the
// client-facing message. Anything outside the known taxonomy is logged and
// surfaced as an opaque 500.
func serviceError(c fiber.Ctx, log *slog.Logger, err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return jsonError(c, fiber.StatusBadRequest, verr.Message)
	}

	switch {
	case errors.Is(err, service.ErrInvalidUrn),
		errors.Is(err, service.ErrWrongPassword):
		return jsonError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrQuotaExhausted):
		return jsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrExpired),
		errors.Is(err, service.ErrUnsupportedScheme):
		return jsonError(c, fiber.StatusGone, err.Error())
	case errors.Is(err, service.ErrPayloadTooLarge):
		return jsonError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrRateLimited):
		return jsonError(c, fiber.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrCorruptedRecord):
		return jsonError(c, fiber.StatusInternalServerError, "internal error")
	default:
		log.Error("unhandled service error", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal error")
	}
}
