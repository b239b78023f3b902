package serverutils

import (
	"errors"

	"ai-interview-coach-be/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// StatusFromError maps the application error taxonomy onto HTTP status codes.
func StatusFromError(err error) int {
	if errors.Is(err, apperror.ErrIncompleteSubmission) {
		return fiber.StatusUnprocessableEntity
	}
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindConflict:
		return fiber.StatusConflict
	case apperror.KindExternalCall:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware converts errors bubbling out of controllers into
// the JSON error envelope. Fiber's own errors keep their status.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		status := StatusFromError(err)
		return ctx.Status(status).JSON(ErrorResponse(status, err.Error()))
	}
}
