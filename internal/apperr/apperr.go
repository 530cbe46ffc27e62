// Package apperr classifies service errors into HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports bad client input. Its message is safe to return.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns an error matching ErrNotFound with a descriptive message.
func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// Conflict returns an error matching ErrConflict with the given message.
func Conflict(msg string) error {
	return &conflictError{msg: msg}
}

type conflictError struct{ msg string }

func (e *conflictError) Error() string { return e.msg }
func (e *conflictError) Unwrap() error { return ErrConflict }

// Status maps err to an HTTP status and a client-facing message. Server
// errors never expose their detail.
func Status(err error) (int, string) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, ve.Error()
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized, "Unauthorized"
	}
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return fe.Code, fe.Message
	}
	return fiber.StatusInternalServerError, "Internal server error"
}

// Respond writes err as a dto.ErrorResponse. 5xx errors are logged with the
// original detail under the given action name.
func Respond(c *fiber.Ctx, err error, action string) error {
	code, msg := Status(err)
	if code >= fiber.StatusInternalServerError {
		slog.Error(action+" failed",
			"action", action,
			"method", c.Method(),
			"path", c.Path(),
			"request_id", requestID(c),
			"error", err.Error(),
		)
	}
	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

// BadRequest is shorthand for a 400 with the given message.
func BadRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
