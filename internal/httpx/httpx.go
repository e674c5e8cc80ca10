package httpx

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/unilinkhq/messaging-backend/internal/apperr"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func requestID(c *fiber.Ctx) string {
	if v := c.Locals("requestid"); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func Error(c *fiber.Ctx, status int, code string, message string) error {
	if message == "" {
		message = "Request failed"
	}
	return c.Status(status).JSON(ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestID(c),
	})
}

func BadRequest(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusBadRequest, code, message)
}

func Unauthorized(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusUnauthorized, code, message)
}

func NotFound(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusNotFound, code, message)
}

func Internal(c *fiber.Ctx, code string) error {
	return Error(c, fiber.StatusInternalServerError, code, "Internal server error")
}

// FromError maps the service error taxonomy to an HTTP response. Primary
// write errors pass through with their message intact.
func FromError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return NotFound(c, "not_found", "Not found")
	case errors.Is(err, apperr.ErrInvalidMessage):
		return BadRequest(c, "invalid_message", "Message needs text or a file")
	case errors.Is(err, apperr.ErrUpload):
		return Error(c, fiber.StatusRequestEntityTooLarge, "upload_rejected", err.Error())
	case errors.Is(err, apperr.ErrSubscription):
		return Error(c, fiber.StatusServiceUnavailable, "subscription_failed", "Live updates unavailable")
	case apperr.IsPersistence(err):
		return Internal(c, "persistence_error")
	default:
		return Internal(c, "internal_error")
	}
}

func LocalUint(c *fiber.Ctx, key string) (uint, error) {
	v := c.Locals(key)
	if v == nil {
		return 0, fmt.Errorf("missing local %s", key)
	}
	u, ok := v.(uint)
	if !ok {
		return 0, fmt.Errorf("invalid local %s", key)
	}
	return u, nil
}
