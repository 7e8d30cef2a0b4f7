package handler

import (
	"github.com/gofiber/fiber/v2"

	"acsgateway/internal/http/middleware"
	"acsgateway/internal/model"
	"acsgateway/internal/service"
)

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes the gateway's flat error envelope without leaking
// internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g. "NO_FILE_PROVIDED")
// - message: human-readable safe message (no internal details)
// - details: optional structured context (offending size, resource id, ...)
func writeError(c *fiber.Ctx, status int, code, message string, details map[string]any) error {
	return c.Status(status).JSON(model.ErrorResponse{
		Error:     code,
		Message:   message,
		Details:   details,
		RequestID: requestIDFromCtx(c),
	})
}

// writeFailure translates a typed service failure into the public envelope.
// Anything that is not a service.Failure is an unexpected bug and surfaces
// as a generic internal error.
func writeFailure(c *fiber.Ctx, err error) error {
	if f, ok := service.AsFailure(err); ok {
		return writeError(c, f.Status, f.Code, f.Message, f.Details)
	}
	return writeError(c, fiber.StatusInternalServerError, model.CodeInternalError,
		"An internal error occurred while processing the request.", nil)
}

// ErrorHandler returns a Fiber global error handler that standardizes
// framework-level errors (unmatched routes, body limits, panics) to the same
// envelope the extractor endpoints use.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, model.CodeValidationError, "bad request", nil)
		case fiber.StatusRequestEntityTooLarge:
			// Bodies over the server cap never reach per-file validation;
			// they still get the public too-large contract (400, not 413).
			return writeError(c, fiber.StatusBadRequest, model.CodeFileTooLarge,
				"Request body exceeds the maximum allowed size.", nil)
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found", nil)
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed", nil)
		default:
			return writeError(c, status, model.CodeInternalError, "internal server error", nil)
		}
	}
}
