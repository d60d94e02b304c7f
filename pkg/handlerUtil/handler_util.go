package handlerUtil

import (
	"BodyMeasure/pkg/log"
	"BodyMeasure/pkg/response"
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Handle renders err as {"error": message}. A *response.Error anywhere in the chain decides the status and
// the message; the full chain is only logged. Anything else is a 500 carrying the error text.
func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	return c.Status(h.Resolve(requestID, err, path, operation)).JSON(h.Body(err))
}

// Resolve logs err and returns the HTTP status it maps to.
func (h *ErrorHandler) Resolve(requestID string, err error, path string, operation string) int {
	entry := h.logger.WithFields(log.Fields{
		log.RequestIDKey: requestID,
		"error":          err.Error(),
		"path":           path,
		"operation":      operation,
	})

	if errors.Is(err, context.DeadlineExceeded) {
		entry.Warn("Operation timed out")
		return fiber.StatusRequestTimeout
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		entry = entry.WithField("code", respErr.StatusCode())
		if respErr.StatusCode() >= fiber.StatusInternalServerError {
			log.ErrorWithTraceID(entry, "Operation failed with error response")
		} else {
			entry.Warn("Operation failed with error response")
		}
		return respErr.StatusCode()
	}

	log.ErrorWithTraceID(entry, "Unexpected error")
	return fiber.StatusInternalServerError
}

// Body is the client-facing payload for err.
func (h *ErrorHandler) Body(err error) ErrorResponse {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorResponse{Error: utils.StatusMessage(fiber.StatusRequestTimeout)}
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		return ErrorResponse{Error: respErr.Message()}
	}

	return ErrorResponse{Error: err.Error()}
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(ErrorResponse{
		Error: utils.StatusMessage(fiber.StatusRequestTimeout),
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
