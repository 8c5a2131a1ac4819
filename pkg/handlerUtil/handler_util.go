package handlerUtil

import (
	"MoodMate/internal/api/detection"
	"MoodMate/pkg/log"
	"MoodMate/pkg/response"
	"MoodMate/pkg/utils"
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	fiberUtils "github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) fields(requestID string, err error, path string, operation string) log.Fields {
	return log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}
}

// Handle maps err to an HTTP response. Upload problems and detector outages are checked
// first, every other domain error carries its own status in a response.Error.
func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	if errors.Is(err, utils.ErrNoFile) || errors.Is(err, utils.ErrNotAnImage) || errors.Is(err, utils.ErrInvalidBase64) {
		h.logger.WithFields(h.fields(requestID, err, path, operation)).Warn("Invalid image upload")
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid image. Only JPEG or PNG images are allowed.",
			Code:  "INVALID_IMAGE",
		})
	}

	if errors.Is(err, utils.ErrFileTooLarge) {
		h.logger.WithFields(h.fields(requestID, err, path, operation)).Warn("File too large")
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(ErrorResponse{
			Error: "File too large. Maximum size is 10MB.",
			Code:  "FILE_TOO_LARGE",
		})
	}

	if errors.Is(err, context.DeadlineExceeded) {
		h.logger.WithFields(h.fields(requestID, err, path, operation)).Warn("Request timed out")
		return h.HandleRequestTimeout(c)
	}

	if errors.Is(err, detection.ErrDetectorUnavailable) {
		h.logger.WithFields(h.fields(requestID, err, path, operation)).Error("Emotion detector unavailable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "Emotion detection service unavailable",
			Code:  "DETECTOR_UNAVAILABLE",
		})
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		fields := h.fields(requestID, err, path, operation)
		fields["code"] = respErr.Code
		if respErr.Code >= fiber.StatusInternalServerError {
			traceID := log.ErrorWithTraceID(fields, "Operation failed with server error")
			return c.Status(respErr.Code).JSON(ErrorResponse{Error: err.Error(), TraceID: traceID})
		}
		h.logger.WithFields(fields).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(ErrorResponse{Error: err.Error()})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		h.logger.WithFields(h.fields(requestID, err, path, operation)).Warn("Request rejected")
		return c.Status(fiberErr.Code).JSON(ErrorResponse{Error: fiberErr.Message})
	}

	traceID := log.ErrorWithTraceID(h.fields(requestID, err, path, operation), "Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "An unexpected error occurred",
		TraceID: traceID,
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(ErrorResponse{
		Error: fiberUtils.StatusMessage(fiber.StatusRequestTimeout),
		Code:  "REQUEST_TIMEOUT",
	})
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error: message,
		Code:  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
