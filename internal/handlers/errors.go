package handlers

import (
	"errors"
	"log/slog"

	"catalog/internal/apperrors"
	"catalog/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Code   apperrors.Code    `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ErrorHandler renders every error returned by a handler as a JSON body.
// Unexpected failures are logged and reported without their cause.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(errorResponse{Error: fe.Message, Code: codeForStatus(fe.Code)})
	}

	appErr := apperrors.From(err)
	if appErr.Code == apperrors.CodeInternal {
		logger.FromContext(c.UserContext()).Error("request failed", slog.Any("error", err))
	}
	return c.Status(appErr.Status()).JSON(errorResponse{
		Error:  appErr.Message,
		Code:   appErr.Code,
		Fields: appErr.Fields,
	})
}

func codeForStatus(status int) apperrors.Code {
	switch status {
	case fiber.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case fiber.StatusForbidden:
		return apperrors.CodeForbidden
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return apperrors.CodeNotFound
	case fiber.StatusConflict:
		return apperrors.CodeConflict
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge:
		return apperrors.CodeValidation
	default:
		return apperrors.CodeInternal
	}
}
