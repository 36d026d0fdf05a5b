// Package apperrors defines the typed failures surfaced to API callers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Code is a stable, machine readable error identifier.
type Code string

const (
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// Error is a failure with a stable code and a message safe to show to callers.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Status returns the HTTP status code for the error.
func (e *Error) Status() int {
	switch e.Code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "authentication required"}
	ErrForbidden    = &Error{Code: CodeForbidden, Message: "insufficient permissions"}
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "resource not found"}
	ErrConflict     = &Error{Code: CodeConflict, Message: "resource conflict"}
	ErrValidation   = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrInternal     = &Error{Code: CodeInternal, Message: "internal server error"}

	// ErrInvalidCredentials is returned for every failed sign-in, whatever the cause.
	ErrInvalidCredentials = &Error{Code: CodeUnauthorized, Message: "invalid email or password"}
)

func Unauthorized(format string, args ...any) *Error {
	return &Error{Code: CodeUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a validation failure with per-field messages.
func Validation(fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: ErrValidation.Message, Fields: fields}
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: ErrInternal.Message, Err: err}
}

// From converts any error into an *Error. Unknown errors become INTERNAL_ERROR.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if IsUniqueViolation(err) {
		return &Error{Code: CodeConflict, Message: ErrConflict.Message, Err: err}
	}
	return Internal(err)
}

// IsUniqueViolation reports whether err is a unique constraint failure from the database.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
