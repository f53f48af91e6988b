// Package apperr defines the application error codes shared by services and controllers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInvalidInput = "INVALID_INPUT"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError carries a code that maps to a client-visible status.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on code so sentinel errors compare by kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NotFound(format string, args ...any) *AppError {
	return New(CodeNotFound, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...any) *AppError {
	return New(CodeForbidden, fmt.Sprintf(format, args...))
}

func Invalid(format string, args ...any) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) *AppError {
	return New(CodeConflict, fmt.Sprintf(format, args...))
}

var (
	ErrPostNotFound      = New(CodeNotFound, "post not found")
	ErrCommentNotFound   = New(CodeNotFound, "comment not found")
	ErrReactionNotFound  = New(CodeNotFound, "reaction not found")
	ErrThresholdNotFound = New(CodeNotFound, "threshold not found")
	ErrUnauthenticated   = New(CodeUnauthorized, "authentication required")
)

func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

func IsConflict(err error) bool {
	return CodeOf(err) == CodeConflict
}

func IsForbidden(err error) bool {
	return CodeOf(err) == CodeForbidden
}

func IsInvalid(err error) bool {
	return CodeOf(err) == CodeInvalidInput
}

// HTTPStatus maps an error to the status code returned to clients.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage hides internal error details from clients.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != CodeInternal {
		return appErr.Message
	}
	return "internal server error"
}
