package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrTemplateNotFound
	ErrRender
	ErrTransport
)

func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(message string, err error) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
		Err:     err,
	}
}

// TemplateNotFound marks a template name with no community or system match.
// Fatal for the email channel only; other channels proceed independently.
func TemplateNotFound(name string, err error) *AppError {
	return &AppError{
		Code:    ErrTemplateNotFound,
		Message: fmt.Sprintf("template %q not found", name),
		Err:     err,
	}
}

// RenderError marks a strict-mode render that referenced an unset variable.
func RenderError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrRender,
		Message: message,
		Err:     err,
	}
}

// TransportFailure marks a mail or push delivery failure. Callers log it per
// destination; it never aborts the surrounding dispatch.
func TransportFailure(channel string, err error) *AppError {
	return &AppError{
		Code:    ErrTransport,
		Message: fmt.Sprintf("%s transport failure", channel),
		Err:     err,
	}
}

// IsCode reports whether err wraps an AppError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
