package server

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an application error carrying an HTTP status and a message
// safe to show the caller. Err holds the internal cause for logs only.
type AppError struct {
	Code    int    `json:"status_code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
	Context string `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code.
func (e *AppError) StatusCode() int {
	return e.Code
}

// UserMessage returns the caller-facing message.
func (e *AppError) UserMessage() string {
	return e.Message
}

// WithContext attaches caller context for the log line.
func (e *AppError) WithContext(context string) *AppError {
	e.Context = context
	return e
}

// NewValidationError builds a 400 Bad Request.
func NewValidationError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Err:     err,
	}
}

// NewNotFoundError builds a 404 Not Found.
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: message,
		Err:     err,
	}
}

// NewConflictError builds a 409 Conflict.
func NewConflictError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
		Err:     err,
	}
}

// NewInternalError builds a 500. The caller sees only a generic message;
// the detail goes to the log.
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "Internal server error",
		Err:     errors.Join(errors.New(message), err),
	}
}

// NewServiceUnavailableError builds a 503 Service Unavailable.
func NewServiceUnavailableError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Message: message,
		Err:     err,
	}
}

// WrapError adds context to an existing error. An AppError keeps its status
// code; anything else becomes an internal error.
func WrapError(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
			Context: appErr.Context,
		}
	}

	return NewInternalError(message, err)
}
