package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType categorizes errors so the HTTP layer can map them to a status
// without inspecting messages.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeTransient  ErrorType = "transient"
	ErrorTypeInternal   ErrorType = "internal"
)

// ClinicError is the structured error used across the application.
type ClinicError struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

func (e *ClinicError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ClinicError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error type to a response status code.
func (e *ClinicError) HTTPStatus() int {
	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error. The request must be rejected
// before any side effect.
func NewValidationError(code, message string, details map[string]interface{}) *ClinicError {
	return &ClinicError{Type: ErrorTypeValidation, Code: code, Message: message, Details: details}
}

// NewConflictError creates a conflict error, e.g. a slot already taken.
func NewConflictError(code, message string, details map[string]interface{}) *ClinicError {
	return &ClinicError{Type: ErrorTypeConflict, Code: code, Message: message, Details: details}
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(code, message string) *ClinicError {
	return &ClinicError{Type: ErrorTypeNotFound, Code: code, Message: message}
}

// NewTransientError creates a transient error. The outcome of the triggering
// write is unknown; callers must not assume it failed.
func NewTransientError(code, message string, cause error) *ClinicError {
	return &ClinicError{Type: ErrorTypeTransient, Code: code, Message: message, Cause: cause}
}

// NewInternalError creates an internal error wrapping its cause.
func NewInternalError(code, message string, cause error) *ClinicError {
	return &ClinicError{Type: ErrorTypeInternal, Code: code, Message: message, Cause: cause}
}

// TypeOf reports the error type of err, or ErrorTypeInternal for plain errors.
func TypeOf(err error) ErrorType {
	var ce *ClinicError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrorTypeInternal
}

// Common error codes.
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeSlotTaken    = "SLOT_TAKEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeUnavailable  = "UNAVAILABLE"
	ErrCodeInternal     = "INTERNAL_ERROR"
)
