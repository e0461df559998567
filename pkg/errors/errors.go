package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeConflict   ErrorType = "CONFLICT"

	// Hierarchy engine errors
	ErrorTypeMalformedNode  ErrorType = "MALFORMED_NODE"
	ErrorTypeStaleReference ErrorType = "STALE_REFERENCE"
	ErrorTypeRemoteFailure  ErrorType = "REMOTE_FAILURE"
	ErrorTypeCursorDesync   ErrorType = "CURSOR_DESYNC"

	// Application errors
	ErrorTypeInternal    ErrorType = "INTERNAL"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"

	// Infrastructure errors
	ErrorTypeDatabase ErrorType = "DATABASE"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return sb.String()
}

// Constructor functions for common error types

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		StackTrace: captureStackTrace(),
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewMalformedNodeError reports a raw node that cannot be normalized.
// location is the index path of the offending node, e.g. "[2].subBanks[0]".
func NewMalformedNodeError(location, reason string) *AppError {
	return &AppError{
		Type:       ErrorTypeMalformedNode,
		Message:    fmt.Sprintf("malformed bank at %s: %s", location, reason),
		Details:    map[string]interface{}{"location": location},
		HTTPStatus: http.StatusBadGateway,
		StackTrace: captureStackTrace(),
	}
}

// NewStaleReferenceError reports a bank id that no longer resolves in the fetched forest
func NewStaleReferenceError(bankID string) *AppError {
	return &AppError{
		Type:       ErrorTypeStaleReference,
		Message:    fmt.Sprintf("bank '%s' is not present in the current hierarchy", bankID),
		Details:    map[string]interface{}{"bankID": bankID},
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewRemoteFailureError wraps a failure reported by the bank store transport.
// The cause is kept intact so callers can inspect it.
func NewRemoteFailureError(operation string, err error) *AppError {
	status := http.StatusBadGateway
	if appErr := GetAppError(err); appErr != nil && appErr.HTTPStatus != 0 {
		status = appErr.HTTPStatus
	}
	return &AppError{
		Type:       ErrorTypeRemoteFailure,
		Message:    fmt.Sprintf("remote operation '%s' failed", operation),
		Cause:      err,
		HTTPStatus: status,
		StackTrace: captureStackTrace(),
	}
}

// NewCursorDesyncError reports a breadcrumb trail that no longer walks the forest
func NewCursorDesyncError(bankID string) *AppError {
	return &AppError{
		Type:       ErrorTypeCursorDesync,
		Message:    fmt.Sprintf("breadcrumb '%s' no longer resolves", bankID),
		Details:    map[string]interface{}{"bankID": bankID},
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// NewUnavailableError creates a service unavailable error
func NewUnavailableError(service string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Message:    fmt.Sprintf("service '%s' is unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
		StackTrace: captureStackTrace(),
	}
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeDatabase,
		Message:    fmt.Sprintf("database operation '%s' failed", operation),
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// FromStatus rebuilds an AppError from a decoded error response.
// Used by clients that receive the ErrorResponse body over the wire.
func FromStatus(status int, errType, message string) *AppError {
	t := ErrorType(errType)
	if t == "" {
		t = statusToErrorType(status)
	}
	return &AppError{
		Type:       t,
		Message:    message,
		HTTPStatus: status,
	}
}

func statusToErrorType(status int) ErrorType {
	switch status {
	case http.StatusBadRequest:
		return ErrorTypeValidation
	case http.StatusNotFound:
		return ErrorTypeNotFound
	case http.StatusConflict:
		return ErrorTypeConflict
	case http.StatusServiceUnavailable:
		return ErrorTypeUnavailable
	default:
		return ErrorTypeInternal
	}
}

// Helper functions

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return IsType(err, ErrorTypeConflict)
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	return IsType(err, ErrorTypeInternal)
}

// IsMalformedNode checks if an error is a malformed node error
func IsMalformedNode(err error) bool {
	return IsType(err, ErrorTypeMalformedNode)
}

// IsStaleReference checks if an error is a stale reference error
func IsStaleReference(err error) bool {
	return IsType(err, ErrorTypeStaleReference)
}

// IsRemoteFailure checks if an error is a remote failure
func IsRemoteFailure(err error) bool {
	return IsType(err, ErrorTypeRemoteFailure)
}

// IsCursorDesync checks if an error is a cursor desync error
func IsCursorDesync(err error) bool {
	return IsType(err, ErrorTypeCursorDesync)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, add context to message
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}

	// Otherwise create a new internal error
	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
