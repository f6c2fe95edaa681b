package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
// while resolving a request.
type ErrorType string

const (
	ErrorTypeNetwork           ErrorType = "network"
	ErrorTypeTimeout           ErrorType = "timeout"
	ErrorTypeTransfer          ErrorType = "transfer"
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeServerError       ErrorType = "server_error"
	ErrorTypeHTTPStatus        ErrorType = "http_status"
	ErrorTypeMethodUnsupported ErrorType = "method_unsupported"
	ErrorTypeConfiguration     ErrorType = "configuration"
	ErrorTypeUnknown           ErrorType = "unknown"
)

// Error represents a pipeline error with type information.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	URL     string
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error.
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Newf creates a typed error with a formatted message.
func Newf(errorType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a typed error wrapping a cause.
func Wrap(errorType ErrorType, err error, message string) *Error {
	return &Error{Type: errorType, Message: message, Err: err}
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err carries the given error type.
func IsType(err error, errorType ErrorType) bool {
	return TypeOf(err) == errorType
}

// IsRetryable checks if an error type should be retried.
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeTimeout, ErrorTypeTransfer, ErrorTypeServerError:
		return true
	case ErrorTypeNotFound, ErrorTypeMethodUnsupported, ErrorTypeConfiguration, ErrorTypeHTTPStatus:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a
// retryable response. 404 is retried only when retryOn404 is set, for
// pages known to exist that intermittently vanish.
func IsRetryableStatusCode(statusCode int, retryOn404 bool) bool {
	switch {
	case statusCode == 0: // network error, no response
		return true
	case statusCode == 404:
		return retryOn404
	case statusCode >= 400:
		return true
	default:
		return false
	}
}
