package classifier

import (
	"errors"
	"fmt"
)

// ErrorCode identifies why a classification call failed.
type ErrorCode string

const (
	// ErrCodeNotConfigured indicates no API key or endpoint is configured.
	ErrCodeNotConfigured ErrorCode = "NOT_CONFIGURED"
	// ErrCodeUnreachable indicates the endpoint could not be reached.
	ErrCodeUnreachable ErrorCode = "UNREACHABLE"
	// ErrCodeTimeout indicates the call exceeded its bounded timeout.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeMalformedResponse indicates the endpoint returned an unparsable document.
	ErrCodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
)

// Error is a structured classifier failure.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether retrying the call can possibly succeed.
// Malformed responses and missing configuration are not transient.
func (e *Error) Retryable() bool {
	return e.Code == ErrCodeUnreachable || e.Code == ErrCodeTimeout
}

// AsError unwraps err into a classifier *Error if it carries one.
func AsError(err error) (*Error, bool) {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr, true
	}
	return nil, false
}

// NotConfigured creates a not-configured error.
func NotConfigured(msg string) *Error {
	return &Error{Code: ErrCodeNotConfigured, Message: msg}
}

// Unreachable creates an unreachable error.
func Unreachable(msg string, cause error) *Error {
	return &Error{Code: ErrCodeUnreachable, Message: msg, Cause: cause}
}

// Timeout creates a timeout error.
func Timeout(msg string, cause error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: msg, Cause: cause}
}

// MalformedResponse creates a malformed-response error.
func MalformedResponse(msg string, cause error) *Error {
	return &Error{Code: ErrCodeMalformedResponse, Message: msg, Cause: cause}
}
