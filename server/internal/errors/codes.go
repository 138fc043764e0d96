package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for routing operations.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeConversationNotFound indicates the conversation does not exist.
	ErrCodeConversationNotFound ErrorCode = "CONVERSATION_NOT_FOUND"
	// ErrCodeConversationClosed indicates the conversation is already closed.
	ErrCodeConversationClosed ErrorCode = "CONVERSATION_CLOSED"
	// ErrCodeUnknownStaff indicates the staff member has no presence record.
	ErrCodeUnknownStaff ErrorCode = "UNKNOWN_STAFF"
	// ErrCodeInvalidTransition indicates a state change the lifecycle does not allow.
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	// ErrCodeRateLimitExceeded indicates the per-conversation message budget ran out.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeClassifierUnavailable indicates the AI classifier is not usable.
	ErrCodeClassifierUnavailable ErrorCode = "CLASSIFIER_UNAVAILABLE"
	// ErrCodeStorageUnavailable indicates the persistence layer failed.
	ErrCodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// RoutingError represents a structured error for routing operations.
type RoutingError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RoutingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RoutingError) Unwrap() error {
	return e.Cause
}

// GetCode returns the error code.
func (e *RoutingError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *RoutingError {
	return &RoutingError{Code: ErrCodeInvalidArgument, Message: msg}
}

// ConversationNotFound creates a conversation not found error.
func ConversationNotFound(conversationID string) *RoutingError {
	return &RoutingError{
		Code:    ErrCodeConversationNotFound,
		Message: fmt.Sprintf("conversation not found: %s", conversationID),
	}
}

// ConversationClosed creates a conversation closed error.
func ConversationClosed(conversationID string) *RoutingError {
	return &RoutingError{
		Code:    ErrCodeConversationClosed,
		Message: fmt.Sprintf("conversation already closed: %s", conversationID),
	}
}

// UnknownStaff creates an unknown staff error.
func UnknownStaff(staffID string) *RoutingError {
	return &RoutingError{
		Code:    ErrCodeUnknownStaff,
		Message: fmt.Sprintf("no presence record for staff: %s", staffID),
	}
}

// InvalidTransition creates an invalid transition error.
func InvalidTransition(msg string) *RoutingError {
	return &RoutingError{Code: ErrCodeInvalidTransition, Message: msg}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *RoutingError {
	return &RoutingError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// ClassifierUnavailable creates a classifier unavailable error.
func ClassifierUnavailable(msg string, cause error) *RoutingError {
	return &RoutingError{Code: ErrCodeClassifierUnavailable, Message: msg, Cause: cause}
}

// StorageUnavailable creates a storage unavailable error.
func StorageUnavailable(msg string, cause error) *RoutingError {
	return &RoutingError{Code: ErrCodeStorageUnavailable, Message: msg, Cause: cause}
}

// Timeout creates a timeout error.
func Timeout(msg string, cause error) *RoutingError {
	return &RoutingError{Code: ErrCodeTimeout, Message: msg, Cause: cause}
}
