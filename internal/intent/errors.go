package intent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrorCode classifies engine failures for the result envelope
type ErrorCode string

const (
	ErrCodeValidation   ErrorCode = "ValidationError"
	ErrCodeMalicious    ErrorCode = "MaliciousInput"
	ErrCodeNotFound     ErrorCode = "NotFound"
	ErrCodeDatabase     ErrorCode = "DatabaseError"
	ErrCodeTimeout      ErrorCode = "Timeout"
	ErrCodeUnauthorized ErrorCode = "Unauthorized"
	ErrCodeForbidden    ErrorCode = "Forbidden"
	ErrCodeInternal     ErrorCode = "InternalError"
)

// Error is the engine's typed error. Details carries the full list of field
// violations for validation failures so callers get everything in one round
// trip.
type Error struct {
	Code    ErrorCode
	Message string
	Details interface{}
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a ValidationError with optional details
func NewValidationError(message string, details interface{}) *Error {
	return &Error{Code: ErrCodeValidation, Message: message, Details: details}
}

// NewMaliciousInputError creates a MaliciousInput error. The offending value
// is never echoed back; only the pattern that tripped the check is named.
func NewMaliciousInputError(pattern string) *Error {
	return &Error{
		Code:    ErrCodeMalicious,
		Message: fmt.Sprintf("input rejected: %s detected", pattern),
	}
}

// NewNotFoundError creates a NotFound error for id-targeted operations
func NewNotFoundError(message string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: message}
}

// Classify maps an arbitrary error from a handler or the store into a typed
// engine error. Typed engine errors pass through unchanged; store and context
// errors are bucketed by kind.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{
			Code:    ErrCodeTimeout,
			Message: "operation timed out",
			Cause:   err,
		}
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return &Error{
			Code:    ErrCodeNotFound,
			Message: "no matching record found",
			Cause:   err,
		}
	}

	errStr := err.Error()

	// Driver timeouts surface as plain strings depending on topology
	if mongo.IsTimeout(err) ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return &Error{
			Code:    ErrCodeTimeout,
			Message: "record store timed out",
			Cause:   err,
		}
	}

	if mongo.IsNetworkError(err) ||
		strings.Contains(errStr, "server selection error") ||
		strings.Contains(errStr, "connection refused") {
		return &Error{
			Code:    ErrCodeDatabase,
			Message: "record store unavailable",
			Cause:   err,
		}
	}

	var writeErr mongo.WriteException
	var cmdErr mongo.CommandError
	if errors.As(err, &writeErr) || errors.As(err, &cmdErr) {
		return &Error{
			Code:    ErrCodeDatabase,
			Message: "record store operation failed",
			Cause:   err,
		}
	}

	return &Error{
		Code:    ErrCodeInternal,
		Message: truncateString(errStr, 200),
		Cause:   err,
	}
}

// truncateString truncates a string to at most maxLen bytes without
// splitting a multibyte rune
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:runeBoundaryBefore(s, maxLen)] + "..."
}
