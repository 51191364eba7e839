package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeValidation indicates invalid input data. It never reaches the store.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeStore indicates a remote read or write failed.
	ErrCodeStore ErrorCode = "store"
	// ErrCodeAuth indicates the auth collaborator rejected or failed a request.
	ErrCodeAuth ErrorCode = "auth"
	// ErrCodeUnauthorized indicates the caller has no valid session.
	ErrCodeUnauthorized ErrorCode = "unauthorized"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates the request collides with current state
	// (duplicate keys, or another mutation in flight).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError carries a category and a message safe to show users. Cause keeps
// the underlying error for logs and errors.Is; Field names the offending form
// field on validation errors.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Field   string
}

func (e *AppError) Error() string {
	if e == nil {
		return string(ErrCodeInternal)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Store wraps a remote read/write failure.
func Store(err error, message string) *AppError {
	return Wrap(err, ErrCodeStore, message)
}

// Auth wraps a failure reported by the auth collaborator.
func Auth(err error, message string) *AppError {
	return Wrap(err, ErrCodeAuth, message)
}

// Unauthorized creates a new Unauthorized error.
func Unauthorized(message string) *AppError {
	return &AppError{Code: ErrCodeUnauthorized, Message: message}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// EnsureCode returns err unchanged when it already carries an AppError code;
// otherwise it wraps err with code and message.
func EnsureCode(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	if GetCode(err) != "" {
		return err
	}
	return Wrap(err, code, message)
}

func isCode(err error, code ErrorCode) bool { return GetCode(err) == code }

// Predicates match the code of the outermost AppError in err's chain.

func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

func IsConflict(err error) bool { return isCode(err, ErrCodeConflict) }

func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsStore checks if an error is a Store error, including store timeouts and cancellations.
func IsStore(err error) bool {
	return isCode(err, ErrCodeStore) || isCode(err, ErrCodeTimeout) || isCode(err, ErrCodeCanceled)
}

func IsAuth(err error) bool { return isCode(err, ErrCodeAuth) }

func IsUnauthorized(err error) bool { return isCode(err, ErrCodeUnauthorized) }

func IsTimeout(err error) bool { return isCode(err, ErrCodeTimeout) }

// GetCode returns the code of the outermost AppError, or "".
func GetCode(err error) ErrorCode {
	if appErr := asAppError(err); appErr != nil {
		return appErr.Code
	}
	return ""
}

// GetField returns the offending form field, or "".
func GetField(err error) string {
	if appErr := asAppError(err); appErr != nil {
		return appErr.Field
	}
	return ""
}

// GetMessage returns the user-facing Message of the outermost AppError, or fallback.
func GetMessage(err error, fallback string) string {
	if appErr := asAppError(err); appErr != nil && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

// asAppError returns the outermost AppError in err's chain. A typed-nil
// *AppError stored in an error interface yields nil.
func asAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
