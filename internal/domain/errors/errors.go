// Package errors defines the application error taxonomy. Every failure the
// service surfaces maps to one AppError with a stable machine-readable code.
package errors

import (
	"net/http"

	"enroll/internal/errors"
)

// AppError defines the interface for application-specific errors.
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Stable machine-readable error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface.
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error.
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message.
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code.
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the machine-readable error code.
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message.
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information.
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails returns a copy of the error carrying detailed information.
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error values. Codes are part of the public API contract and
// must stay stable; callers branch on them.
var (
	// Validation errors: bad input, rejected before any side effect.
	ErrPasswordMismatch = NewBaseError(
		http.StatusBadRequest,
		"password_mismatch",
		"password and confirmation do not match",
		"",
	)

	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"validation_failed",
		"request validation failed",
		"",
	)

	ErrInvalidCountry = NewBaseError(
		http.StatusBadRequest,
		"invalid_country",
		"address references an unknown country",
		"",
	)

	ErrInvalidRole = NewBaseError(
		http.StatusBadRequest,
		"invalid_role",
		"requested role is not known to the identity provider",
		"",
	)

	// Conflict errors: the email is already registered in either store.
	ErrEmailExists = NewBaseError(
		http.StatusConflict,
		"email_exists",
		"an account with this email is already registered",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		"conflict",
		"resource conflict",
		"",
	)

	// Authentication errors.
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"invalid_credentials",
		"invalid email or password",
		"",
	)

	ErrInvalidToken = NewBaseError(
		http.StatusUnauthorized,
		"invalid_token",
		"invalid or expired token",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"forbidden",
		"access denied",
		"",
	)

	// Not-found errors.
	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"user_not_found",
		"user profile not found",
		"",
	)

	ErrAccountNotFound = NewBaseError(
		http.StatusNotFound,
		"account_not_found",
		"identity account not found",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"not_found",
		"resource not found",
		"",
	)

	// Dependency errors: the identity provider or the profile store was
	// unreachable or timed out. Retryable by the caller, never retried here.
	ErrProviderUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"provider_unavailable",
		"identity provider is unavailable",
		"",
	)

	ErrStoreUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"store_unavailable",
		"profile store is unavailable",
		"",
	)

	// Saga outcomes. partial_failure means a forward step failed after an
	// earlier step committed and compensation ran; compensation_incomplete
	// means the compensating call itself failed and an orphan record needs
	// out-of-band reconciliation.
	ErrPartialFailure = NewBaseError(
		http.StatusBadGateway,
		"partial_failure",
		"registration could not be completed and was rolled back",
		"",
	)

	ErrCompensationIncomplete = NewBaseError(
		http.StatusInternalServerError,
		"compensation_incomplete",
		"registration failed and cleanup did not fully complete",
		"",
	)

	// General errors.
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"internal_error",
		"internal server error",
		"",
	)
)

// DatabaseExecuteError represents a profile-store execution error,
// implementing the AppError interface.
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error.
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface.
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code.
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the machine-readable error code.
func (e *DatabaseExecuteError) ErrorCode() string {
	return "database_error"
}

// Message returns the user-friendly error message.
func (e *DatabaseExecuteError) Message() string {
	return "profile store execution failed"
}

// Details returns detailed error information.
func (e *DatabaseExecuteError) Details() string {
	return e.details
}

// Unwrap exposes the wrapped database error.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}
