// internal/common/errors/errors.go

// Package errors provides the standardized error taxonomy for the query
// service. The set of codes is closed: everything crossing the API boundary
// maps to exactly one of them.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized external error codes.
type ErrorCode string

const (
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeUnknownIntent   ErrorCode = "UNKNOWN_INTENT"
	ErrCodeAmbiguousEntity ErrorCode = "AMBIGUOUS_ENTITY"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabase        ErrorCode = "DATABASE_ERROR"
	ErrCodeLLM             ErrorCode = "LLM_ERROR"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// AppError is a structured application error. Message is safe to return to
// any caller; Details is operator-only and log material.
type AppError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("AppError[%s]: %s", e.Code, e.Message)
}

// ==========================
// Constructors
// ==========================

// NewUnauthorizedError marks an identity the store does not know.
func NewUnauthorizedError(details string) *AppError {
	return &AppError{
		Code:      ErrCodeUnauthorized,
		Message:   "Identity is not registered.",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownIntentError covers both the unknown sentinel and a missing template.
func NewUnknownIntentError(message string) *AppError {
	return &AppError{
		Code:      ErrCodeUnknownIntent,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAmbiguousEntityError covers missing required entities, including the
// needs-enumeration fallback; the two are distinguished by message payload.
func NewAmbiguousEntityError(message string) *AppError {
	return &AppError{
		Code:      ErrCodeAmbiguousEntity,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError creates a non-retryable parameter validation error.
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:      ErrCodeValidation,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseError creates a retryable data-layer error. The underlying
// failure goes into Details, never into Message.
func NewDatabaseError(err error) *AppError {
	return &AppError{
		Code:      ErrCodeDatabase,
		Message:   "Data lookup failed. Please try again.",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMError creates a retryable upstream language-model error.
func NewLLMError(err error) *AppError {
	return &AppError{
		Code:      ErrCodeLLM,
		Message:   "Assistant is temporarily unavailable.",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure with a generic message.
func NewInternalError(err error) *AppError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &AppError{
		Code:      ErrCodeInternal,
		Message:   "An internal error occurred.",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// Utility Functions
// ==========================

// HTTPStatus maps an error code to its transport status.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeUnknownIntent, ErrCodeAmbiguousEntity, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeDatabase, ErrCodeLLM:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AsAppError normalizes any error to an *AppError, defaulting to INTERNAL_ERROR.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	if app, ok := err.(*AppError); ok {
		return app
	}
	return NewInternalError(err)
}
