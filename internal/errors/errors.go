package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a rumors error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrConflict         ErrorCode = "CONFLICT"          // 409
	ErrInvalidEvent     ErrorCode = "INVALID_EVENT"     // 422
	ErrInternal         ErrorCode = "INTERNAL"          // 500
	ErrGenerationFailed ErrorCode = "GENERATION_FAILED" // 502
)

// RumorError represents a structured error with code, status, and details.
type RumorError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *RumorError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *RumorError {
	return &RumorError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a theory cannot be found.
func NewNotFound(id string) *RumorError {
	return &RumorError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("theory not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewConflict creates a 409 error, e.g. for a duplicate theory id.
func NewConflict(msg string) *RumorError {
	return &RumorError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewInvalidEvent creates a 422 error for an analytics event kind outside the closed set.
func NewInvalidEvent(eventType string) *RumorError {
	return &RumorError{
		Code:    ErrInvalidEvent,
		Status:  422,
		Message: fmt.Sprintf("unknown analytics event type: %q", eventType),
		Details: map[string]any{"event_type": eventType},
	}
}

// NewGenerationFailed creates a 502 error when the text model fails or returns nothing.
func NewGenerationFailed(err error) *RumorError {
	msg := "no content generated"
	if err != nil {
		msg = err.Error()
	}
	return &RumorError{
		Code:    ErrGenerationFailed,
		Status:  502,
		Message: fmt.Sprintf("failed to generate theory: %s", msg),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *RumorError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &RumorError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a RumorError with the given code.
func Is(err error, code ErrorCode) bool {
	var rErr *RumorError
	if stderrors.As(err, &rErr) {
		return rErr.Code == code
	}
	return false
}

// As extracts a RumorError from err, wrapping anything else as INTERNAL.
func As(err error) *RumorError {
	var rErr *RumorError
	if stderrors.As(err, &rErr) {
		return rErr
	}
	return NewInternal(err)
}
