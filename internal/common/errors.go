package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound = errors.New("resource not found")
	ErrConfig   = errors.New("invalid configuration")
	ErrUnusable = errors.New("unusable result")
	ErrTimeout  = errors.New("operation timed out")
	ErrService  = errors.New("service error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ServiceError builds a transport/service error carrying the HTTP status and
// the service's own message.
func ServiceError(status int, message string) error {
	return NewAppError("SERVICE_ERROR", fmt.Sprintf("status %d: %s", status, message), ErrService)
}
