// Package errors defines the structured error taxonomy shared by the
// conveyor engine and its adapters.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeValidation indicates a malformed hierarchy or request.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeDuplicateID indicates a child id already exists in its container.
	ErrCodeDuplicateID ErrorCode = "duplicate_id"
	// ErrCodeMissingInput indicates a task required a stage input that no
	// earlier task produced.
	ErrCodeMissingInput ErrorCode = "missing_input"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeExecution indicates a unit of work failed after exhausting retries.
	ErrCodeExecution ErrorCode = "execution"
	// ErrCodeCanceled indicates cooperative cancellation was observed.
	ErrCodeCanceled ErrorCode = "canceled"
	// ErrCodePersistence indicates a progress or result snapshot could not be
	// saved. Persistence errors are logged and never fail a run.
	ErrCodePersistence ErrorCode = "persistence"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError represents a structured application error with a code, message, and
// optional cause. It supports error wrapping and unwrapping for use with
// errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// Validationf creates a new Validation error with formatted message.
func Validationf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
	}
}

// DuplicateID creates a new DuplicateID error for a child id that already
// exists in its container.
func DuplicateID(containerKind, id string) *AppError {
	return &AppError{
		Code:    ErrCodeDuplicateID,
		Message: fmt.Sprintf("%s already contains child with id %s", containerKind, id),
	}
}

// MissingInput creates a new MissingInput error for required stage inputs
// that no earlier task produced.
func MissingInput(taskName, taskID string, keys []string) *AppError {
	return &AppError{
		Code: ErrCodeMissingInput,
		Message: fmt.Sprintf("task %s (%s) requires inputs not produced by earlier tasks: %s",
			taskName, taskID, strings.Join(keys, ", ")),
	}
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: message,
	}
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf(format, args...),
	}
}

// Execution creates a new Execution error.
func Execution(message string) *AppError {
	return &AppError{
		Code:    ErrCodeExecution,
		Message: message,
	}
}

// Executionf creates a new Execution error with formatted message.
func Executionf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeExecution,
		Message: fmt.Sprintf(format, args...),
	}
}

// Canceled creates a new Canceled error.
func Canceled(message string) *AppError {
	return &AppError{
		Code:    ErrCodeCanceled,
		Message: message,
	}
}

// Persistence creates a new Persistence error.
func Persistence(message string) *AppError {
	return &AppError{
		Code:    ErrCodePersistence,
		Message: message,
	}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
	}
}

// Internalf creates a new Internal error with formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsDuplicateID checks if an error is a DuplicateID error.
func IsDuplicateID(err error) bool {
	return isCode(err, ErrCodeDuplicateID)
}

// IsMissingInput checks if an error is a MissingInput error.
func IsMissingInput(err error) bool {
	return isCode(err, ErrCodeMissingInput)
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsExecution checks if an error is an Execution error.
func IsExecution(err error) bool {
	return isCode(err, ErrCodeExecution)
}

// IsCanceled checks if an error is a Canceled error.
func IsCanceled(err error) bool {
	return isCode(err, ErrCodeCanceled)
}

// IsPersistence checks if an error is a Persistence error.
func IsPersistence(err error) bool {
	return isCode(err, ErrCodePersistence)
}

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool {
	return isCode(err, ErrCodeInternal)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError
// or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
