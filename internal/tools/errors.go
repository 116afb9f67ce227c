// Package tools error types for distinguishing bad input from execution
// failures.
package tools

import (
	"errors"
	"fmt"
)

// ValidationError indicates invalid input that won't succeed on retry.
// Examples: missing required argument, invalid argument type, malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// NewValidationErrorf creates a validation error with formatting.
func NewValidationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// UnsupportedToolError indicates a tool name the executor does not know.
// Unrecognized tools fail explicitly; they are never handed to the shell.
type UnsupportedToolError struct {
	Tool string
}

func (e *UnsupportedToolError) Error() string {
	return fmt.Sprintf("unsupported tool: %s", e.Tool)
}

// IsUnsupportedTool checks if an error is an unsupported-tool error.
func IsUnsupportedTool(err error) bool {
	var unsupportedErr *UnsupportedToolError
	return errors.As(err, &unsupportedErr)
}
