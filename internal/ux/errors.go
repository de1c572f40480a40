package ux

import (
	"fmt"
	"strings"

	perrors "github.com/felixgeelhaar/smartplan/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\nSuggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds a suggestion to common operational failures. Planner
// errors already carry their own suggestions and are returned unchanged.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := perrors.As(err); ok {
		return err
	}

	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "address already in use"):
		return NewErrorWithSuggestion(err,
			"Another process is listening on that port. Pick a different one with --port or SMARTPLAN_SERVER_PORT")
	case strings.Contains(errMsg, "permission denied"):
		return NewErrorWithSuggestion(err,
			"Check file permissions, or use a port above 1024 when not running as root")
	case strings.Contains(errMsg, "no such file or directory"):
		return NewErrorWithSuggestion(err,
			"Check the path, or run 'smartplan config path' to see where configuration is read from")
	case strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no route to host"):
		return NewErrorWithSuggestion(err,
			"Check your network connection and the configured endpoint")
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
