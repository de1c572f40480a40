package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Goal input errors (GOAL-001 to GOAL-099)
	ErrCodeGoalTooShort     ErrorCode = "GOAL-001"
	ErrCodeGoalHoursRange   ErrorCode = "GOAL-002"
	ErrCodeGoalMalformed    ErrorCode = "GOAL-003"
	ErrCodeGoalDomainLength ErrorCode = "GOAL-004"

	// Plan computation errors (PLAN-001 to PLAN-099)
	ErrCodePlanCyclicDep     ErrorCode = "PLAN-005"
	ErrCodePlanEmptyTemplate ErrorCode = "PLAN-006"
	ErrCodePlanInternal      ErrorCode = "PLAN-099"

	// Catalog errors (CATALOG-001 to CATALOG-099)
	ErrCodeCatalogUnreadable   ErrorCode = "CATALOG-001"
	ErrCodeCatalogSchema       ErrorCode = "CATALOG-002"
	ErrCodeCatalogInconsistent ErrorCode = "CATALOG-003"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
)

// PlannerError represents an enhanced error with code, suggestions, and documentation
type PlannerError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *PlannerError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *PlannerError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a PlannerError carrying the same code.
func (e *PlannerError) Is(target error) bool {
	t, ok := target.(*PlannerError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// IsValidation reports whether the error was caused by bad caller input.
func (e *PlannerError) IsValidation() bool {
	return strings.HasPrefix(string(e.Code), "GOAL-")
}

// New creates a new PlannerError
func New(code ErrorCode, message string) *PlannerError {
	return &PlannerError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new PlannerError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *PlannerError {
	return &PlannerError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *PlannerError) WithSuggestion(suggestion string) *PlannerError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *PlannerError) WithSuggestions(suggestions ...string) *PlannerError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *PlannerError) WithDocs(url string) *PlannerError {
	e.DocsURL = url
	return e
}

// As extracts a PlannerError from an error chain.
func As(err error) (*PlannerError, bool) {
	var pe *PlannerError
	if stderrors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// CodeOf returns the code of the first PlannerError in the chain, or "" if none.
func CodeOf(err error) ErrorCode {
	if pe, ok := As(err); ok {
		return pe.Code
	}
	return ""
}

// IsValidation reports whether any PlannerError in the chain is a validation error.
func IsValidation(err error) bool {
	pe, ok := As(err)
	return ok && pe.IsValidation()
}

const (
	docsGoalInput     = "https://github.com/felixgeelhaar/smartplan#goal-input"
	docsCatalog       = "https://github.com/felixgeelhaar/smartplan#template-catalog"
	docsConfiguration = "https://github.com/felixgeelhaar/smartplan#configuration"
)

// Common error constructors for frequently used errors

// NewGoalTooShortError creates a goal length validation error
func NewGoalTooShortError(minLength, got int) *PlannerError {
	return New(ErrCodeGoalTooShort, fmt.Sprintf("goal must be at least %d characters, got %d", minLength, got)).
		WithSuggestion("Describe the outcome you want in a short sentence, e.g. \"Launch a new mobile app\"").
		WithDocs(docsGoalInput)
}

// NewWorkingHoursError creates a working-hours range validation error
func NewWorkingHoursError(hours, min, max int) *PlannerError {
	return New(ErrCodeGoalHoursRange, fmt.Sprintf("working_hours_per_day must be between %d and %d, got %d", min, max, hours)).
		WithSuggestion("Use the number of hours you can dedicate per day").
		WithDocs(docsGoalInput)
}

// NewMalformedInputError creates an error for a body or field that cannot be decoded
func NewMalformedInputError(detail string, cause error) *PlannerError {
	return Wrap(ErrCodeGoalMalformed, fmt.Sprintf("malformed request: %s", detail), cause).
		WithSuggestion("Send a JSON object matching the GoalInput schema at /api/openapi.json").
		WithDocs(docsGoalInput)
}

// NewCyclicDependencyError creates a dependency cycle error
func NewCyclicDependencyError(path []string) *PlannerError {
	return New(ErrCodePlanCyclicDep, fmt.Sprintf("circular dependency detected: %s", strings.Join(path, " -> "))).
		WithSuggestion("Check depends_on entries in the template catalog")
}

// NewEmptyTemplateError creates an error for a category without steps
func NewEmptyTemplateError(category string) *PlannerError {
	return New(ErrCodePlanEmptyTemplate, fmt.Sprintf("template for category %q has no steps", category)).
		WithSuggestion("Add at least one step to the category in the template catalog")
}

// NewCatalogUnreadableError creates a catalog read/parse error
func NewCatalogUnreadableError(path string, cause error) *PlannerError {
	return Wrap(ErrCodeCatalogUnreadable, fmt.Sprintf("failed to read template catalog: %s", path), cause).
		WithSuggestions(
			"Check that catalog.path points to a readable YAML file",
			"Unset catalog.path to use the built-in catalog",
		).
		WithDocs(docsCatalog)
}

// NewCatalogSchemaError creates a catalog schema violation error
func NewCatalogSchemaError(issues []string) *PlannerError {
	return New(ErrCodeCatalogSchema, fmt.Sprintf("template catalog does not match schema: %s", strings.Join(issues, "; "))).
		WithSuggestion("Run 'smartplan templates --format yaml' to see a valid catalog").
		WithDocs(docsCatalog)
}

// NewCatalogInconsistentError creates a catalog cross-reference error
func NewCatalogInconsistentError(detail string) *PlannerError {
	return New(ErrCodeCatalogInconsistent, fmt.Sprintf("template catalog is inconsistent: %s", detail)).
		WithSuggestions(
			"Make every depends_on entry name a step key in the same category",
			"Give every step a unique key within its category",
		).
		WithDocs(docsCatalog)
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(detail string) *PlannerError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", detail)).
		WithSuggestion("Run 'smartplan config view' to inspect the effective configuration").
		WithDocs(docsConfiguration)
}
