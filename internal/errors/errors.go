// Package errors provides structured error handling with user-friendly messages.
package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors for better user experience.
type ErrorType string

const (
	// Configuration errors
	ConfigNotFound ErrorType = "config_not_found"
	ConfigInvalid  ErrorType = "config_invalid"
	HomeNotSet     ErrorType = "home_not_set"
	HomeMissing    ErrorType = "home_missing"

	// Repository errors
	RepoNotFound    ErrorType = "repo_not_found"
	ManifestInvalid ErrorType = "manifest_invalid"

	// Hardware errors
	HardwareNotFound ErrorType = "hardware_not_found"
	HardwareInvalid  ErrorType = "hardware_invalid"
	Incompatible     ErrorType = "incompatible"

	// Tool errors
	WestFailure ErrorType = "west_failure"
	GitFailure  ErrorType = "git_failure"
	ToolFailure ErrorType = "tool_failure"
	ToolTimeout ErrorType = "tool_timeout"

	// Interaction errors
	SelectionCancelled ErrorType = "selection_cancelled"
	NotInteractive     ErrorType = "not_interactive"

	// Validation errors
	ValidationFailed ErrorType = "validation_failed"

	// Internal errors
	InternalError ErrorType = "internal_error"
)

// Error represents a structured error with user-friendly messaging.
type Error struct {
	Type        ErrorType `json:"type"`
	Message     string    `json:"message"`
	Details     string    `json:"details,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Cause       error     `json:"-"`
}

func (e *Error) Error() string {
	var parts []string

	// Main error message
	parts = append(parts, e.Message)

	// Additional details if available
	if e.Details != "" {
		parts = append(parts, fmt.Sprintf("Details: %s", e.Details))
	}

	// Helpful suggestions
	if len(e.Suggestions) > 0 {
		parts = append(parts, fmt.Sprintf("Suggestions:\n  • %s", strings.Join(e.Suggestions, "\n  • ")))
	}

	return strings.Join(parts, "\n\n")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given type and message.
func New(errorType ErrorType, message string) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
	}
}

// Wrap creates a new Error that wraps an existing error.
func Wrap(err error, errorType ErrorType, message string) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   err,
	}
}

// WithDetails adds detailed information to an error.
func (e *Error) WithDetails(details string) *Error {
	e.Details = details
	return e
}

// WithSuggestion adds a helpful suggestion to an error.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple helpful suggestions to an error.
func (e *Error) WithSuggestions(suggestions []string) *Error {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// Common error constructors for frequently encountered issues

// HomeNotSetError creates an error for a missing home repo setting.
func HomeNotSetError() *Error {
	return New(HomeNotSet, "No config repository is registered").
		WithDetails("The current directory is not inside a config repo and user.home is not set").
		WithSuggestions([]string{
			"Run kbforge from inside a config repository",
			`Run "kbforge config user.home <path>" to register a repo`,
		})
}

// HomeMissingError creates an error for a home setting that points nowhere.
func HomeMissingError(path string) *Error {
	return New(HomeMissing, "The registered config repository no longer exists").
		WithDetails(fmt.Sprintf("user.home points to: %s", path)).
		WithSuggestions([]string{
			"Check whether the repository was moved or deleted",
			`Run "kbforge config user.home <path>" to update the setting`,
		})
}

// RepoNotFoundError creates an error for a path that is not a config repo.
func RepoNotFoundError(path string) *Error {
	return New(RepoNotFound, "Not a config repository").
		WithDetails(fmt.Sprintf("No config/west.yml or zephyr/module.yml found at: %s", path)).
		WithSuggestion("Check that the path points to a firmware config repository")
}

// KeyboardNotFoundError creates an error for an invalid keyboard ID.
func KeyboardNotFoundError(id string) *Error {
	return New(HardwareNotFound, fmt.Sprintf("Could not find a keyboard with ID %q", id)).
		WithSuggestion(`Run "kbforge keyboard list" to see the available hardware`)
}

// ControllerNotFoundError creates an error for an invalid controller board ID.
func ControllerNotFoundError(id string) *Error {
	return New(HardwareNotFound, fmt.Sprintf("Could not find a controller board with ID %q", id)).
		WithSuggestion(`Run "kbforge keyboard list --type controller" to see the available boards`)
}

// IncompatibleError creates an error for a keyboard/controller mismatch.
func IncompatibleError(keyboardID, controllerID string) *Error {
	return New(Incompatible, fmt.Sprintf("Keyboard %q is not compatible with controller %q", keyboardID, controllerID)).
		WithDetails("The controller does not expose all interconnects the shield requires")
}

// WestError creates an error for a failed west invocation.
func WestError(err error, args []string) *Error {
	return Wrap(err, WestFailure, "west command failed").
		WithDetails(fmt.Sprintf("Command: west %s", strings.Join(args, " "))).
		WithSuggestions([]string{
			"Check that west is installed and in your PATH",
			"Check the command output above for details",
		})
}

// ValidationError creates an error for validation failures.
func ValidationError(field string, value string, reason string) *Error {
	return New(ValidationFailed, fmt.Sprintf("Validation failed for '%s'", field)).
		WithDetails(fmt.Sprintf("Value '%s' is invalid: %s", value, reason))
}

// IsType checks if an error is of a specific Error type.
func IsType(err error, errorType ErrorType) bool {
	if kbErr, ok := err.(*Error); ok {
		return kbErr.Type == errorType
	}
	return false
}

// GetType returns the ErrorType of an Error, or InternalError for other errors.
func GetType(err error) ErrorType {
	if kbErr, ok := err.(*Error); ok {
		return kbErr.Type
	}
	return InternalError
}
