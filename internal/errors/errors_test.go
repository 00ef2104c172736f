package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "simple error",
			err: &Error{
				Type:    ConfigInvalid,
				Message: "Configuration is invalid",
			},
			contains: []string{"Configuration is invalid"},
		},
		{
			name: "error with details",
			err: &Error{
				Type:    ManifestInvalid,
				Message: "Manifest is invalid",
				Details: "Missing required field: projects",
			},
			contains: []string{"Manifest is invalid", "Details: Missing required field: projects"},
		},
		{
			name: "error with suggestions",
			err: &Error{
				Type:        ConfigInvalid,
				Message:     "Configuration is invalid",
				Suggestions: []string{"Check syntax", "Verify required fields"},
			},
			contains: []string{"Configuration is invalid", "Suggestions:", "Check syntax", "Verify required fields"},
		},
		{
			name: "comprehensive error",
			err: &Error{
				Type:        WestFailure,
				Message:     "west command failed",
				Details:     "Command not found: west",
				Suggestions: []string{"Install west", "Check PATH"},
			},
			contains: []string{
				"west command failed",
				"Details: Command not found: west",
				"Suggestions:",
				"Install west",
				"Check PATH",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("Expected message to contain %q, got:\n%s", want, msg)
				}
			}
		})
	}
}

func TestWrap_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := Wrap(cause, GitFailure, "git command failed")

	if err.Type != GitFailure {
		t.Errorf("Expected type %q, got %q", GitFailure, err.Type)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the wrapped cause")
	}
}

func TestIsType(t *testing.T) {
	err := New(SelectionCancelled, "selection cancelled")

	if !IsType(err, SelectionCancelled) {
		t.Error("Expected IsType to match SelectionCancelled")
	}
	if IsType(err, WestFailure) {
		t.Error("Expected IsType not to match WestFailure")
	}
	if IsType(fmt.Errorf("plain"), SelectionCancelled) {
		t.Error("Expected IsType to be false for non-structured errors")
	}
}

func TestGetType(t *testing.T) {
	if got := GetType(New(HomeNotSet, "no home")); got != HomeNotSet {
		t.Errorf("Expected %q, got %q", HomeNotSet, got)
	}
	if got := GetType(fmt.Errorf("plain")); got != InternalError {
		t.Errorf("Expected %q for plain errors, got %q", InternalError, got)
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		wantType ErrorType
	}{
		{"home not set", HomeNotSetError(), HomeNotSet},
		{"home missing", HomeMissingError("/tmp/nope"), HomeMissing},
		{"repo not found", RepoNotFoundError("/tmp/nope"), RepoNotFound},
		{"keyboard not found", KeyboardNotFoundError("corne"), HardwareNotFound},
		{"controller not found", ControllerNotFoundError("nice_nano"), HardwareNotFound},
		{"incompatible", IncompatibleError("corne", "dev_board"), Incompatible},
		{"west failure", WestError(fmt.Errorf("exit 1"), []string{"update"}), WestFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.wantType {
				t.Errorf("Expected type %q, got %q", tt.wantType, tt.err.Type)
			}
			if tt.err.Message == "" {
				t.Error("Expected a non-empty message")
			}
		})
	}
}
