// Package errors provides the unified error type for the transcription
// pipeline. Errors carry a machine-readable code, a human-readable message
// with a remediation hint where one exists, and a recoverable flag that the
// fallback chain consults.
package errors

import (
	"errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code Code `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Recoverable indicates a lower-preference strategy may absorb this error.
	Recoverable bool `json:"recoverable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic recoverable detection.
func New(code Code, message string) *AppError {
	return &AppError{
		Code:        code,
		Message:     message,
		Recoverable: IsRecoverableCode(code),
	}
}

// CodeOf extracts the error code from err, or CodeInternal when err is not
// an AppError.
func CodeOf(err error) Code {
	var app *AppError
	if errors.As(err, &app) {
		return app.Code
	}
	return CodeInternal
}

// IsRecoverable reports whether err may be absorbed by a fallback strategy.
// Non-AppError values are never recoverable.
func IsRecoverable(err error) bool {
	var app *AppError
	if errors.As(err, &app) {
		return app.Recoverable
	}
	return false
}

// --- Common Error Constructors ---

// CollaboratorUnavailable creates an error for an unreachable external tool
// or service.
func CollaboratorUnavailable(name string, cause error) *AppError {
	return &AppError{
		Code:        CodeCollaboratorUnavailable,
		Message:     fmt.Sprintf("%s is unavailable. Verify it is installed and reachable.", name),
		Recoverable: true,
		Details:     map[string]any{"collaborator": name},
		Cause:       cause,
	}
}

// CredentialMissing creates an error for an absent API key. The message names
// the command that stores one.
func CredentialMissing(provider string) *AppError {
	return &AppError{
		Code:        CodeCredentialMissing,
		Message:     fmt.Sprintf("No API key stored for provider %q. Set one with: tubemd key set %s", provider, provider),
		Recoverable: false,
		Details:     map[string]any{"provider": provider},
	}
}

// FormattingTransport creates an error for a failed LLM formatting request.
func FormattingTransport(provider string, cause error) *AppError {
	return &AppError{
		Code:        CodeFormattingTransport,
		Message:     fmt.Sprintf("Formatting request to %s failed.", provider),
		Recoverable: true,
		Details:     map[string]any{"provider": provider},
		Cause:       cause,
	}
}

// ModelNotInstalled creates an error for a model absent from the local
// inference service.
func ModelNotInstalled(model string) *AppError {
	return &AppError{
		Code:        CodeModelNotInstalled,
		Message:     fmt.Sprintf("Model %q is not installed. Pull it with: tubemd model pull %s", model, model),
		Recoverable: false,
		Details:     map[string]any{"model": model},
	}
}

// NotFound creates an error for a missing resource.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code:        CodeNotFound,
		Message:     fmt.Sprintf("The requested %s was not found.", resource),
		Recoverable: false,
		Details:     details,
	}
}

// InvalidInput creates an error for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code:        CodeInvalidInput,
		Message:     fmt.Sprintf("Invalid input: %s", reason),
		Recoverable: false,
		Details:     details,
	}
}

// Timeout creates an error for an operation that exceeded its time bound.
func Timeout(operation string) *AppError {
	return &AppError{
		Code:        CodeTimeout,
		Message:     fmt.Sprintf("Operation %q took too long.", operation),
		Recoverable: true,
		Details:     map[string]any{"operation": operation},
	}
}

// Internal creates an error for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:        CodeInternal,
		Message:     "An unexpected error occurred.",
		Recoverable: false,
		Cause:       cause,
	}
}
