package errors

import (
	"fmt"
)

// ConfscopeError is the structured error type for confscope.
// It provides rich context for error handling, logging, and user presentation.
type ConfscopeError struct {
	// Code is the unique error code (e.g., "ERR_102_CONFIG_INVALID").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *ConfscopeError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ConfscopeError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with ConfscopeError.
func (e *ConfscopeError) Is(target error) bool {
	if t, ok := target.(*ConfscopeError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *ConfscopeError) WithDetail(key, value string) *ConfscopeError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *ConfscopeError) WithSuggestion(suggestion string) *ConfscopeError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ConfscopeError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *ConfscopeError {
	return &ConfscopeError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a ConfscopeError from an existing error.
// The error's message becomes the ConfscopeError message.
func Wrap(code string, err error) *ConfscopeError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *ConfscopeError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *ConfscopeError {
	return New(ErrCodeFileNotFound, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *ConfscopeError {
	return New(ErrCodeInvalidInput, message, cause)
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	if ce, ok := As(err); ok {
		return ce.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a ConfscopeError anywhere in the
// chain. Returns empty string if there is none.
func GetCode(err error) string {
	if ce, ok := As(err); ok {
		return ce.Code
	}
	return ""
}

// As finds the first ConfscopeError in err's chain.
func As(err error) (*ConfscopeError, bool) {
	for err != nil {
		if ce, ok := err.(*ConfscopeError); ok {
			return ce, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
