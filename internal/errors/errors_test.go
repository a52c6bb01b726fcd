package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfscopeError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("original error")

	// When: wrapping with ConfscopeError
	ce := New(ErrCodeFileNotFound, "file not found: settings.json", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, ce)
	assert.Equal(t, originalErr, errors.Unwrap(ce))
	assert.True(t, errors.Is(ce, originalErr))
}

func TestConfscopeError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigNotFound,
			message:  "config file not found",
			expected: "[ERR_101_CONFIG_NOT_FOUND] config file not found",
		},
		{
			name:     "watch error",
			code:     ErrCodeWatchFailed,
			message:  "cannot watch /tmp/x",
			expected: "[ERR_204_WATCH_FAILED] cannot watch /tmp/x",
		},
		{
			name:     "scan error",
			code:     ErrCodeScanFailed,
			message:  "scanner panicked",
			expected: "[ERR_502_SCAN_FAILED] scanner panicked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestConfscopeError_Is_MatchesByCode(t *testing.T) {
	// Given: two errors with same code
	err1 := New(ErrCodeFileNotFound, "file A not found", nil)
	err2 := New(ErrCodeFileNotFound, "file B not found", nil)

	// Then: they match by code
	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, New(ErrCodeConfigNotFound, "", nil)))
}

func TestConfscopeError_WithDetails_AddsContext(t *testing.T) {
	err := New(ErrCodeFileNotFound, "file not found", nil).
		WithDetail("path", "/foo/settings.json").
		WithDetail("scope", "project")

	assert.Equal(t, "/foo/settings.json", err.Details["path"])
	assert.Equal(t, "project", err.Details["scope"])
}

func TestConfscopeError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeConfigNotFound, CategoryConfig},
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeFileNotFound, CategoryIO},
		{ErrCodeWatchFailed, CategoryIO},
		{ErrCodeInvalidPath, CategoryValidation},
		{ErrCodeUnknownSurface, CategoryValidation},
		{ErrCodeInternal, CategoryInternal},
		{ErrCodeScanFailed, CategoryInternal},
		{"short", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
		})
	}
}

func TestConfscopeError_SeverityFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantSeverity Severity
	}{
		{ErrCodeScanFailed, SeverityFatal},
		{ErrCodeWatchDegraded, SeverityWarning},
		{ErrCodeDiscoveryFailed, SeverityWarning},
		{ErrCodeFileNotFound, SeverityError},
		{ErrCodeConfigInvalid, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantSeverity, err.Severity)
		})
	}
}

func TestWrap_CreatesConfscopeErrorFromError(t *testing.T) {
	originalErr := errors.New("something went wrong")

	ce := Wrap(ErrCodeInternal, originalErr)

	require.NotNil(t, ce)
	assert.Equal(t, ErrCodeInternal, ce.Code)
	assert.Equal(t, "something went wrong", ce.Message)
	assert.Equal(t, originalErr, ce.Cause)
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestAs_FindsErrorThroughFmtWrapping(t *testing.T) {
	// Given: a ConfscopeError wrapped by fmt.Errorf
	inner := New(ErrCodeScanFailed, "scanner panicked", nil)
	wrapped := fmt.Errorf("scan /work/proj: %w", inner)

	// When: extracting
	got, ok := As(wrapped)

	// Then: the inner error is found and helpers see through the chain
	require.True(t, ok)
	assert.Same(t, inner, got)
	assert.Equal(t, ErrCodeScanFailed, GetCode(wrapped))
	assert.Equal(t, CategoryInternal, got.Category)
	assert.True(t, IsFatal(wrapped))
}

func TestHelpers_PlainError(t *testing.T) {
	err := errors.New("plain")

	assert.Empty(t, GetCode(err))
	assert.False(t, IsFatal(err))
	assert.False(t, IsFatal(nil))
}

func TestConstructors_AssignCodes(t *testing.T) {
	assert.Equal(t, ErrCodeConfigInvalid, ConfigError("bad", nil).Code)
	assert.Equal(t, ErrCodeFileNotFound, IOError("missing", nil).Code)
	assert.Equal(t, ErrCodeInvalidInput, ValidationError("bad input", nil).Code)
}
