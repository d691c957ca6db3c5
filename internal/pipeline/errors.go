package pipeline

import (
	"fmt"
)

// ErrorType classifies pipeline errors.
type ErrorType string

const (
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeParse        ErrorType = "parse"
	ErrorTypeOutput       ErrorType = "output"
	ErrorTypeThreshold    ErrorType = "threshold"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeCancellation ErrorType = "cancellation"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeFatal        ErrorType = "fatal"
)

// PipelineError is a stage-scoped error with a type and retry hint.
// Only retryable errors are re-attempted by the manager.
type PipelineError struct {
	Type      ErrorType      `json:"type"`
	Stage     string         `json:"stage,omitempty"`
	Message   string         `json:"message"`
	Cause     error          `json:"cause,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	Retryable bool           `json:"retryable"`
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e == nil {
		return "unknown pipeline error"
	}
	if e.Stage != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewNetworkError creates a transient network error
func NewNetworkError(stage string, cause error) *PipelineError {
	return &PipelineError{
		Type:      ErrorTypeNetwork,
		Stage:     stage,
		Message:   "network request failed",
		Cause:     cause,
		Retryable: true,
	}
}

// NewOutputError creates a per-format write error
func NewOutputError(stage, format string, cause error) *PipelineError {
	return &PipelineError{
		Type:    ErrorTypeOutput,
		Stage:   stage,
		Message: fmt.Sprintf("failed to write %s output", format),
		Cause:   cause,
		Context: map[string]any{
			"format": format,
		},
		Retryable: false,
	}
}

// NewTimeoutError creates a stage timeout error
func NewTimeoutError(stage string, timeout string) *PipelineError {
	return &PipelineError{
		Type:    ErrorTypeTimeout,
		Stage:   stage,
		Message: fmt.Sprintf("stage exceeded timeout of %s", timeout),
		Context: map[string]any{
			"timeout": timeout,
		},
		Retryable: true,
	}
}

// NewCancellationError creates a cancellation error
func NewCancellationError(stage string) *PipelineError {
	return &PipelineError{
		Type:      ErrorTypeCancellation,
		Stage:     stage,
		Message:   "run was cancelled",
		Retryable: false,
	}
}

// NewValidationError creates a validation error
func NewValidationError(stage, message string) *PipelineError {
	return &PipelineError{
		Type:      ErrorTypeValidation,
		Stage:     stage,
		Message:   message,
		Retryable: false,
	}
}

// NewFatalError creates a fatal error
func NewFatalError(message string, cause error) *PipelineError {
	return &PipelineError{
		Type:      ErrorTypeFatal,
		Message:   message,
		Cause:     cause,
		Retryable: false,
	}
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if pErr, ok := err.(*PipelineError); ok {
		return pErr.Retryable
	}
	return false
}

// GetErrorType returns the type of the error
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	if pErr, ok := err.(*PipelineError); ok {
		return pErr.Type
	}
	return ErrorTypeFatal
}

// WrapError wraps an error with stage context
func WrapError(err error, stage string, message string) *PipelineError {
	if err == nil {
		return nil
	}

	if pErr, ok := err.(*PipelineError); ok {
		if pErr.Stage == "" {
			pErr.Stage = stage
		}
		if message != "" {
			pErr.Message = fmt.Sprintf("%s: %s", message, pErr.Message)
		}
		return pErr
	}

	return &PipelineError{
		Type:      ErrorTypeFatal,
		Stage:     stage,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}
