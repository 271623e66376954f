package util

import (
	"errors"
	"fmt"
	"strings"
)

// Common error types for batchrun
var (
	// ErrInvalidConfig indicates a configuration error detected at construction time
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvocation indicates a task was invoked with positional arguments
	ErrInvocation = errors.New("invalid invocation")

	// ErrTask indicates the user function itself failed
	ErrTask = errors.New("task failed")

	// ErrInternalState indicates a violated engine contract (an engine bug)
	ErrInternalState = errors.New("internal state error")

	// ErrEngineReused indicates Execute was called on an engine that already ran
	ErrEngineReused = errors.New("engine already executed")

	// ErrWorkerExited indicates an isolated worker process died mid-task
	ErrWorkerExited = errors.New("worker process exited")

	// ErrCancelled indicates a task was cancelled before it started
	ErrCancelled = errors.New("task cancelled")

	// ErrPoolClosed indicates a submission to a pool that was already torn down
	ErrPoolClosed = errors.New("pool closed")
)

// ValidationError represents a validation failure of a configuration value
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	if v.Value != nil {
		return fmt.Sprintf("validation failed for field %q (value: %v): %s", v.Field, v.Value, v.Message)
	}
	return fmt.Sprintf("validation failed for field %q: %s", v.Field, v.Message)
}

// Unwrap ties every validation failure to ErrInvalidConfig
func (v *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// InvocationError is returned when a worker function is called with positional arguments
type InvocationError struct {
	Func string
	Args []interface{}
}

// Error implements the error interface
func (e *InvocationError) Error() string {
	return fmt.Sprintf("function %q must be invoked with keyword arguments only, got %d positional argument(s): %v",
		e.Func, len(e.Args), e.Args)
}

// Unwrap returns ErrInvocation for errors.Is compatibility
func (e *InvocationError) Unwrap() error {
	return ErrInvocation
}

// TaskError wraps an error returned (or a panic raised) by a user function
type TaskError struct {
	Func  string
	Index int
	Err   error
}

// Error implements the error interface
func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d (%s): %v", e.Index, e.Func, e.Err)
}

// Unwrap exposes both ErrTask and the original cause
func (e *TaskError) Unwrap() []error {
	return []error{ErrTask, e.Err}
}

// InternalStateError reports a programming-contract violation inside the engine
type InternalStateError struct {
	Component string
	Message   string
}

// Error implements the error interface
func (e *InternalStateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Component, e.Message)
}

// Unwrap returns ErrInternalState
func (e *InternalStateError) Unwrap() error {
	return ErrInternalState
}

// NewInternalStateError creates a new internal state error
func NewInternalStateError(component, format string, args ...interface{}) *InternalStateError {
	return &InternalStateError{
		Component: component,
		Message:   fmt.Sprintf(format, args...),
	}
}

// RemoteError carries an error message reported by an isolated worker process.
// The original error value cannot cross the process boundary, only its text.
type RemoteError struct {
	PID     int
	Message string
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	return fmt.Sprintf("worker pid %d: %s", e.PID, e.Message)
}

// MultiError aggregates multiple errors
type MultiError struct {
	Errors []error
}

// Error implements the error interface
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:", len(m.Errors)))
	for i, err := range m.Errors {
		if i < 10 { // Limit to first 10 errors in the message
			sb.WriteString(fmt.Sprintf("\n  %d. %v", i+1, err))
		} else if i == 10 {
			sb.WriteString(fmt.Sprintf("\n  ... and %d more errors", len(m.Errors)-10))
			break
		}
	}
	return sb.String()
}

// Unwrap returns the errors for errors.Is/As compatibility
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Add adds an error to the multi-error
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// ErrorOrNil returns nil if no errors were added, otherwise returns the MultiError
func (m *MultiError) ErrorOrNil() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

// NewMultiError creates a new MultiError from a slice of errors
// It filters out nil errors
func NewMultiError(errors []error) *MultiError {
	m := &MultiError{
		Errors: make([]error, 0, len(errors)),
	}
	for _, err := range errors {
		if err != nil {
			m.Errors = append(m.Errors, err)
		}
	}
	return m
}

// CombineErrors combines multiple errors into a single error.
// Returns nil if all errors are nil and the error itself if only one is set.
func CombineErrors(errors ...error) error {
	m := NewMultiError(errors)
	if len(m.Errors) == 1 {
		return m.Errors[0]
	}
	return m.ErrorOrNil()
}

// IsConfigError checks if an error is a construction-time configuration error
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsInvocationError checks if an error came from a positional-argument call
func IsInvocationError(err error) bool {
	return errors.Is(err, ErrInvocation)
}

// IsTaskError checks if an error came from a failing user function
func IsTaskError(err error) bool {
	return errors.Is(err, ErrTask)
}

// IsInternalStateError checks if an error reports an engine contract violation
func IsInternalStateError(err error) bool {
	return errors.Is(err, ErrInternalState)
}

// FriendlyError converts technical errors to user-friendly messages
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case IsConfigError(err):
		return fmt.Sprintf("Invalid configuration: %v. Please check your job file and command-line flags.", err)
	case IsInvocationError(err):
		return fmt.Sprintf("Invalid invocation: %v", err)
	case errors.Is(err, ErrWorkerExited):
		return fmt.Sprintf("A worker process exited unexpectedly: %v", err)
	case IsTaskError(err):
		return fmt.Sprintf("Job aborted, a task failed: %v", err)
	case IsInternalStateError(err):
		return fmt.Sprintf("Internal error (please report this): %v", err)
	default:
		return err.Error()
	}
}

// WrapErrorf wraps an error with a formatted message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
