package util

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMultiError(t *testing.T) {
	t.Run("empty multi-error", func(t *testing.T) {
		m := &MultiError{}
		if m.ErrorOrNil() != nil {
			t.Error("expected nil for empty multi-error")
		}
	})

	t.Run("single error", func(t *testing.T) {
		err := errors.New("test error")
		m := NewMultiError([]error{err})

		if m.Error() != "test error" {
			t.Errorf("expected %q, got %q", "test error", m.Error())
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := []error{
			errors.New("error 1"),
			errors.New("error 2"),
			errors.New("error 3"),
		}
		m := NewMultiError(errs)

		msg := m.Error()
		if !strings.Contains(msg, "3 errors occurred") {
			t.Errorf("expected message to contain error count, got %q", msg)
		}
		for _, err := range errs {
			if !strings.Contains(msg, err.Error()) {
				t.Errorf("expected message to contain %q", err.Error())
			}
		}
	})

	t.Run("nil errors are filtered", func(t *testing.T) {
		m := NewMultiError([]error{nil, errors.New("only"), nil})
		if len(m.Errors) != 1 {
			t.Errorf("expected 1 error, got %d", len(m.Errors))
		}
	})

	t.Run("truncates after ten", func(t *testing.T) {
		m := &MultiError{}
		for i := 0; i < 15; i++ {
			m.Add(fmt.Errorf("error %d", i))
		}
		if !strings.Contains(m.Error(), "and 5 more errors") {
			t.Errorf("expected truncation notice, got %q", m.Error())
		}
	})
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("batch_size", 0, "must be positive")

	expected := `validation failed for field "batch_size" (value: 0): must be positive`
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("validation error should unwrap to ErrInvalidConfig")
	}

	noValue := NewValidationError("function", nil, "is required")
	if strings.Contains(noValue.Error(), "value:") {
		t.Errorf("expected message without value, got %q", noValue.Error())
	}
}

func TestInvocationError(t *testing.T) {
	err := &InvocationError{Func: "pow", Args: []interface{}{1, 2}}

	if !IsInvocationError(err) {
		t.Error("expected IsInvocationError to be true")
	}
	if !strings.Contains(err.Error(), "2 positional argument(s)") {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if IsTaskError(err) {
		t.Error("invocation error must not be classified as task error")
	}
}

func TestTaskError(t *testing.T) {
	cause := errors.New("boom")
	err := &TaskError{Func: "fail", Index: 3, Err: cause}

	if !errors.Is(err, ErrTask) {
		t.Error("task error should match ErrTask")
	}
	if !errors.Is(err, cause) {
		t.Error("task error should keep the original cause")
	}
	if err.Error() != "task 3 (fail): boom" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	var te *TaskError
	wrapped := fmt.Errorf("batch 2: %w", err)
	if !errors.As(wrapped, &te) || te.Index != 3 {
		t.Error("expected errors.As to find the task error")
	}
}

func TestInternalStateError(t *testing.T) {
	err := NewInternalStateError("progress", "update called before init (amount=%d)", 1)

	if !IsInternalStateError(err) {
		t.Error("expected IsInternalStateError to be true")
	}
	if err.Error() != "progress: update called before init (amount=1)" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestErrorCheckers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		checker  func(error) bool
		expected bool
	}{
		{"config error", NewValidationError("workers", -1, "must be positive"), IsConfigError, true},
		{"wrapped config error", fmt.Errorf("new engine: %w", ErrInvalidConfig), IsConfigError, true},
		{"task error", &TaskError{Err: errors.New("x")}, IsTaskError, true},
		{"plain error is not task error", errors.New("x"), IsTaskError, false},
		{"invocation error", &InvocationError{}, IsInvocationError, true},
		{"internal state", NewInternalStateError("engine", "bad"), IsInternalStateError, true},
		{"nil", nil, IsConfigError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.checker(tt.err); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"nil", nil, ""},
		{"config", NewValidationError("batch_size", 0, "must be positive"), "Invalid configuration"},
		{"invocation", &InvocationError{Func: "f", Args: []interface{}{1}}, "Invalid invocation"},
		{"worker exited", fmt.Errorf("pid 12: %w", ErrWorkerExited), "exited unexpectedly"},
		{"task", &TaskError{Func: "f", Err: errors.New("boom")}, "a task failed"},
		{"internal", NewInternalStateError("engine", "bad"), "Internal error"},
		{"unknown", errors.New("something else"), "something else"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := FriendlyError(tt.err)
			if tt.contains == "" {
				if msg != "" {
					t.Errorf("expected empty message, got %q", msg)
				}
				return
			}
			if !strings.Contains(msg, tt.contains) {
				t.Errorf("expected %q to contain %q", msg, tt.contains)
			}
		})
	}
}

func TestCombineErrors(t *testing.T) {
	if err := CombineErrors(nil, nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	e1 := errors.New("e1")
	e2 := errors.New("e2")
	if err := CombineErrors(nil, e1); err != e1 {
		t.Errorf("expected a single error unchanged, got %v", err)
	}

	err := CombineErrors(e1, nil, e2)
	if err == nil {
		t.Fatal("expected combined error")
	}
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Error("combined error should match both inputs")
	}
}

func TestWrapErrorf(t *testing.T) {
	if WrapErrorf(nil, "context %d", 1) != nil {
		t.Error("expected nil when wrapping nil")
	}

	base := errors.New("base")
	err := WrapErrorf(base, "batch %d", 2)
	if err.Error() != "batch 2: base" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error should match base")
	}
}

func TestRemoteError(t *testing.T) {
	err := &RemoteError{PID: 42, Message: "division by zero"}
	if err.Error() != "worker pid 42: division by zero" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
