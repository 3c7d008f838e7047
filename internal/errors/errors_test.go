package errors

import (
	"fmt"
	"testing"
)

func TestRumorError_Error(t *testing.T) {
	err := &RumorError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "theory not found",
	}

	expected := "NOT_FOUND: theory not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("category is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "category is required" {
		t.Errorf("Message = %q, want %q", err.Message, "category is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("theory_01abc")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["id"] != "theory_01abc" {
		t.Errorf("Details[id] = %v, want %q", err.Details["id"], "theory_01abc")
	}
}

func TestNewInvalidEvent(t *testing.T) {
	err := NewInvalidEvent("liked")

	if err.Code != ErrInvalidEvent {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidEvent)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
	if err.Details["event_type"] != "liked" {
		t.Errorf("Details[event_type] = %v, want %q", err.Details["event_type"], "liked")
	}
}

func TestNewGenerationFailed(t *testing.T) {
	err := NewGenerationFailed(fmt.Errorf("quota exhausted"))

	if err.Code != ErrGenerationFailed {
		t.Errorf("Code = %q, want %q", err.Code, ErrGenerationFailed)
	}
	if err.Status != 502 {
		t.Errorf("Status = %d, want 502", err.Status)
	}
	if err.Message != "failed to generate theory: quota exhausted" {
		t.Errorf("Message = %q", err.Message)
	}

	empty := NewGenerationFailed(nil)
	if empty.Message != "failed to generate theory: no content generated" {
		t.Errorf("Message = %q", empty.Message)
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("disk full"))
	if err.Code != ErrInternal || err.Status != 500 {
		t.Errorf("got %s/%d, want INTERNAL/500", err.Code, err.Status)
	}
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}

	if NewInternal(nil).Message != "internal error" {
		t.Error("nil error should produce generic message")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewNotFound("x"), ErrNotFound, true},
		{"different code", NewNotFound("x"), ErrConflict, false},
		{"wrapped", fmt.Errorf("insert: %w", NewConflict("dup")), ErrConflict, true},
		{"plain error", fmt.Errorf("boom"), ErrInternal, false},
		{"nil", nil, ErrInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAs(t *testing.T) {
	orig := NewInvalidRequest("bad")
	if got := As(fmt.Errorf("ctx: %w", orig)); got != orig {
		t.Errorf("As() did not unwrap RumorError")
	}

	got := As(fmt.Errorf("boom"))
	if got.Code != ErrInternal {
		t.Errorf("Code = %q, want INTERNAL", got.Code)
	}
}
