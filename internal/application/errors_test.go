package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/example/staff-roster/internal/persistence"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withCause := &ValidationError{FieldErrors: map[string]string{"endDate": "bad"}, cause: ErrInvalidRange}
	if !errors.Is(withCause, ErrInvalidRange) {
		t.Fatalf("expected validation error to unwrap to ErrInvalidRange")
	}
}

func TestValidationError_AddAndMerge(t *testing.T) {
	t.Parallel()

	base := &ValidationError{}
	base.add("first", "value")
	if got := base.FieldErrors["first"]; got != "value" {
		t.Fatalf("expected add to populate map, got %q", got)
	}

	other := &ValidationError{FieldErrors: map[string]string{"second": "another"}, cause: ErrInvalidRange}
	base.merge(other)
	if got := base.FieldErrors["second"]; got != "another" {
		t.Fatalf("expected merge to copy field, got %q", got)
	}
	if !errors.Is(base, ErrInvalidRange) {
		t.Fatalf("expected merge to carry the cause")
	}

	base.merge(nil)
	if len(base.FieldErrors) != 2 {
		t.Fatalf("expected merge with nil to leave fields unchanged")
	}
}

func TestMapRepoError(t *testing.T) {
	t.Parallel()

	if got := mapRepoError(fmt.Errorf("wrapped: %w", persistence.ErrNotFound), nil); got != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", got)
	}

	conflict := &ConflictError{Field: "email", Message: "taken"}
	got := mapRepoError(persistence.ErrConflict, conflict)
	if !errors.Is(got, ErrConflict) || got.Error() != "taken" {
		t.Fatalf("expected friendly conflict, got %v", got)
	}
	if got := mapRepoError(persistence.ErrConflict, nil); got != ErrConflict {
		t.Fatalf("expected bare ErrConflict, got %v", got)
	}

	other := errors.New("disk on fire")
	if got := mapRepoError(other, nil); got != other {
		t.Fatalf("expected unknown errors to pass through, got %v", got)
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"":                   nil,
		"not_found":          ErrNotFound,
		"conflict":           &ConflictError{Message: "dup"},
		"ambiguous_employee": ErrAmbiguousEmployee,
		"timeout":            fmt.Errorf("lookup: %w", context.DeadlineExceeded),
		"validation":         &ValidationError{FieldErrors: map[string]string{"email": "required"}},
		"invalid_range":      &ValidationError{cause: ErrInvalidRange},
		"unexpected":         errors.New("boom"),
	}
	for want, err := range cases {
		if got := ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v): expected %q, got %q", err, want, got)
		}
	}
}
