package cwerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidationErrorMatching(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("accept wpm: %w", Invalid("wpm", "Valid wpm is between %d and %d", 1, 100))
	v, ok := IsValidation(err)
	if !ok {
		t.Fatalf("IsValidation() ok = false, want true")
	}
	if v.Key != "wpm" {
		t.Fatalf("key = %q, want wpm", v.Key)
	}
	if v.Reason != "Valid wpm is between 1 and 100" {
		t.Fatalf("reason = %q", v.Reason)
	}
	if _, ok := IsValidation(errors.New("plain")); ok {
		t.Fatalf("IsValidation(plain) ok = true, want false")
	}
}

func TestRenderFailureUnwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("exit status 2")
	err := fmt.Errorf("job: %w", &RenderFailure{Stage: StageRun, Title: "CW 25wpm", ExitCode: 2, Stderr: "bad arg", Err: inner})
	if !IsRenderFailure(err) {
		t.Fatalf("IsRenderFailure() = false, want true")
	}
	if !errors.Is(err, inner) {
		t.Fatalf("errors.Is(inner) = false, want true")
	}
	msg := err.Error()
	for _, want := range []string{"render run failed", "CW 25wpm", "exit 2", "bad arg"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("Error() = %q, want to contain %q", msg, want)
		}
	}
}
