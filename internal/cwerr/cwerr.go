// Package cwerr holds the error taxonomy shared by the bot packages.
//
// Every error here is recoverable: callers report it to the user and leave the
// conversation in a well defined state.
package cwerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound reports that a dictionary, anagram or feed lookup produced no content.
	ErrNotFound = errors.New("cw: no matching content")
	// ErrSessionNotFound reports an operation on a user who has not joined.
	ErrSessionNotFound = errors.New("cw: session not found")
	// ErrFeedUnreadable reports a feed that could not be fetched or parsed.
	ErrFeedUnreadable = errors.New("cw: feed unreadable")
	// ErrCleanup reports a render artifact that could not be removed after delivery.
	ErrCleanup = errors.New("cw: artifact cleanup failed")
)

// ValidationError is bad user input for a setting.
type ValidationError struct {
	Key    string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "invalid value"
	}
	reason := strings.TrimSpace(e.Reason)
	if reason == "" {
		reason = "invalid value"
	}
	if e.Key == "" {
		return reason
	}
	return e.Key + ": " + reason
}

// Invalid builds a ValidationError with a formatted reason.
func Invalid(key string, format string, args ...any) error {
	return &ValidationError{Key: key, Reason: fmt.Sprintf(format, args...)}
}

// RenderStage names the step of a render job that failed.
type RenderStage string

const (
	StageRun      RenderStage = "run"
	StageArtifact RenderStage = "artifact"
	StageRename   RenderStage = "rename"
)

// RenderFailure is an external renderer failure or a missing artifact.
type RenderFailure struct {
	Stage    RenderStage
	Title    string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *RenderFailure) Error() string {
	if e == nil {
		return "render failed"
	}
	var b strings.Builder
	b.WriteString("render ")
	b.WriteString(string(e.Stage))
	b.WriteString(" failed")
	if e.Title != "" {
		b.WriteString(" for ")
		b.WriteString(e.Title)
	}
	if e.ExitCode != 0 {
		fmt.Fprintf(&b, " (exit %d)", e.ExitCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		b.WriteString(": ")
		b.WriteString(stderr)
	}
	return b.String()
}

func (e *RenderFailure) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsValidation reports whether err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// IsRenderFailure reports whether err is a RenderFailure.
func IsRenderFailure(err error) bool {
	var r *RenderFailure
	return errors.As(err, &r)
}
