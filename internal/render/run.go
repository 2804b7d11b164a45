package render

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/quailyquaily/text2cw/internal/cwerr"
)

// Artifact is a rendered job ready for delivery.
type Artifact struct {
	Job  Job
	Path string
}

// DeliverFunc hands one artifact to the reply channel.
type DeliverFunc func(ctx context.Context, a Artifact) error

// RunAll renders every job before delivering any of them, so a failure of
// one speed sends nothing. Rendering is not canceled with ctx. Each artifact
// is removed after delivery; delivery errors and removal failures are joined
// in the returned error, removal failures wrapping cwerr.ErrCleanup.
func RunAll(ctx context.Context, r Renderer, jobs []Job, deliver DeliverFunc) error {
	renderCtx := context.WithoutCancel(ctx)
	artifacts := make([]Artifact, 0, len(jobs))
	for _, job := range jobs {
		path, err := r.Render(renderCtx, job)
		if err != nil {
			cleanupErr := removeAll(artifacts)
			return errors.Join(err, cleanupErr)
		}
		artifacts = append(artifacts, Artifact{Job: job, Path: path})
	}

	var errs []error
	for _, a := range artifacts {
		if deliver != nil {
			if err := deliver(ctx, a); err != nil {
				errs = append(errs, fmt.Errorf("deliver %s: %w", a.Job.Title, err))
			}
		}
		if err := remove(a.Path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func removeAll(artifacts []Artifact) error {
	var errs []error
	for _, a := range artifacts {
		if err := remove(a.Path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s: %v", cwerr.ErrCleanup, path, err)
	}
	return nil
}
