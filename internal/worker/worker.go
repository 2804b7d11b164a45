// Package worker runs jobs in per-key goroutines so that jobs sharing a key
// run one at a time, in order, while a shared semaphore bounds how many run
// at once overall.
package worker

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueFull is returned by TryEnqueue when the queue has no free slot.
var ErrQueueFull = errors.New("worker: queue full")

type StartOptions[J any] struct {
	Ctx    context.Context
	Sem    chan struct{}
	Jobs   <-chan J
	Handle func(context.Context, J)
	// WG, when set, is marked done when the goroutine exits.
	WG *sync.WaitGroup
}

// Start consumes Jobs until it is closed or Ctx is done.
func Start[J any](opts StartOptions[J]) {
	if opts.WG != nil {
		opts.WG.Add(1)
	}
	go func() {
		if opts.WG != nil {
			defer opts.WG.Done()
		}
		for {
			select {
			case <-opts.Ctx.Done():
				return
			case job, ok := <-opts.Jobs:
				if !ok {
					return
				}
				select {
				case opts.Sem <- struct{}{}:
				case <-opts.Ctx.Done():
					return
				}
				func() {
					defer func() { <-opts.Sem }()
					opts.Handle(opts.Ctx, job)
				}()
			}
		}
	}()
}

// TryEnqueue queues the job without blocking.
func TryEnqueue[J any](workersCtx context.Context, jobs chan<- J, job J) error {
	if err := workersCtx.Err(); err != nil {
		return err
	}
	select {
	case jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}
