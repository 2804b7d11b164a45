package worker

import (
	"context"
	"sync"
)

const (
	defaultMaxConcurrency = 4
	defaultQueueSize      = 8
)

type PoolOptions[K comparable, J any] struct {
	MaxConcurrency int
	QueueSize      int
	Handle         func(ctx context.Context, key K, job J)
}

// Pool starts one worker per key on first use.
type Pool[K comparable, J any] struct {
	ctx       context.Context
	cancel    context.CancelFunc
	sem       chan struct{}
	queueSize int
	handle    func(context.Context, K, J)

	mu      sync.Mutex
	workers map[K]chan J
	wg      sync.WaitGroup
}

func NewPool[K comparable, J any](ctx context.Context, opts PoolOptions[K, J]) *Pool[K, J] {
	if ctx == nil {
		ctx = context.Background()
	}
	maxConc := opts.MaxConcurrency
	if maxConc <= 0 {
		maxConc = defaultMaxConcurrency
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	workersCtx, cancel := context.WithCancel(ctx)
	return &Pool[K, J]{
		ctx:       workersCtx,
		cancel:    cancel,
		sem:       make(chan struct{}, maxConc),
		queueSize: queueSize,
		handle:    opts.Handle,
		workers:   make(map[K]chan J),
	}
}

func (p *Pool[K, J]) getOrStartWorkerLocked(key K) chan J {
	if jobs, ok := p.workers[key]; ok {
		return jobs
	}
	jobs := make(chan J, p.queueSize)
	p.workers[key] = jobs
	Start(StartOptions[J]{
		Ctx:  p.ctx,
		Sem:  p.sem,
		Jobs: jobs,
		WG:   &p.wg,
		Handle: func(ctx context.Context, job J) {
			p.handle(ctx, key, job)
		},
	})
	return jobs
}

// Submit queues job behind the other jobs of key. It returns ErrQueueFull
// instead of blocking when key already has a full queue.
func (p *Pool[K, J]) Submit(key K, job J) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ctx.Err(); err != nil {
		return err
	}
	return TryEnqueue(p.ctx, p.getOrStartWorkerLocked(key), job)
}

// Active returns the number of keys with a worker.
func (p *Pool[K, J]) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// Close stops accepting jobs, lets running jobs finish and drops queued ones.
func (p *Pool[K, J]) Close() {
	p.cancel()
	p.wg.Wait()
}
