package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolSerializesPerKey(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	got := map[string][]int{}
	running := map[string]int{}
	var overlap atomic.Bool
	var done sync.WaitGroup

	p := NewPool(context.Background(), PoolOptions[string, int]{
		MaxConcurrency: 4,
		QueueSize:      16,
		Handle: func(_ context.Context, key string, job int) {
			defer done.Done()
			mu.Lock()
			running[key]++
			if running[key] > 1 {
				overlap.Store(true)
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			running[key]--
			got[key] = append(got[key], job)
			mu.Unlock()
		},
	})
	defer p.Close()

	for i := 0; i < 10; i++ {
		for _, key := range []string{"a", "b", "c"} {
			done.Add(1)
			if err := p.Submit(key, i); err != nil {
				t.Fatalf("Submit(%s, %d) error = %v", key, i, err)
			}
		}
	}
	done.Wait()
	if overlap.Load() {
		t.Fatalf("jobs of the same key ran concurrently")
	}
	for key, jobs := range got {
		for i, j := range jobs {
			if i != j {
				t.Fatalf("key %s jobs ran out of order: %v", key, jobs)
			}
		}
	}
	if p.Active() != 3 {
		t.Fatalf("Active() = %d, want 3", p.Active())
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	t.Parallel()

	var cur, peak atomic.Int32
	var done sync.WaitGroup
	p := NewPool(context.Background(), PoolOptions[int, int]{
		MaxConcurrency: 2,
		Handle: func(context.Context, int, int) {
			defer done.Done()
			n := cur.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			cur.Add(-1)
		},
	})
	defer p.Close()
	for key := 0; key < 8; key++ {
		done.Add(1)
		if err := p.Submit(key, 0); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	done.Wait()
	if peak.Load() > 2 {
		t.Fatalf("peak concurrency = %d, want <= 2", peak.Load())
	}
}

func TestPoolQueueFull(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	p := NewPool(context.Background(), PoolOptions[string, int]{
		QueueSize: 1,
		Handle: func(context.Context, string, int) {
			started <- struct{}{}
			<-release
		},
	})
	defer p.Close()
	defer close(release)

	if err := p.Submit("a", 1); err != nil {
		t.Fatalf("Submit(1) error = %v", err)
	}
	<-started
	if err := p.Submit("a", 2); err != nil {
		t.Fatalf("Submit(2) error = %v", err)
	}
	if err := p.Submit("a", 3); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Submit(3) error = %v, want ErrQueueFull", err)
	}
}

func TestPoolClosedRejects(t *testing.T) {
	t.Parallel()

	p := NewPool(context.Background(), PoolOptions[string, int]{Handle: func(context.Context, string, int) {}})
	p.Close()
	if err := p.Submit("a", 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("Submit() after Close error = %v, want context.Canceled", err)
	}
}
