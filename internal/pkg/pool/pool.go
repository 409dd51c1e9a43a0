// Package pool runs independent jobs on a fixed set of goroutines. Jobs are
// addressed by index so callers can keep results in submission order.
package pool

import (
	"context"
	"sync"
)

// Pool is a fixed-size in-process worker pool.
type Pool struct {
	size int
}

// New creates a pool with at least one worker.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{size: size}
}

// Run executes fn for every index in [0, n) on the pool's workers and returns
// the per-index errors. When ctx is cancelled, jobs not yet started fail with
// the context error; jobs already running finish normally.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) []error {
	errs := make([]error, n)
	workers := p.size
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				errs[i] = fn(ctx, i)
			}
		}()
	}

	i := 0
dispatch:
	for ; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	for ; i < n; i++ {
		errs[i] = ctx.Err()
	}
	close(jobs)
	wg.Wait()
	return errs
}
