// Package jobs runs independent per-item work with bounded concurrency.
package jobs

import (
	"context"
	"sync"
)

// DefaultConcurrency caps simultaneous per-item operations within a stage.
const DefaultConcurrency = 10

// ForEach calls fn(ctx, i) for every i in [0, n) and returns once all calls
// have returned. At most limit calls run at once; limit <= 0 starts one
// goroutine per item.
//
// fn must not panic and must report its own failures. Callers collect
// results by writing to slot i of a pre-sized slice, so no locking is needed.
// Items not yet started when ctx is canceled are still passed to fn, which
// sees the canceled context and fails fast.
func ForEach(ctx context.Context, n, limit int, fn func(ctx context.Context, i int)) {
	if n <= 0 {
		return
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, limit)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}        // Acquire
			defer func() { <-sem }() // Release

			fn(ctx, idx)
		}(i)
	}

	wg.Wait()
}
