// Package parallel fans independent work items out to a bounded set of
// goroutines.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers resolves a configured worker count: values below 1 mean one worker
// per CPU core, and the result never exceeds items.
func Workers(requested, items int) int {
	n := requested
	if n < 1 {
		n = runtime.NumCPU()
	}
	if n > items {
		n = items
	}
	if n < 1 {
		n = 1
	}
	return n
}

// ForEach calls fn for every index in [0, items) using at most workers
// goroutines. With a single worker the calls run in index order on the calling
// goroutine. The first error cancels the context passed to the remaining calls
// and is returned.
func ForEach(ctx context.Context, items, workers int, fn func(ctx context.Context, i int) error) error {
	if items == 0 {
		return nil
	}
	workers = Workers(workers, items)

	if workers == 1 {
		for i := 0; i < items; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i := 0; i < items; i++ {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	return group.Wait()
}

// Parallelize divides items into contiguous chunks, one per worker, and calls
// fn(start, end) for each chunk concurrently.
func Parallelize(items, workers int, fn func(start, end int)) {
	if items == 0 {
		return
	}
	workers = Workers(workers, items)
	chunkSize := (items + workers - 1) / workers

	var group errgroup.Group
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		group.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = group.Wait()
}
