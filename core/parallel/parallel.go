// Package parallel provides range fan-out helpers for CPU-bound loops
// over dataset rows, such as per-case prediction in the built-in model
// back ends. The resampling engine itself uses errgroup for its
// cell-level fan-out; these helpers cover the tight inner loops.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize splits [0, items) into contiguous chunks, one per worker,
// and runs fn(start, end) for each chunk concurrently. fn must not
// share mutable state across chunks other than writing disjoint output
// slots.
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeWorkers(items, runtime.NumCPU(), fn)
}

// ParallelizeWorkers is Parallelize with an explicit worker count.
// A worker count below 1 runs sequentially.
func ParallelizeWorkers(items, workers int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if workers < 1 || items == 1 {
		fn(0, items)
		return
	}
	if workers > items {
		workers = items
	}

	chunk := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunk {
		end := start + chunk
		if end > items {
			end = items
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs sequentially below the threshold and in
// parallel above it, avoiding goroutine overhead on small inputs.
func ParallelizeWithThreshold(items, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
