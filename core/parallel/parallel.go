// Package parallel provides CPU-bound work splitting helpers used by the
// adapters for row-wise transforms over large partitions.
package parallel

import (
	"runtime"
	"sync"

	"github.com/souschef-ml/souschef/pkg/errors"
)

// Parallelize splits items into one contiguous chunk per worker and runs fn
// on each [start, end) range concurrently. Workers never exceed items.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	workers := runtime.NumCPU()
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

// ParallelizeWithThreshold runs fn sequentially over the whole range when
// items is at or below threshold, in parallel chunks otherwise. Small inputs
// are not worth goroutine overhead.
func ParallelizeWithThreshold(items, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, fn)
}

// ForEachErr runs fn(i) for each index concurrently and returns the error of
// the lowest failing index, so the reported failure is deterministic. A panic
// inside fn is recovered in its own goroutine and surfaces as that index's
// error.
func ForEachErr(n int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}

	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = errors.SafeExecute("parallel task", func() error {
				return fn(i)
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
