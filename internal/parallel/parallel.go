// Package parallel splits independent per-element work into contiguous
// chunks processed by a fixed number of goroutines.
package parallel

import "sync"

// DefaultWorkers is the worker count used when a caller passes a
// non-positive value.
const DefaultWorkers = 1

// For calls fn(i) for every i in [0, n), spreading the range over
// workers goroutines. Each index is visited exactly once, and For
// returns once every call has completed.
// fn must only write state owned by index i.
func For(workers, n int, fn func(i int)) {
	workers = max(DefaultWorkers, workers)
	if n <= 0 {
		return
	}
	if workers == 1 || n == 1 {
		for i := range n {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := (n + workers - 1) / workers

	for workerID := 0; workerID < workers; workerID++ {
		start, end := workerID*chunkSize, min((workerID+1)*chunkSize, n)
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForErr is like For, but fn may fail. The error reported is the one
// from the lowest failing index, so the result does not depend on
// scheduling.
func ForErr(workers, n int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}
	errs := make([]error, n)
	For(workers, n, func(i int) {
		errs[i] = fn(i)
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
