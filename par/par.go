// Package par is the data-parallel executor the engine assumes: it maps a
// closure over disjoint chunk ranges of a unit count. Callers own the
// disjointness of whatever the closure writes; the executor adds no
// locking.
package par

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ChunkSize returns the per-worker chunk size that spreads n units over
// workers, rounding up.
func ChunkSize(n, workers int) int {
	if workers < 1 {
		workers = 1
	}
	size := (n + workers - 1) / workers
	if size < 1 {
		size = 1
	}
	return size
}

// Ranges runs fn over disjoint half-open ranges covering [0, n), one
// range per worker, and waits for all of them. The first error cancels
// nothing but is reported after every range has finished.
func Ranges(n, workers int, fn func(start, end int) error) error {
	if n < 0 {
		return fmt.Errorf("cannot parallelize over %d units", n)
	}
	if n == 0 {
		return nil
	}
	size := ChunkSize(n, workers)
	var g errgroup.Group
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		g.Go(func() error {
			return fn(start, end)
		})
	}
	return g.Wait()
}
