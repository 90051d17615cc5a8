package accumulator

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// forEachChunk walks [0, n) in chunks of at most chunkSize elements. Chunks
// run in order, so on failure the output is consistent up through the last
// fully processed chunk.
func forEachChunk(n, chunkSize int, fn func(start, end int) error) error {
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

// parallel fans [start, end) out over the available CPUs. Workers get
// disjoint index ranges; the caller guarantees their byte ranges never
// overlap, which is the only synchronization the batch model needs.
func parallel(start, end int, fn func(lo, hi int) error) error {
	n := end - start
	if n <= 0 {
		return nil
	}
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		return fn(start, end)
	}

	step := (n + workers - 1) / workers
	g := new(errgroup.Group)
	for lo := start; lo < end; lo += step {
		hi := lo + step
		if hi > end {
			hi = end
		}
		lo, hi := lo, hi
		g.Go(func() error {
			return fn(lo, hi)
		})
	}
	return g.Wait()
}
