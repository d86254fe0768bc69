package hdr

import (
	"runtime"
	"sync"
)

// convertGrain is the minimum number of rows per worker; below it the
// goroutine overhead outweighs the per-row conversion work.
const convertGrain = 32

// parallelRows runs fn(y) for y in [0, n) across GOMAXPROCS-bounded
// workers, each converting a contiguous band of rows. Small images run
// on the calling goroutine.
func parallelRows(n int, fn func(y int)) {
	workers := runtime.GOMAXPROCS(0)
	if w := n / convertGrain; w < workers {
		workers = w
	}
	if workers <= 1 {
		for y := 0; y < n; y++ {
			fn(y)
		}
		return
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for y := s; y < e; y++ {
				fn(y)
			}
		}(start, end)
	}

	wg.Wait()
}
