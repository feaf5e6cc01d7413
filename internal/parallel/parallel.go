// Package parallel provides the loop-level parallelism used by the
// projection, filtering and integration stages.
package parallel

import (
	"runtime"
	"sync"
)

// Config configures parallel processing behavior.
type Config struct {
	// NumWorkers is the number of worker goroutines. 0 means runtime.GOMAXPROCS(0).
	NumWorkers int

	// GrainSize is the minimum work items per worker before parallelization.
	// If total work items < GrainSize * NumWorkers, runs sequentially.
	GrainSize int
}

// DefaultConfig returns the default parallel configuration.
func DefaultConfig() Config {
	return Config{
		NumWorkers: 0,
		GrainSize:  1,
	}
}

var (
	config   = DefaultConfig()
	configMu sync.RWMutex
)

// SetConfig sets the global parallel configuration.
func SetConfig(c Config) {
	configMu.Lock()
	defer configMu.Unlock()
	config = c
}

// GetConfig returns the current parallel configuration.
func GetConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return config
}

func effectiveWorkers(c Config) int {
	if c.NumWorkers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.NumWorkers
}

// For runs fn(i) for i in [0, n) across the configured workers. Work items
// must not share mutable state; the filtering stages give each item its own
// output texel or scanline, so no reduction is needed here.
func For(n int, fn func(i int)) {
	c := GetConfig()
	numWorkers := effectiveWorkers(c)

	if n <= c.GrainSize*numWorkers || numWorkers == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := (n + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				fn(i)
			}
		}(start, end)
	}

	wg.Wait()
}

// Reduce runs fn(worker, i) for i in [0, n), handing each worker a stable
// worker index so it can accumulate into a private partial result. The
// caller merges the partials afterwards in worker order, which keeps
// order-sensitive floating-point reductions deterministic for a fixed
// worker count. Returns the number of workers actually used.
func Reduce(n int, workers int, fn func(worker, i int)) int {
	if workers <= 0 {
		workers = effectiveWorkers(GetConfig())
	}
	if n < workers {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(0, i)
		}
		return 1
	}

	var wg sync.WaitGroup
	chunkSize := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(worker, s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				fn(worker, i)
			}
		}(w, start, end)
	}

	wg.Wait()
	return workers
}
