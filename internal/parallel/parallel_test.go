package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForVisitsEveryIndexOnce(t *testing.T) {
	const n = 1000
	counts := make([]int32, n)
	For(n, func(i int) {
		atomic.AddInt32(&counts[i], 1)
	})
	for i, c := range counts {
		if c != 1 {
			t.Fatalf("index %d visited %d times", i, c)
		}
	}
}

func TestForSmallRunsSequentially(t *testing.T) {
	SetConfig(Config{NumWorkers: 4, GrainSize: 100})
	defer SetConfig(DefaultConfig())

	// 10 items with grain 100 stays on the calling goroutine; order is
	// then guaranteed.
	var order []int
	For(10, func(i int) {
		order = append(order, i)
	})
	for i, v := range order {
		if v != i {
			t.Fatalf("sequential path visited %d at position %d", v, i)
		}
	}
}

func TestForZeroItems(t *testing.T) {
	called := false
	For(0, func(i int) { called = true })
	if called {
		t.Error("callback invoked for empty range")
	}
}

func TestReducePartialSumsMatchSequential(t *testing.T) {
	const n = 513
	const workers = 4
	partials := make([]int64, workers)
	used := Reduce(n, workers, func(worker, i int) {
		partials[worker] += int64(i)
	})
	if used > workers {
		t.Fatalf("Reduce used %d workers, asked for %d", used, workers)
	}
	var total int64
	for _, p := range partials[:used] {
		total += p
	}
	if want := int64(n * (n - 1) / 2); total != want {
		t.Errorf("reduced sum = %d, want %d", total, want)
	}
}

func TestReduceFewerItemsThanWorkers(t *testing.T) {
	partials := make([]int64, 8)
	used := Reduce(3, 8, func(worker, i int) {
		partials[worker]++
	})
	if used != 3 {
		t.Errorf("Reduce(3, 8) used %d workers, want 3", used)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	old := GetConfig()
	defer SetConfig(old)

	SetConfig(Config{NumWorkers: 2, GrainSize: 7})
	got := GetConfig()
	if got.NumWorkers != 2 || got.GrainSize != 7 {
		t.Errorf("GetConfig = %+v", got)
	}
}
