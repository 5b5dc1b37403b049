//go:build test

package split

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/bastiangx/wordsplit/pkg/corpus"
)

const memCorpus = "the cat sat on the mat and the dog sat on the log " +
	"a cat and a dog are friends the cat likes the sun " +
	"there is a hat on the cat in the hat"

var memInputs = []string{
	"thecatsatonthemat",
	"thedogsatonthelog",
	"acatandadogarefriends",
	"thereisahatonthecatinthehat",
	"thecatlikesthesun",
	"xyzzythecatqq",
}

func newMemSplitter(t *testing.T, cacheSize int) *Splitter {
	t.Helper()
	opts := DefaultOptions()
	opts.CacheSize = cacheSize
	s, err := New(corpus.Count(memCorpus), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestMemoryLeakBasic(t *testing.T) {
	iterations := []int{100, 500, 1000}

	for _, iterCount := range iterations {
		t.Run(fmt.Sprintf("iterations_%d", iterCount), func(t *testing.T) {
			runBasicMemoryTest(t, iterCount)
		})
	}
}

func TestMemoryLeakConcurrent(t *testing.T) {
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 1, iterationsPerWorker: 400},
		{workers: 4, iterationsPerWorker: 100},
		{workers: 8, iterationsPerWorker: 50},
	}

	for _, config := range configs {
		t.Run(fmt.Sprintf("workers_%d_iter_%d", config.workers, config.iterationsPerWorker), func(t *testing.T) {
			runConcurrentMemoryTest(t, config.workers, config.iterationsPerWorker)
		})
	}
}

// unique inputs that overflow the cache must not grow retained memory
func TestCacheBounded(t *testing.T) {
	s := newMemSplitter(t, 16)
	for i := 0; i < 1000; i++ {
		input := "thecat" + strings.Repeat("a", i%50) + fmt.Sprint(i)
		if _, err := s.Split(input); err != nil {
			t.Fatal(err)
		}
	}
	if got := s.Stats()["cacheEntries"]; got > 16 {
		t.Errorf("cacheEntries = %d, want at most 16", got)
	}
}

func runBasicMemoryTest(t *testing.T, iterations int) {
	s := newMemSplitter(t, 0)

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	for i := 0; i < iterations; i++ {
		for _, input := range memInputs {
			if _, err := s.Split(input); err != nil {
				t.Fatal(err)
			}
		}
	}

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	finalGoroutines := runtime.NumGoroutine()

	memDelta := int64(final.HeapAlloc) - int64(baseline.HeapAlloc)
	goroutineDelta := finalGoroutines - baselineGoroutines
	totalOps := iterations * len(memInputs)
	memPerOp := float64(memDelta) / float64(totalOps)

	t.Logf("iterations=%d ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
		iterations, totalOps, memDelta, memPerOp, goroutineDelta)

	// memo tables belong to a single call and must be collectable afterwards
	if memPerOp > 1000 {
		t.Errorf("excessive memory retained per operation: %.2f bytes", memPerOp)
	}
	if goroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}

func runConcurrentMemoryTest(t *testing.T, workers, iterationsPerWorker int) {
	s := newMemSplitter(t, 64)

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	var wg sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for iter := 0; iter < iterationsPerWorker; iter++ {
				for _, input := range memInputs {
					if _, err := s.Split(input); err != nil {
						t.Error(err)
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	finalGoroutines := runtime.NumGoroutine()

	memDelta := int64(final.HeapAlloc) - int64(baseline.HeapAlloc)
	goroutineDelta := finalGoroutines - baselineGoroutines
	totalOps := workers * iterationsPerWorker * len(memInputs)
	memPerOp := float64(memDelta) / float64(totalOps)

	t.Logf("workers=%d iter_per_worker=%d total_ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
		workers, iterationsPerWorker, totalOps, memDelta, memPerOp, goroutineDelta)

	if memPerOp > 1000 {
		t.Errorf("excessive memory retained per operation: %.2f bytes", memPerOp)
	}
	if goroutineDelta > 3 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}
